// Package task provides a point-to-point request/response channel to a
// worker goroutine. Every other long-running component (decoders, the
// verifier) runs its work through one of these so a malformed file or a
// misbehaving classifier cannot take down the caller.
package task

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"siginspect/log"
)

// Handler executes one request inside the worker. Buffers are moved
// into the handler: the caller must not touch them after Submit.
type Handler func(method string, body json.RawMessage, buffers [][]byte) (json.RawMessage, error)

// ErrorDescriptor is the serializable form of a worker-side failure.
type ErrorDescriptor struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Error is a worker-side (domain) failure delivered through the
// channel's failure path.
type Error struct {
	Descriptor ErrorDescriptor
}

func (e *Error) Error() string {
	return e.Descriptor.Message
}

// TransportError signals that the worker itself failed (crashed or
// produced a malformed envelope), as opposed to a domain error inside
// a handler.
type TransportError struct {
	Reason string
}

func (e *TransportError) Error() string {
	return "task: transport failure: " + e.Reason
}

type envelope struct {
	CorrelationID string           `json:"correlationId"`
	Message       json.RawMessage  `json:"message,omitempty"`
	Error         *ErrorDescriptor `json:"error,omitempty"`
}

// Request is one unit of work for a worker.
type Request struct {
	Method string
	Body   json.RawMessage
	// Buffers carry large payloads (whole file contents) without
	// re-encoding them into Body. Ownership moves to the worker.
	Buffers [][]byte
}

type inbound struct {
	env     envelope
	buffers [][]byte
}

type outcome struct {
	message json.RawMessage
	err     error
}

// Future is the pending result of a Submit call. It is resolved or
// rejected exactly once; a disposed worker abandons it instead.
type Future struct {
	ch chan outcome
}

// Await blocks until the result arrives. If the owning worker was
// disposed while the call was in flight, Await never returns; callers
// wanting a timeout must race Await in a goroutine.
func (f *Future) Await() (json.RawMessage, error) {
	o := <-f.ch
	return o.message, o.err
}

func rejected(err error) *Future {
	f := &Future{ch: make(chan outcome, 1)}
	f.ch <- outcome{err: err}
	return f
}

// Worker owns one goroutine that processes requests strictly one at a
// time in arrival order.
type Worker struct {
	name    string
	handler Handler

	inbox chan inbound
	quit  chan struct{}

	mu      sync.Mutex
	pending map[string]*Future
	dead    bool

	closeOnce sync.Once
	done      chan struct{}
}

// NewWorker starts a worker goroutine running handler. The name only
// shows up in trace logs.
func NewWorker(name string, handler Handler) *Worker {
	w := &Worker{
		name:    name,
		handler: handler,
		inbox:   make(chan inbound, 8),
		quit:    make(chan struct{}),
		pending: make(map[string]*Future),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit sends one request to the worker and returns a future for its
// single response. Correlation ids are fresh uuids per call; an
// envelope that matches no pending id is ignored.
func (w *Worker) Submit(req Request) *Future {
	correlationID := uuid.New().String()
	f := &Future{ch: make(chan outcome, 1)}

	w.mu.Lock()
	if w.dead {
		w.mu.Unlock()
		return rejected(&TransportError{Reason: "worker is disposed"})
	}
	w.pending[correlationID] = f
	w.mu.Unlock()

	in := inbound{
		env:     envelope{CorrelationID: correlationID, Message: encodeRequest(req)},
		buffers: req.Buffers,
	}

	select {
	case w.inbox <- in:
	case <-w.quit:
		// Disposed while enqueueing: the call is abandoned, matching
		// the behaviour of a queued call at dispose time. On a crash
		// the future was already rejected by failAllPending, so this
		// branch never strands a caller.
	}

	return f
}

type requestBody struct {
	Method string          `json:"method"`
	Body   json.RawMessage `json:"body,omitempty"`
}

func encodeRequest(req Request) json.RawMessage {
	b, err := json.Marshal(requestBody{Method: req.Method, Body: req.Body})
	if err != nil {
		// A request body is always a marshalled struct already; this
		// cannot happen with well-formed callers.
		return json.RawMessage(`{}`)
	}
	return b
}

// Close terminates the worker goroutine. Unconditionally safe to call
// at any time and idempotent. A request already executing in the
// handler runs to completion and resolves its future; queued but
// unstarted calls are abandoned, never rejected.
func (w *Worker) Close() {
	w.closeOnce.Do(func() {
		close(w.quit)
	})
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			w.mu.Lock()
			w.dead = true
			w.mu.Unlock()
			return
		case in := <-w.inbox:
			env, crashed := w.process(in)
			if crashed {
				w.failAllPending(env)
				return
			}
			w.deliver(env)
		}
	}
}

// process runs the handler for one inbound envelope. The second return
// value reports a transport-level crash (handler panic or malformed
// envelope) rather than a domain error.
func (w *Worker) process(in inbound) (env envelope, crashed bool) {
	if in.env.CorrelationID == "" {
		return envelope{Error: &ErrorDescriptor{Message: "malformed envelope: missing correlation id"}}, true
	}

	var req requestBody
	if err := json.Unmarshal(in.env.Message, &req); err != nil {
		return envelope{Error: &ErrorDescriptor{Message: "malformed envelope: " + err.Error()}}, true
	}

	env.CorrelationID = in.env.CorrelationID

	defer func() {
		if r := recover(); r != nil {
			env = envelope{Error: &ErrorDescriptor{Message: fmt.Sprintf("worker panic: %v", r)}}
			crashed = true
		}
	}()

	message, err := w.handler(req.Method, req.Body, in.buffers)
	if err != nil {
		env.Error = describeError(err)
		return env, false
	}

	env.Message = message
	return env, false
}

// describeError flattens a handler error into a descriptor, capturing
// the stack trace when the error carries one (pkg/errors).
func describeError(err error) *ErrorDescriptor {
	desc := &ErrorDescriptor{Message: err.Error()}

	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	if st, ok := err.(stackTracer); ok {
		desc.Stack = fmt.Sprintf("%+v", st.StackTrace())
	}

	return desc
}

func (w *Worker) deliver(env envelope) {
	w.mu.Lock()
	f, ok := w.pending[env.CorrelationID]
	if ok {
		delete(w.pending, env.CorrelationID)
	}
	w.mu.Unlock()

	if !ok {
		log.Trace.Printf("worker %s: ignoring envelope with unknown correlation id %s", w.name, env.CorrelationID)
		return
	}

	if env.Error != nil {
		f.ch <- outcome{err: &Error{Descriptor: *env.Error}}
		return
	}
	f.ch <- outcome{message: env.Message}
}

// failAllPending rejects every in-flight call with a transport error.
// This is the one case where delivery is not matched by correlation id:
// once the execution context is gone, no envelope can ever arrive.
func (w *Worker) failAllPending(env envelope) {
	reason := "worker crashed"
	if env.Error != nil {
		reason = env.Error.Message
	}
	log.Error.Printf("worker %s: %s", w.name, reason)

	w.mu.Lock()
	w.dead = true
	pending := w.pending
	w.pending = make(map[string]*Future)
	w.mu.Unlock()

	// A crash also closes quit so a Submit blocked on a full inbox
	// unblocks instead of waiting for a drain that will never come.
	w.closeOnce.Do(func() {
		close(w.quit)
	})

	for _, f := range pending {
		f.ch <- outcome{err: &TransportError{Reason: reason}}
	}
}
