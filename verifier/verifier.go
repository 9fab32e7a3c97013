// Package verifier wraps an opaque trainable classifier behind a
// stable lifecycle: initialize, train, test. All classifier work runs
// inside a dedicated task worker so training a large reference set
// never blocks the caller and a misbehaving classifier cannot crash
// the process.
package verifier

import (
	"encoding/json"
	"sync"

	"siginspect/classifier"
	"siginspect/model"
	"siginspect/task"
)

type trainRequest struct {
	ClassifierID string                 `json:"classifierId"`
	Signatures   []classifier.Signature `json:"signatures"`
}

type testRequest struct {
	Signature classifier.Signature `json:"signature"`
}

// Verifier is the caller-side half of the protocol. One verifier owns
// one worker; independent verifiers are fully isolated from each
// other.
type Verifier struct {
	classifierID string

	once   sync.Once
	worker *task.Worker
}

// New creates a verifier bound to a classifier id. The id is opaque to
// this layer and passed through to the worker unchanged. The worker
// itself is created lazily on first use.
func New(classifierID string) *Verifier {
	return &Verifier{classifierID: classifierID}
}

func (v *Verifier) taskWorker() (*task.Worker, error) {
	v.once.Do(func() {
		service := newService()
		v.worker = task.NewWorker("verifier", service.handle)
	})
	if v.worker == nil {
		return nil, &task.TransportError{Reason: "verifier is disposed"}
	}
	return v.worker, nil
}

// TrainUsingSignatures serializes the signatures to the transport DTO
// and trains a fresh session on the worker. Retraining replaces the
// previously bound model. Training on an empty slice is degenerate but
// not an error.
func (v *Verifier) TrainUsingSignatures(signatures []*model.Signature) error {
	request := trainRequest{ClassifierID: v.classifierID}
	for _, s := range signatures {
		request.Signatures = append(request.Signatures, toDTO(s))
	}

	body, err := json.Marshal(request)
	if err != nil {
		return err
	}

	worker, err := v.taskWorker()
	if err != nil {
		return err
	}

	_, err = worker.Submit(task.Request{Method: "train", Body: body}).Await()
	return err
}

// TestSignature evaluates one signature against the last-trained model
// and maps the verdict to a verification status. Testing before any
// successful training is a contract violation surfaced as a
// worker-side error.
func (v *Verifier) TestSignature(signature *model.Signature) (model.VerificationStatus, error) {
	body, err := json.Marshal(testRequest{Signature: toDTO(signature)})
	if err != nil {
		return model.StatusUnverified, err
	}

	worker, err := v.taskWorker()
	if err != nil {
		return model.StatusUnverified, err
	}

	message, err := worker.Submit(task.Request{Method: "test", Body: body}).Await()
	if err != nil {
		return model.StatusUnverified, err
	}

	var status model.VerificationStatus
	if err := json.Unmarshal(message, &status); err != nil {
		return model.StatusUnverified, err
	}
	return status, nil
}

// Dispose terminates the worker. Any in-flight train or test call is
// abandoned. Safe to call at any time, any number of times.
func (v *Verifier) Dispose() {
	v.once.Do(func() {})
	if v.worker != nil {
		v.worker.Close()
	}
}

func toDTO(s *model.Signature) classifier.Signature {
	return classifier.Signature{
		ID:           s.ID,
		Name:         s.Name,
		Authenticity: s.Authenticity,
		Origin:       s.Origin,
		DataPoints:   s.DataPoints,
	}
}
