package verifier

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"siginspect/classifier"
	"siginspect/log"
	"siginspect/model"
)

// service is the worker-side half of the protocol. The classifier is
// constructed lazily, exactly once per worker lifetime; each train
// call binds a fresh session id and overwrites that session's model.
// The session map is owned by the service instance, never shared, so
// multiple verifiers in one process stay independent.
type service struct {
	cls       classifier.Classifier
	models    map[string]classifier.Model
	sessionID string
}

func newService() *service {
	return &service{models: make(map[string]classifier.Model)}
}

func (s *service) handle(method string, body json.RawMessage, _ [][]byte) (json.RawMessage, error) {
	switch method {
	case "train":
		return s.train(body)
	case "test":
		return s.test(body)
	}
	return nil, errors.Errorf("unknown verifier method: %s", method)
}

func (s *service) train(body json.RawMessage) (json.RawMessage, error) {
	var request trainRequest
	if err := json.Unmarshal(body, &request); err != nil {
		return nil, errors.Wrap(err, "malformed train request")
	}

	if s.cls == nil {
		cls, err := classifier.New(request.ClassifierID)
		if err != nil {
			return nil, err
		}
		s.cls = cls
	}

	sessionID := uuid.New().String()
	trained, err := s.cls.Train(request.Signatures)
	if err != nil {
		return nil, errors.Wrap(err, "training failed")
	}

	s.models[sessionID] = trained
	s.sessionID = sessionID
	log.Trace.Printf("trained session %s on %d signatures", sessionID, len(request.Signatures))

	return json.Marshal(sessionID)
}

func (s *service) test(body json.RawMessage) (json.RawMessage, error) {
	var request testRequest
	if err := json.Unmarshal(body, &request); err != nil {
		return nil, errors.Wrap(err, "malformed test request")
	}

	if s.cls == nil || s.sessionID == "" {
		return nil, errors.New("no trained model: train must be called before test")
	}

	score, err := s.cls.Test(s.models[s.sessionID], request.Signature)
	if err != nil {
		return nil, errors.Wrap(err, "testing failed")
	}

	status := model.StatusForged
	if accepted(score) {
		status = model.StatusGenuine
	}
	return json.Marshal(status)
}

// accepted maps a classifier score to a boolean verdict. Classifiers
// report acceptance as 1.0; anything else is a rejection.
func accepted(score float64) bool {
	diff := score - 1.0
	if diff < 0 {
		diff = -diff
	}
	return diff < 0.001
}
