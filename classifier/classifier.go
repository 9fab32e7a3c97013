// Package classifier defines the contract around the trainable
// classifier the verifier wraps. The real recognition algorithms live
// outside this module; what this package owns is the train/test
// interface, the id-keyed registry, and one deliberately simple
// reference implementation so the toolkit runs end to end.
package classifier

import (
	"sync"

	"github.com/pkg/errors"

	"siginspect/model"
)

// Signature is the transport form of a signature as it reaches a
// classifier: the same DTO that crosses the verifier worker boundary.
type Signature struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Authenticity model.Authenticity `json:"authenticity"`
	Origin       string             `json:"origin"`
	DataPoints   []model.DataPoint  `json:"dataPoints"`
}

// Model is an opaque trained model, meaningful only to the classifier
// that produced it.
type Model interface{}

// Classifier trains a model from reference signatures and scores
// unknown signatures against it. Test returns a score where 1.0 means
// the signature was accepted as genuine.
type Classifier interface {
	Train(signatures []Signature) (Model, error)
	Test(model Model, signature Signature) (float64, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Classifier)
)

// Register makes a classifier constructor available under an id.
func Register(id string, constructor func() Classifier) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[id] = constructor
}

// New constructs a registered classifier by id.
func New(id string) (Classifier, error) {
	registryMu.RLock()
	constructor, ok := registry[id]
	registryMu.RUnlock()

	if !ok {
		return nil, errors.Errorf("invalid classifier id: %s", id)
	}
	return constructor(), nil
}
