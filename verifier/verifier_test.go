package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"siginspect/classifier"
	"siginspect/model"
)

// acceptGenuine is a stub classifier that accepts a signature when its
// ground truth says genuine, and rejects everything once trained on an
// empty set. It only exists to exercise the lifecycle protocol.
type acceptGenuine struct{}

type stubModel struct {
	trainedOn int
}

func (acceptGenuine) Train(signatures []classifier.Signature) (classifier.Model, error) {
	return stubModel{trainedOn: len(signatures)}, nil
}

func (acceptGenuine) Test(m classifier.Model, signature classifier.Signature) (float64, error) {
	if m.(stubModel).trainedOn == 0 {
		return 0, nil
	}
	if signature.Authenticity == model.AuthenticityGenuine {
		return 1, nil
	}
	return 0, nil
}

func init() {
	classifier.Register("accept-genuine", func() classifier.Classifier { return acceptGenuine{} })
}

func sampleSignature(authenticity model.Authenticity) *model.Signature {
	return &model.Signature{
		ID:           "sig-" + string(authenticity),
		Name:         "1",
		Authenticity: authenticity,
		Origin:       "test",
		DataPoints:   []model.DataPoint{{TimeStamp: 0, XCoord: 1, YCoord: 2, Pressure: 0.5}},
	}
}

func TestTrainThenTest(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := New("accept-genuine")
	defer v.Dispose()

	err := v.TrainUsingSignatures([]*model.Signature{sampleSignature(model.AuthenticityGenuine)})
	require.NoError(t, err)

	status, err := v.TestSignature(sampleSignature(model.AuthenticityGenuine))
	require.NoError(t, err)
	assert.Equal(t, model.StatusGenuine, status)

	status, err = v.TestSignature(sampleSignature(model.AuthenticityForged))
	require.NoError(t, err)
	assert.Equal(t, model.StatusForged, status)
}

func TestTestBeforeTrainIsAnError(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := New("accept-genuine")
	defer v.Dispose()

	_, err := v.TestSignature(sampleSignature(model.AuthenticityGenuine))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "train must be called before test")
}

func TestTrainOnEmptySetIsDegenerateButLegal(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := New("accept-genuine")
	defer v.Dispose()

	require.NoError(t, v.TrainUsingSignatures(nil))

	// Deterministic verdict, no crash.
	status, err := v.TestSignature(sampleSignature(model.AuthenticityGenuine))
	require.NoError(t, err)
	assert.Equal(t, model.StatusForged, status)
}

func TestRetrainingReplacesTheModel(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := New("accept-genuine")
	defer v.Dispose()

	require.NoError(t, v.TrainUsingSignatures(nil))
	require.NoError(t, v.TrainUsingSignatures([]*model.Signature{sampleSignature(model.AuthenticityGenuine)}))

	status, err := v.TestSignature(sampleSignature(model.AuthenticityGenuine))
	require.NoError(t, err)
	assert.Equal(t, model.StatusGenuine, status)
}

func TestUnknownClassifierIDFailsTrain(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := New("no-such-classifier")
	defer v.Dispose()

	err := v.TrainUsingSignatures(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid classifier id")
}

func TestVerifiersAreIndependent(t *testing.T) {
	defer goleak.VerifyNone(t)

	trained := New("accept-genuine")
	defer trained.Dispose()
	untrained := New("accept-genuine")
	defer untrained.Dispose()

	require.NoError(t, trained.TrainUsingSignatures([]*model.Signature{sampleSignature(model.AuthenticityGenuine)}))

	_, err := untrained.TestSignature(sampleSignature(model.AuthenticityGenuine))
	require.Error(t, err, "training one verifier must not affect another")

	status, err := trained.TestSignature(sampleSignature(model.AuthenticityGenuine))
	require.NoError(t, err)
	assert.Equal(t, model.StatusGenuine, status)
}

func TestDisposeIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := New("accept-genuine")
	require.NoError(t, v.TrainUsingSignatures(nil))
	v.Dispose()
	v.Dispose()
}
