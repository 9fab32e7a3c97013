package classifier

import (
	"math"

	"github.com/pkg/errors"
)

// CentroidID is the id of the built-in reference classifier.
const CentroidID = "CentroidDistance"

func init() {
	Register(CentroidID, func() Classifier { return &centroidClassifier{} })
}

// centroidClassifier is the reference implementation: it reduces each
// signature to a small feature vector, averages the training vectors
// into a centroid, and accepts a signature whose distance to the
// centroid stays below the mean training distance plus 1.25 standard
// deviations. It stands in for the real recognition pipeline and is
// fully deterministic.
type centroidClassifier struct{}

type centroidModel struct {
	centroid  []float64
	threshold float64
	empty     bool
}

func (c *centroidClassifier) Train(signatures []Signature) (Model, error) {
	if len(signatures) == 0 {
		// Degenerate but legal: the model rejects everything.
		return &centroidModel{empty: true}, nil
	}

	vectors := make([][]float64, len(signatures))
	for i, s := range signatures {
		vectors[i] = featureVector(s)
	}

	centroid := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for i := range centroid {
			centroid[i] += v[i]
		}
	}
	for i := range centroid {
		centroid[i] /= float64(len(vectors))
	}

	distances := make([]float64, len(vectors))
	var sum float64
	for i, v := range vectors {
		distances[i] = euclidean(centroid, v)
		sum += distances[i]
	}
	mean := sum / float64(len(distances))

	var variance float64
	for _, d := range distances {
		variance += (d - mean) * (d - mean)
	}
	if len(distances) > 1 {
		variance /= float64(len(distances) - 1)
	}

	return &centroidModel{
		centroid:  centroid,
		threshold: mean + math.Sqrt(variance)*1.25,
	}, nil
}

func (c *centroidClassifier) Test(m Model, signature Signature) (float64, error) {
	model, ok := m.(*centroidModel)
	if !ok {
		return 0, errors.New("model was not trained by this classifier")
	}

	if model.empty {
		return 0, nil
	}

	if euclidean(model.centroid, featureVector(signature)) <= model.threshold {
		return 1, nil
	}
	return 0, nil
}

// featureVector summarizes one signature: sample count, duration, path
// length, mean pressure, and the bounding box diagonal.
func featureVector(s Signature) []float64 {
	points := s.DataPoints
	if len(points) == 0 {
		return make([]float64, 5)
	}

	var pathLength, pressureSum float64
	minX, maxX := points[0].XCoord, points[0].XCoord
	minY, maxY := points[0].YCoord, points[0].YCoord

	for i, p := range points {
		pressureSum += p.Pressure
		minX = math.Min(minX, p.XCoord)
		maxX = math.Max(maxX, p.XCoord)
		minY = math.Min(minY, p.YCoord)
		maxY = math.Max(maxY, p.YCoord)
		if i > 0 {
			dx := p.XCoord - points[i-1].XCoord
			dy := p.YCoord - points[i-1].YCoord
			pathLength += math.Sqrt(dx*dx + dy*dy)
		}
	}

	duration := float64(points[len(points)-1].TimeStamp - points[0].TimeStamp)
	diagonal := math.Sqrt((maxX-minX)*(maxX-minX) + (maxY-minY)*(maxY-minY))

	return []float64{
		float64(len(points)),
		duration,
		pathLength,
		pressureSum / float64(len(points)),
		diagonal,
	}
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
