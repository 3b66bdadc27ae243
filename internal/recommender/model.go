package recommender

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// logisticModel is a binary logistic-regression classifier trained with
// batch gradient descent. It predicts the probability that a user would
// select an alternative with the given feature vector.
type logisticModel struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Trained bool      `json:"trained"`
	Samples int       `json:"samples"`
	// Accuracy is the holdout (or training-set) accuracy of the last
	// successful fit.
	Accuracy float64 `json:"accuracy"`
}

// trainSeed keeps the holdout split and fits reproducible.
const trainSeed = 42

func newLogisticModel() *logisticModel {
	return &logisticModel{Weights: make([]float64, FeatureCount)}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// fit runs gradient descent over the full batch. X is row-major
// n x FeatureCount, y holds 0/1 labels.
func (m *logisticModel) fit(X *mat.Dense, y []float64, learningRate float64, epochs int) {
	n, d := X.Dims()
	w := make([]float64, d)
	var b float64

	grad := make([]float64, d)
	for epoch := 0; epoch < epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradB float64

		for i := 0; i < n; i++ {
			row := X.RawRowView(i)
			diff := sigmoid(dot(row, w)+b) - y[i]
			for j, v := range row {
				grad[j] += diff * v
			}
			gradB += diff
		}

		scale := learningRate / float64(n)
		for j := range w {
			w[j] -= scale * grad[j]
		}
		b -= scale * gradB
	}

	m.Weights = w
	m.Bias = b
}

// dot is the dot product of two equal-length slices.
func dot(a, b []float64) float64 {
	return mat.Dot(mat.NewVecDense(len(a), a), mat.NewVecDense(len(b), b))
}

// predict returns the selection probability for one feature vector.
// An untrained model is uninformative and answers 0.5.
func (m *logisticModel) predict(features []float64) float64 {
	if !m.Trained || len(features) != len(m.Weights) {
		return 0.5
	}
	return sigmoid(dot(features, m.Weights) + m.Bias)
}

// accuracyOn scores the model against labeled vectors at a 0.5 cutoff.
func (m *logisticModel) accuracyOn(X [][]float64, y []float64) float64 {
	if len(X) == 0 {
		return 0
	}
	var correct int
	for i, x := range X {
		p := sigmoid(dot(x, m.Weights) + m.Bias)
		if (p >= 0.5) == (y[i] >= 0.5) {
			correct++
		}
	}
	return float64(correct) / float64(len(X))
}

// split shuffles deterministically and carves off a holdout fraction.
func split(X [][]float64, y []float64, holdout float64) (trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) {
	idx := rand.New(rand.NewSource(trainSeed)).Perm(len(X))
	cut := int(math.Round(float64(len(X)) * holdout))
	if cut < 1 {
		cut = 1
	}
	for i, p := range idx {
		if i < cut {
			testX = append(testX, X[p])
			testY = append(testY, y[p])
		} else {
			trainX = append(trainX, X[p])
			trainY = append(trainY, y[p])
		}
	}
	return trainX, trainY, testX, testY
}

// snapshot serializes the model for persistence.
func (m *logisticModel) snapshot() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal model: %w", err)
	}
	return data, nil
}

// restore loads a previously snapshotted model.
func (m *logisticModel) restore(data []byte) error {
	var loaded logisticModel
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("unmarshal model: %w", err)
	}
	if loaded.Trained && len(loaded.Weights) != FeatureCount {
		return fmt.Errorf("model has %d weights, want %d", len(loaded.Weights), FeatureCount)
	}
	if loaded.Weights == nil {
		loaded.Weights = make([]float64, FeatureCount)
	}
	*m = loaded
	return nil
}
