// Package recommender scores generated alternatives against historical
// user selections.
//
// Every time a user selects an alternative, the surrounding service
// records a labeled feature snapshot for each alternative that was on
// the table (selected or passed over). A logistic-regression classifier
// trained on those snapshots then estimates, for freshly generated
// alternatives, the probability that the user would pick each one. The
// engine in internal/planner has no dependency on this package.
package recommender

import (
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/enzy247/allocd/internal/planner"
)

// Train result statuses. The caller surfaces these verbatim; none of
// them is an error, training just may not be possible yet.
const (
	StatusSuccess             = "success"
	StatusInsufficientData    = "insufficient_data"
	StatusInsufficientVariety = "insufficient_variety"
)

// Sample is one labeled training example: the feature vector of an
// alternative and whether the user selected it.
type Sample struct {
	Features []float64
	Selected bool
}

// Candidate pairs a persisted alternative with its storage ID so
// recommendations can reference it.
type Candidate struct {
	ID          int64
	Alternative planner.Alternative
}

// Recommendation is the classifier's verdict on one candidate.
type Recommendation struct {
	AlternativeID int64   `json:"alternative_id"`
	Score         float64 `json:"recommendation_score"`
	Recommended   bool    `json:"is_recommended"`
}

// TrainResult reports the outcome of a training run.
type TrainResult struct {
	Status          string  `json:"status"`
	Message         string  `json:"message"`
	Accuracy        float64 `json:"accuracy"`
	TrainingSamples int     `json:"training_samples"`
	TestSamples     int     `json:"test_samples"`
}

// ModelInfo describes the current classifier state.
type ModelInfo struct {
	Trained  bool     `json:"trained"`
	Samples  int      `json:"samples"`
	Accuracy float64  `json:"accuracy"`
	Features []string `json:"features"`
}

// Config tunes the recommender.
type Config struct {
	// MinSamples is the minimum number of labeled examples required to
	// train at all.
	MinSamples int
	// HoldoutAt is the sample count from which a 20% holdout is carved
	// for accuracy reporting; below it, accuracy is measured on the
	// training set.
	HoldoutAt int
	// Threshold is the probability above which a candidate is flagged
	// as recommended.
	Threshold float64
	// TopN bounds the number of recommendations returned.
	TopN int
	// LearningRate and Epochs drive the gradient-descent fit.
	LearningRate float64
	Epochs       int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MinSamples:   5,
		HoldoutAt:    10,
		Threshold:    0.6,
		TopN:         3,
		LearningRate: 0.5,
		Epochs:       2000,
	}
}

// Service holds the classifier and serves predictions. Safe for
// concurrent use.
type Service struct {
	config *Config
	logger *zap.Logger

	mu    sync.RWMutex
	model *logisticModel
}

// NewService creates a recommender service.
func NewService(cfg *Config, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		config: cfg,
		logger: logger,
		model:  newLogisticModel(),
	}
}

// Train fits the classifier on the given samples. Too little data or a
// single-class label set yields a non-success status, not an error.
func (s *Service) Train(samples []Sample) (TrainResult, error) {
	if len(samples) < s.config.MinSamples {
		return TrainResult{
			Status:  StatusInsufficientData,
			Message: "not enough labeled selections to train",
		}, nil
	}

	X := make([][]float64, 0, len(samples))
	y := make([]float64, 0, len(samples))
	var positives int
	for _, sample := range samples {
		if len(sample.Features) != FeatureCount {
			return TrainResult{}, errors.New("sample has wrong feature count")
		}
		X = append(X, sample.Features)
		label := 0.0
		if sample.Selected {
			label = 1.0
			positives++
		}
		y = append(y, label)
	}
	if positives == 0 || positives == len(samples) {
		return TrainResult{
			Status:  StatusInsufficientVariety,
			Message: "all samples carry the same label",
		}, nil
	}

	trainX, trainY := X, y
	testX, testY := X, y
	if len(X) >= s.config.HoldoutAt {
		trainX, trainY, testX, testY = split(X, y, 0.2)
	}

	model := newLogisticModel()
	flat := make([]float64, 0, len(trainX)*FeatureCount)
	for _, row := range trainX {
		flat = append(flat, row...)
	}
	model.fit(mat.NewDense(len(trainX), FeatureCount, flat), trainY, s.config.LearningRate, s.config.Epochs)
	model.Trained = true
	model.Samples = len(samples)
	model.Accuracy = model.accuracyOn(testX, testY)

	s.mu.Lock()
	s.model = model
	s.mu.Unlock()

	s.logger.Info("trained recommendation model",
		zap.Int("samples", len(samples)),
		zap.Int("training_samples", len(trainX)),
		zap.Int("test_samples", len(testX)),
		zap.Float64("accuracy", model.Accuracy),
	)

	return TrainResult{
		Status:          StatusSuccess,
		Message:         "model trained",
		Accuracy:        model.Accuracy,
		TrainingSamples: len(trainX),
		TestSamples:     len(testX),
	}, nil
}

// Predict returns the selection probability for one alternative.
func (s *Service) Predict(alt planner.Alternative, resources []planner.Resource, tasks []planner.Task) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.predict(Features(alt, resources, tasks))
}

// Trained reports whether a fitted model is loaded.
func (s *Service) Trained() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.Trained
}

// Recommend ranks candidates by predicted selection probability,
// descending, and returns at most TopN of them.
func (s *Service) Recommend(candidates []Candidate, resources []planner.Resource, tasks []planner.Task) []Recommendation {
	if len(candidates) == 0 {
		return nil
	}

	recommendations := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		p := s.Predict(c.Alternative, resources, tasks)
		recommendations = append(recommendations, Recommendation{
			AlternativeID: c.ID,
			Score:         p,
			Recommended:   p > s.config.Threshold,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Score > recommendations[j].Score
	})

	if len(recommendations) > s.config.TopN {
		recommendations = recommendations[:s.config.TopN]
	}
	return recommendations
}

// Info describes the loaded model.
func (s *Service) Info() ModelInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ModelInfo{
		Trained:  s.model.Trained,
		Samples:  s.model.Samples,
		Accuracy: s.model.Accuracy,
		Features: FeatureNames,
	}
}

// Snapshot serializes the current model for persistence.
func (s *Service) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.snapshot()
}

// Restore loads a persisted model snapshot.
func (s *Service) Restore(data []byte) error {
	model := newLogisticModel()
	if err := model.restore(data); err != nil {
		return err
	}
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
	return nil
}
