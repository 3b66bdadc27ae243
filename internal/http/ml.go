package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/enzy247/allocd/internal/recommender"
	"github.com/enzy247/allocd/internal/store"
)

// TrainResponse is the response body for POST /api/v1/ml/train.
type TrainResponse struct {
	recommender.TrainResult
	ChoicesUsed  int `json:"choices_used"`
	TotalSamples int `json:"total_samples"`
}

// handleTrainModel trains the recommender on recorded selections.
// Selected alternatives become positive examples; currently stored,
// never-selected alternatives pad the set with negatives up to twice
// the number of choices. Features are recomputed against the current
// resource and task snapshot.
func (s *Server) handleTrainModel(c echo.Context) error {
	choices, err := s.store.ListChoices()
	if err != nil {
		s.logger.Error("failed to list choices", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list choices")
	}

	resources, tasks, err := s.loadSnapshot()
	if err != nil {
		s.logger.Error("failed to load snapshot", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load data")
	}

	samples := make([]recommender.Sample, 0, len(choices)*2)
	selected := make(map[int64]bool, len(choices))
	for _, choice := range choices {
		selected[choice.AlternativeID] = true
		alt, err := s.store.GetAlternative(choice.AlternativeID)
		if errors.Is(err, store.ErrNotFound) {
			// The alternative was replaced by a later generation run.
			continue
		}
		if err != nil {
			s.logger.Error("failed to load chosen alternative",
				zap.Int64("alternative_id", choice.AlternativeID), zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load alternatives")
		}
		samples = append(samples, recommender.Sample{
			Features: recommender.Features(alt.Plan(), resources, tasks),
			Selected: true,
		})
	}

	alts, err := s.store.ListAlternatives()
	if err != nil {
		s.logger.Error("failed to list alternatives", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list alternatives")
	}
	for _, alt := range alts {
		if selected[alt.ID] || len(samples) >= len(choices)*2 {
			continue
		}
		samples = append(samples, recommender.Sample{
			Features: recommender.Features(alt.Plan(), resources, tasks),
			Selected: false,
		})
	}

	result, err := s.recommender.Train(samples)
	if err != nil {
		s.logger.Error("training failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to train model")
	}

	if result.Status == recommender.StatusSuccess {
		snapshot, err := s.recommender.Snapshot()
		if err != nil {
			s.logger.Error("failed to snapshot model", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to persist model")
		}
		if err := s.store.SaveModel(snapshot); err != nil {
			s.logger.Error("failed to persist model", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to persist model")
		}
	}

	return c.JSON(http.StatusOK, TrainResponse{
		TrainResult:  result,
		ChoicesUsed:  len(choices),
		TotalSamples: len(samples),
	})
}

// handleModelInfo reports the recommender's current state.
func (s *Server) handleModelInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, s.recommender.Info())
}
