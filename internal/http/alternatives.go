package http

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/enzy247/allocd/internal/planner"
	"github.com/enzy247/allocd/internal/recommender"
	"github.com/enzy247/allocd/internal/store"
)

// AllocationView is an allocation row enriched with display names.
type AllocationView struct {
	ResourceID   int64   `json:"resource_id"`
	ResourceName string  `json:"resource_name"`
	TaskID       int64   `json:"task_id"`
	TaskTitle    string  `json:"task_title"`
	Hours        float64 `json:"hours"`
}

// AlternativeView is one alternative as returned by the API.
type AlternativeView struct {
	ID          int64            `json:"id"`
	RunID       string           `json:"run_id"`
	Explanation string           `json:"explanation"`
	Score       float64          `json:"score"`
	Allocations []AllocationView `json:"allocations"`
}

// AlternativesResponse is the response body for GET /api/v1/alternatives.
type AlternativesResponse struct {
	Alternatives    []AlternativeView            `json:"alternatives"`
	Total           int                          `json:"total"`
	Recommendations []recommender.Recommendation `json:"recommendations,omitempty"`
}

func (s *Server) loadSnapshot() ([]planner.Resource, []planner.Task, error) {
	resources, err := s.store.ListResources()
	if err != nil {
		return nil, nil, fmt.Errorf("list resources: %w", err)
	}
	tasks, err := s.store.ListTasks()
	if err != nil {
		return nil, nil, fmt.Errorf("list tasks: %w", err)
	}
	return resources, tasks, nil
}

func buildViews(alts []store.Alternative, resources []planner.Resource, tasks []planner.Task) []AlternativeView {
	names := make(map[int64]string, len(resources))
	for _, r := range resources {
		names[r.ID] = r.Name
	}
	titles := make(map[int64]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}

	views := make([]AlternativeView, 0, len(alts))
	for _, alt := range alts {
		allocations := make([]AllocationView, 0, len(alt.Allocations))
		for _, a := range alt.Allocations {
			allocations = append(allocations, AllocationView{
				ResourceID:   a.ResourceID,
				ResourceName: names[a.ResourceID],
				TaskID:       a.TaskID,
				TaskTitle:    titles[a.TaskID],
				Hours:        a.Hours,
			})
		}
		views = append(views, AlternativeView{
			ID:          alt.ID,
			RunID:       alt.RunID,
			Explanation: alt.Explanation,
			Score:       alt.Score,
			Allocations: allocations,
		})
	}
	return views
}

// handleGenerateAlternatives regenerates the alternative set from the
// current resource and task snapshot. Previous alternatives are replaced.
func (s *Server) handleGenerateAlternatives(c echo.Context) error {
	resources, tasks, err := s.loadSnapshot()
	if err != nil {
		s.logger.Error("failed to load snapshot", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load data")
	}
	if len(resources) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no resources in the system; add resources via POST /api/v1/resources")
	}
	if len(tasks) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no tasks in the system; add tasks via POST /api/v1/tasks")
	}

	generated := planner.Generate(resources, tasks)

	runID := uuid.NewString()
	now := time.Now().UTC()
	records := make([]store.Alternative, 0, len(generated))
	for _, alt := range generated {
		records = append(records, store.Alternative{
			RunID:       runID,
			Explanation: alt.Explanation,
			Score:       alt.Score,
			Allocations: alt.Allocations,
			CreatedAt:   now,
		})
	}

	stored, err := s.store.ReplaceAlternatives(records)
	if err != nil {
		s.logger.Error("failed to persist alternatives", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to persist alternatives")
	}

	resp := AlternativesResponse{
		Alternatives: buildViews(stored, resources, tasks),
		Total:        len(stored),
	}

	if s.recommender.Trained() {
		candidates := make([]recommender.Candidate, 0, len(stored))
		for _, alt := range stored {
			candidates = append(candidates, recommender.Candidate{ID: alt.ID, Alternative: alt.Plan()})
		}
		resp.Recommendations = s.recommender.Recommend(candidates, resources, tasks)
	}

	s.logger.Info("generated alternatives",
		zap.String("run_id", runID),
		zap.Int("count", len(stored)),
		zap.Int("resources", len(resources)),
		zap.Int("tasks", len(tasks)),
	)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetAlternative(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	alt, err := s.store.GetAlternative(id)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "alternative not found")
	}
	if err != nil {
		s.logger.Error("failed to get alternative", zap.Int64("id", id), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get alternative")
	}

	resources, tasks, err := s.loadSnapshot()
	if err != nil {
		s.logger.Error("failed to load snapshot", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load data")
	}
	views := buildViews([]store.Alternative{alt}, resources, tasks)
	return c.JSON(http.StatusOK, views[0])
}

// SelectResponse is the response body for POST /api/v1/alternatives/:id/select.
type SelectResponse struct {
	Message       string       `json:"message"`
	AlternativeID int64        `json:"alternative_id"`
	Choice        store.Choice `json:"choice"`
	MLPrediction  *float64     `json:"ml_prediction"`
}

// handleSelectAlternative records a user selection, snapshotting the
// decision metrics of the chosen alternative for later training.
func (s *Server) handleSelectAlternative(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	alt, err := s.store.GetAlternative(id)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "alternative not found")
	}
	if err != nil {
		s.logger.Error("failed to get alternative", zap.Int64("id", id), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get alternative")
	}

	resources, tasks, err := s.loadSnapshot()
	if err != nil {
		s.logger.Error("failed to load snapshot", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load data")
	}

	choice := choiceMetrics(alt, resources, tasks)
	choice.AlternativeID = id
	choice.SelectedAt = time.Now().UTC()

	if s.recommender.Trained() {
		p := s.recommender.Predict(alt.Plan(), resources, tasks)
		choice.MLScore = &p
	}

	stored, err := s.store.AppendChoice(choice)
	if err != nil {
		s.logger.Error("failed to record choice", zap.Int64("alternative_id", id), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record choice")
	}

	s.logger.Info("recorded selection",
		zap.Int64("alternative_id", id),
		zap.Int64("choice_id", stored.ID),
	)
	return c.JSON(http.StatusOK, SelectResponse{
		Message:       "selection recorded for model training",
		AlternativeID: id,
		Choice:        stored,
		MLPrediction:  stored.MLScore,
	})
}

// choiceMetrics snapshots the decision metrics of an alternative against
// the current resource and task set. Coverage here is the raw
// allocated-to-required ratio and may exceed 1.
func choiceMetrics(alt store.Alternative, resources []planner.Resource, tasks []planner.Task) store.Choice {
	var totalRequired, totalAllocated float64
	for _, t := range tasks {
		totalRequired += t.RequiredHours
	}
	for _, a := range alt.Allocations {
		totalAllocated += a.Hours
	}

	var coverage float64
	if totalRequired > 0 {
		coverage = totalAllocated / totalRequired
	}

	perTask := make(map[int64]float64)
	load := make(map[int64]float64)
	for _, a := range alt.Allocations {
		perTask[a.TaskID] += a.Hours
		load[a.ResourceID] += a.Hours
	}

	var priorityScore float64
	if len(tasks) > 0 {
		var sum float64
		for _, t := range tasks {
			taskCoverage := math.Min(1.0, perTask[t.ID]/t.RequiredHours)
			weight := float64(6-t.Priority) / 5.0
			sum += taskCoverage * weight
		}
		priorityScore = sum / float64(len(tasks))
	}

	utilizations := make([]float64, 0, len(resources))
	for _, r := range resources {
		if r.AvailableHours > 0 {
			utilizations = append(utilizations, load[r.ID]/r.AvailableHours)
		}
	}
	balanceScore := 0.5
	if len(utilizations) > 0 {
		balanceScore = 1.0 - stat.PopStdDev(utilizations, nil)
	}
	balanceScore = math.Max(0, math.Min(1, balanceScore))

	var overloadPenalty float64
	if totalRequired > 0 {
		var totalOverload float64
		for _, r := range resources {
			totalOverload += math.Max(0, load[r.ID]-r.AvailableHours)
		}
		overloadPenalty = math.Min(1.0, totalOverload/totalRequired)
	}

	return store.Choice{
		Coverage:        coverage,
		PriorityScore:   priorityScore,
		BalanceScore:    balanceScore,
		OverloadPenalty: overloadPenalty,
		TotalScore:      alt.Score,
		NumResources:    len(resources),
		NumTasks:        len(tasks),
	}
}

// handleStats reports distribution statistics for one alternative, the
// best stored one when alternative_id is not given.
func (s *Server) handleStats(c echo.Context) error {
	resources, tasks, err := s.loadSnapshot()
	if err != nil {
		s.logger.Error("failed to load snapshot", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load data")
	}

	var target *planner.Alternative
	if raw := c.QueryParam("alternative_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "alternative_id must be a positive integer")
		}
		alt, err := s.store.GetAlternative(id)
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "alternative not found")
		}
		if err != nil {
			s.logger.Error("failed to get alternative", zap.Int64("id", id), zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to get alternative")
		}
		plan := alt.Plan()
		target = &plan
	} else {
		alts, err := s.store.ListAlternatives()
		if err != nil {
			s.logger.Error("failed to list alternatives", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to list alternatives")
		}
		if len(alts) > 0 {
			// Stored order is ranking order, the first one is the best.
			plan := alts[0].Plan()
			target = &plan
		}
	}

	return c.JSON(http.StatusOK, planner.ComputeStats(target, resources, tasks))
}

const csvExplanationLimit = 50

// handleExportAlternatives exports the stored alternatives as JSON or CSV.
func (s *Server) handleExportAlternatives(c echo.Context) error {
	format := strings.ToLower(c.QueryParam("format"))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		return echo.NewHTTPError(http.StatusBadRequest, "format must be json or csv")
	}

	alts, err := s.store.ListAlternatives()
	if err != nil {
		s.logger.Error("failed to list alternatives", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list alternatives")
	}
	resources, tasks, err := s.loadSnapshot()
	if err != nil {
		s.logger.Error("failed to load snapshot", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load data")
	}

	if format == "csv" {
		names := make(map[int64]string, len(resources))
		for _, r := range resources {
			names[r.ID] = r.Name
		}
		titles := make(map[int64]string, len(tasks))
		for _, t := range tasks {
			titles[t.ID] = t.Title
		}

		var buf strings.Builder
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{"alternative_id", "score", "explanation", "resource", "task", "hours"}); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to encode csv")
		}
		for _, alt := range alts {
			explanation := alt.Explanation
			if len(explanation) > csvExplanationLimit {
				explanation = explanation[:csvExplanationLimit] + "..."
			}
			for _, a := range alt.Allocations {
				record := []string{
					strconv.FormatInt(alt.ID, 10),
					strconv.FormatFloat(alt.Score, 'f', -1, 64),
					explanation,
					names[a.ResourceID],
					titles[a.TaskID],
					strconv.FormatFloat(a.Hours, 'f', -1, 64),
				}
				if err := w.Write(record); err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "failed to encode csv")
				}
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to encode csv")
		}

		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=alternatives.csv`)
		return c.Blob(http.StatusOK, "text/csv", []byte(buf.String()))
	}

	return c.JSON(http.StatusOK, AlternativesResponse{
		Alternatives: buildViews(alts, resources, tasks),
		Total:        len(alts),
	})
}
