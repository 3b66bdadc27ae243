package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/enzy247/allocd/internal/demo"
)

// DemoDataResponse is the response body for POST /api/v1/demo.
type DemoDataResponse struct {
	Message        string `json:"message"`
	ResourcesAdded int    `json:"resources_added"`
	TasksAdded     int    `json:"tasks_added"`
}

// handleLoadDemoData seeds the store with the example data set.
func (s *Server) handleLoadDemoData(c echo.Context) error {
	resources := demo.Resources()
	for _, r := range resources {
		if _, err := s.store.CreateResource(r); err != nil {
			s.logger.Error("failed to seed resource", zap.String("name", r.Name), zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load demo data")
		}
	}
	tasks := demo.Tasks()
	for _, t := range tasks {
		if _, err := s.store.CreateTask(t); err != nil {
			s.logger.Error("failed to seed task", zap.String("title", t.Title), zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load demo data")
		}
	}

	return c.JSON(http.StatusOK, DemoDataResponse{
		Message:        "demo data loaded",
		ResourcesAdded: len(resources),
		TasksAdded:     len(tasks),
	})
}

// ClearResponse is the response body for POST /api/v1/clear.
type ClearResponse struct {
	Message string         `json:"message"`
	Deleted map[string]int `json:"deleted"`
}

// handleClearData wipes all resources, tasks, alternatives and choices.
func (s *Server) handleClearData(c echo.Context) error {
	counts, err := s.store.ClearAll()
	if err != nil {
		s.logger.Error("failed to clear data", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to clear data")
	}
	return c.JSON(http.StatusOK, ClearResponse{
		Message: "all data deleted",
		Deleted: counts,
	})
}
