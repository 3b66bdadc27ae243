package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/enzy247/allocd/internal/planner"
	"github.com/enzy247/allocd/internal/store"
)

// TaskRequest is the request body for creating or updating a task.
type TaskRequest struct {
	Title         string  `json:"title"`
	RequiredHours float64 `json:"required_hours"`
	Priority      int     `json:"priority"`
}

func (r *TaskRequest) validate() error {
	if r.Title == "" {
		return errors.New("title is required")
	}
	if r.RequiredHours <= 0 {
		return errors.New("required_hours must be positive")
	}
	if r.Priority < 1 || r.Priority > 5 {
		return errors.New("priority must be between 1 and 5")
	}
	return nil
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req TaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := s.store.CreateTask(planner.Task{
		Title:         req.Title,
		RequiredHours: req.RequiredHours,
		Priority:      req.Priority,
	})
	if err != nil {
		s.logger.Error("failed to create task", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create task")
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) handleListTasks(c echo.Context) error {
	tasks, err := s.store.ListTasks()
	if err != nil {
		s.logger.Error("failed to list tasks", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list tasks")
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleGetTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	task, err := s.store.GetTask(id)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	if err != nil {
		s.logger.Error("failed to get task", zap.Int64("id", id), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get task")
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req TaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := s.store.UpdateTask(planner.Task{
		ID:            id,
		Title:         req.Title,
		RequiredHours: req.RequiredHours,
		Priority:      req.Priority,
	})
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	if err != nil {
		s.logger.Error("failed to update task", zap.Int64("id", id), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update task")
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	err = s.store.DeleteTask(id)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	if err != nil {
		s.logger.Error("failed to delete task", zap.Int64("id", id), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete task")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "task deleted"})
}
