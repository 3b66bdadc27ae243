package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/enzy247/allocd/internal/planner"
	"github.com/enzy247/allocd/internal/store"
)

// ResourceRequest is the request body for creating or updating a resource.
type ResourceRequest struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	AvailableHours float64 `json:"available_hours"`
}

func (r *ResourceRequest) validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Type == "" {
		return errors.New("type is required")
	}
	if r.AvailableHours <= 0 {
		return errors.New("available_hours must be positive")
	}
	return nil
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id must be a positive integer")
	}
	return id, nil
}

func (s *Server) handleCreateResource(c echo.Context) error {
	var req ResourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resource, err := s.store.CreateResource(planner.Resource{
		Name:           req.Name,
		Type:           req.Type,
		AvailableHours: req.AvailableHours,
	})
	if err != nil {
		s.logger.Error("failed to create resource", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create resource")
	}
	return c.JSON(http.StatusCreated, resource)
}

func (s *Server) handleListResources(c echo.Context) error {
	resources, err := s.store.ListResources()
	if err != nil {
		s.logger.Error("failed to list resources", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list resources")
	}
	return c.JSON(http.StatusOK, resources)
}

func (s *Server) handleGetResource(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	resource, err := s.store.GetResource(id)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}
	if err != nil {
		s.logger.Error("failed to get resource", zap.Int64("id", id), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get resource")
	}
	return c.JSON(http.StatusOK, resource)
}

func (s *Server) handleUpdateResource(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req ResourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resource, err := s.store.UpdateResource(planner.Resource{
		ID:             id,
		Name:           req.Name,
		Type:           req.Type,
		AvailableHours: req.AvailableHours,
	})
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}
	if err != nil {
		s.logger.Error("failed to update resource", zap.Int64("id", id), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update resource")
	}
	return c.JSON(http.StatusOK, resource)
}

func (s *Server) handleDeleteResource(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	err = s.store.DeleteResource(id)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}
	if err != nil {
		s.logger.Error("failed to delete resource", zap.Int64("id", id), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete resource")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "resource deleted"})
}
