// Package http provides the HTTP API for allocd.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/enzy247/allocd/internal/recommender"
	"github.com/enzy247/allocd/internal/store"
)

// Server exposes the planner, store and recommender over HTTP.
type Server struct {
	echo        *echo.Echo
	store       *store.Store
	recommender *recommender.Service
	logger      *zap.Logger
	config      *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
	// MetricsEnabled mounts the Prometheus scrape endpoint on /metrics.
	MetricsEnabled bool
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(st *store.Store, rec *recommender.Service, logger *zap.Logger, cfg *Config) (*Server, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if rec == nil {
		return nil, fmt.Errorf("recommender cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "127.0.0.1",
			Port: 8080,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})
	e.Use(NewHTTPMetrics(logger).MetricsMiddleware())

	s := &Server{
		echo:        e,
		store:       st,
		recommender: rec,
		logger:      logger,
		config:      cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	if s.config.MetricsEnabled {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	v1 := s.echo.Group("/api/v1")

	v1.POST("/resources", s.handleCreateResource)
	v1.GET("/resources", s.handleListResources)
	v1.GET("/resources/:id", s.handleGetResource)
	v1.PUT("/resources/:id", s.handleUpdateResource)
	v1.DELETE("/resources/:id", s.handleDeleteResource)

	v1.POST("/tasks", s.handleCreateTask)
	v1.GET("/tasks", s.handleListTasks)
	v1.GET("/tasks/:id", s.handleGetTask)
	v1.PUT("/tasks/:id", s.handleUpdateTask)
	v1.DELETE("/tasks/:id", s.handleDeleteTask)

	v1.GET("/alternatives", s.handleGenerateAlternatives)
	v1.GET("/alternatives/:id", s.handleGetAlternative)
	v1.POST("/alternatives/:id/select", s.handleSelectAlternative)
	v1.GET("/stats", s.handleStats)
	v1.GET("/export/alternatives", s.handleExportAlternatives)

	v1.POST("/ml/train", s.handleTrainModel)
	v1.GET("/ml/info", s.handleModelInfo)

	v1.POST("/demo", s.handleLoadDemoData)
	v1.POST("/clear", s.handleClearData)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
