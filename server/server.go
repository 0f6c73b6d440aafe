package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/cinesearch/cinesearch/internal/observability"
	"github.com/cinesearch/cinesearch/internal/profile"
	"github.com/cinesearch/cinesearch/plugin/ai"
	"github.com/cinesearch/cinesearch/server/middleware"
	apiv1 "github.com/cinesearch/cinesearch/server/router/api/v1"
	"github.com/cinesearch/cinesearch/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store
	Metrics *observability.Metrics

	echoServer       *echo.Echo
	embeddingService ai.EmbeddingService
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store, embeddingService ai.EmbeddingService) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		Profile:          profile,
		Store:            store,
		Metrics:          observability.NewMetrics(),
		echoServer:       e,
		embeddingService: embeddingService,
	}

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			s.Metrics.RecordRequest(v.Method+" "+c.Path(), v.Status >= http.StatusInternalServerError, v.Latency)
			slog.Info("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				observability.LogFieldRequestID, v.RequestID)
			return nil
		},
	}))
	e.Use(echomw.Recover())

	e.GET("/healthz", s.healthz)
	e.GET("/metrics", s.metrics)

	rateLimiter := middleware.NewRateLimiter(10, 20)
	apiGroup := e.Group("/api/v1", rateLimiter.Middleware())
	apiV1Service := apiv1.NewAPIV1Service(profile, store, embeddingService)
	apiV1Service.Register(apiGroup)

	return s, nil
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "mode", s.Profile.Mode)
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server stopped")
}

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Model    string `json:"embedding_model"`
}

func (s *Server) healthz(c echo.Context) error {
	response := healthResponse{
		Status:   "healthy",
		Version:  s.Profile.Version,
		Database: "connected",
		Model:    s.Profile.EmbeddingModel,
	}
	status := http.StatusOK
	if err := s.Store.Ping(c.Request().Context()); err != nil {
		response.Status = "degraded"
		response.Database = "disconnected: " + err.Error()
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, response)
}

func (s *Server) metrics(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Metrics.Snapshot())
}
