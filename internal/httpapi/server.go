// Package httpapi provides the HTTP API for contentd.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentd/internal/feedback"
	"github.com/fyrsmithlabs/contentd/internal/generator"
	"github.com/fyrsmithlabs/contentd/internal/knowledge"
	"github.com/fyrsmithlabs/contentd/internal/orchestrator"
	"github.com/fyrsmithlabs/contentd/internal/outputstore"
)

// Orchestrator runs the three generation use cases.
type Orchestrator interface {
	GenerateContent(ctx context.Context, req orchestrator.ContentRequest) (*orchestrator.Result, error)
	GenerateStrategy(ctx context.Context, req orchestrator.StrategyRequest) (*orchestrator.Result, error)
	GenerateCalendar(ctx context.Context, req orchestrator.CalendarRequest) (*orchestrator.Result, error)
}

// FeedbackController attaches feedback and regenerates outputs.
type FeedbackController interface {
	SubmitFeedback(ctx context.Context, id string, sub feedback.Submission) (*outputstore.Feedback, error)
	Regenerate(ctx context.Context, id string) (*orchestrator.Result, error)
}

// Corpus is the knowledge index as seen by the admin endpoints.
type Corpus interface {
	Ready() bool
	Rebuild(ctx context.Context, src knowledge.Sources) error
}

// Config holds HTTP server configuration. Sources feed the admin rebuild
// endpoint.
type Config struct {
	Host    string
	Port    int
	Sources knowledge.Sources
}

// Server provides HTTP endpoints for contentd.
type Server struct {
	echo   *echo.Echo
	orch   Orchestrator
	fbctl  FeedbackController
	corpus Corpus
	logger *zap.Logger
	config *Config
}

// NewServer creates a new HTTP server.
func NewServer(orch Orchestrator, fbctl FeedbackController, corpus Corpus, logger *zap.Logger, cfg *Config) (*Server, error) {
	if orch == nil {
		return nil, fmt.Errorf("orchestrator cannot be nil")
	}
	if fbctl == nil {
		return nil, fmt.Errorf("feedback controller cannot be nil")
	}
	if corpus == nil {
		return nil, fmt.Errorf("knowledge corpus cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8420,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
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

	s := &Server{
		echo:   e,
		orch:   orch,
		fbctl:  fbctl,
		corpus: corpus,
		logger: logger,
		config: cfg,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check and metrics
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	v1.POST("/content/:platform", s.handleContent)
	v1.POST("/strategy", s.handleStrategy)
	v1.POST("/calendar", s.handleCalendar)
	v1.POST("/feedback", s.handleFeedback)
	v1.POST("/regenerate", s.handleRegenerate)
	v1.POST("/index/rebuild", s.handleIndexRebuild)
}

// ContentRequest is the request body for POST /api/v1/content/:platform.
type ContentRequest struct {
	ContentTopic        string `json:"content_topic"`
	Tone                string `json:"tone"`
	Persona             string `json:"persona"`
	Audience            string `json:"audience"`
	ProfessionalInsight string `json:"professional_insight"`
	Length              string `json:"length"`
}

// StrategyRequest is the request body for POST /api/v1/strategy.
type StrategyRequest struct {
	Platforms    []string `json:"platforms"`
	ContentGoals string   `json:"content_goals"`
}

// CalendarRequest is the request body for POST /api/v1/calendar.
type CalendarRequest struct {
	BrandSummary string   `json:"brand_summary"`
	TopicList    []string `json:"topic_list"`
}

// FeedbackRequest is the request body for POST /api/v1/feedback.
type FeedbackRequest struct {
	OutputID          string         `json:"output_id"`
	Rating            *int           `json:"rating,omitempty"`
	Comment           string         `json:"comment,omitempty"`
	EngagementMetrics map[string]int `json:"engagement_metrics,omitempty"`
}

// RegenerateRequest is the request body for POST /api/v1/regenerate.
type RegenerateRequest struct {
	OutputID string `json:"output_id"`
}

// FeedbackResponse is the response body for POST /api/v1/feedback.
type FeedbackResponse struct {
	Message  string `json:"message"`
	OutputID string `json:"output_id"`
	Label    string `json:"label"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	KnowledgeReady bool   `json:"knowledge_ready"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:         "ok",
		KnowledgeReady: s.corpus.Ready(),
	})
}

// handleContent generates platform copy.
func (s *Server) handleContent(c echo.Context) error {
	var req ContentRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid content request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	start := time.Now()
	res, err := s.orch.GenerateContent(c.Request().Context(), orchestrator.ContentRequest{
		Platform:            outputstore.Platform(c.Param("platform")),
		ContentTopic:        req.ContentTopic,
		Tone:                req.Tone,
		Persona:             req.Persona,
		Audience:            req.Audience,
		ProfessionalInsight: req.ProfessionalInsight,
		Length:              req.Length,
	})
	return s.respondGeneration(c, "content", start, res, err)
}

// handleStrategy generates a cross-platform content strategy.
func (s *Server) handleStrategy(c echo.Context) error {
	var req StrategyRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid strategy request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	start := time.Now()
	res, err := s.orch.GenerateStrategy(c.Request().Context(), orchestrator.StrategyRequest{
		Platforms:    req.Platforms,
		ContentGoals: req.ContentGoals,
	})
	return s.respondGeneration(c, "strategy", start, res, err)
}

// handleCalendar generates a 7-day content calendar.
func (s *Server) handleCalendar(c echo.Context) error {
	var req CalendarRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid calendar request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	start := time.Now()
	res, err := s.orch.GenerateCalendar(c.Request().Context(), orchestrator.CalendarRequest{
		BrandSummary: req.BrandSummary,
		TopicList:    req.TopicList,
	})
	return s.respondGeneration(c, "calendar", start, res, err)
}

// handleFeedback records a user verdict on a stored output.
func (s *Server) handleFeedback(c echo.Context) error {
	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid feedback request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.OutputID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "output_id field is required")
	}

	fb, err := s.fbctl.SubmitFeedback(c.Request().Context(), req.OutputID, feedback.Submission{
		Rating:            req.Rating,
		Comment:           req.Comment,
		EngagementMetrics: req.EngagementMetrics,
	})
	if err != nil {
		return s.mapError(err)
	}

	FeedbackTotal.WithLabelValues(fb.Label).Inc()
	return c.JSON(http.StatusOK, FeedbackResponse{
		Message:  "feedback recorded",
		OutputID: req.OutputID,
		Label:    fb.Label,
	})
}

// handleRegenerate produces a replacement for a stored output.
func (s *Server) handleRegenerate(c echo.Context) error {
	var req RegenerateRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid regenerate request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.OutputID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "output_id field is required")
	}

	start := time.Now()
	res, err := s.fbctl.Regenerate(c.Request().Context(), req.OutputID)
	return s.respondGeneration(c, "regenerate", start, res, err)
}

// handleIndexRebuild re-ingests the knowledge corpus from the configured
// sources. Admin operation; the request path keeps serving off the old
// corpus until the rebuild lands.
func (s *Server) handleIndexRebuild(c echo.Context) error {
	if err := s.corpus.Rebuild(c.Request().Context(), s.config.Sources); err != nil {
		s.logger.Error("index rebuild failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "knowledge corpus rebuilt"})
}

// respondGeneration records metrics and writes a generation result or its
// mapped error.
func (s *Server) respondGeneration(c echo.Context, useCase string, start time.Time, res *orchestrator.Result, err error) error {
	GenerationDuration.WithLabelValues(useCase).Observe(time.Since(start).Seconds())
	if err != nil {
		GenerationsTotal.WithLabelValues(useCase, "error").Inc()
		return s.mapError(err)
	}
	GenerationsTotal.WithLabelValues(useCase, "success").Inc()
	ValidationsTotal.WithLabelValues(useCase, strconv.FormatBool(res.ValidationPassed)).Inc()
	return c.JSON(http.StatusOK, res)
}

// mapError translates domain errors into HTTP status codes.
func (s *Server) mapError(err error) error {
	switch {
	case errors.Is(err, orchestrator.ErrInvalidRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, outputstore.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, outputstore.ErrIndexInconsistency):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, generator.ErrUpstreamGeneration):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
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
