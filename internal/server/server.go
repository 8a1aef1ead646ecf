package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ppiankov/veracity/internal/model"
)

// StatementChecker runs one fact check to completion. It never fails:
// degraded results come back as fallback records.
type StatementChecker interface {
	Check(ctx context.Context, statement string) model.FactCheckRecord
}

// Server exposes the fact-check API.
type Server struct {
	checker StatementChecker
	logger  *slog.Logger
}

// New creates an API server around a checker.
func New(checker StatementChecker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		checker: checker,
		logger:  logger,
	}
}

type checkRequest struct {
	Statement string `json:"statement"`
}

// Routes registers the API endpoints on an echo instance.
func (s *Server) Routes(e *echo.Echo) {
	e.Use(middleware.Recover())

	e.POST("/check", s.handleCheck)
	e.GET("/health", s.handleHealth)
}

// handleCheck validates the claim at the boundary and runs the pipeline.
// Empty or whitespace-only statements are rejected before any discovery,
// extraction, or LLM work happens.
func (s *Server) handleCheck(c echo.Context) error {
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	statement := model.NormalizeClaim(req.Statement)
	if statement == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Statement cannot be empty"})
	}

	record := s.checker.Check(c.Request().Context(), statement)

	return c.JSON(http.StatusOK, record)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
