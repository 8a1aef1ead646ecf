package hub

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ppiankov/veracity/internal/model"
)

// Server exposes the broadcast hub over HTTP: a websocket subscribe
// endpoint, an internal publish endpoint, and a health probe.
type Server struct {
	hub      *Hub
	labels   []string
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewServer creates a hub server. labels is the verdict vocabulary used
// to validate published records.
func NewServer(h *Hub, labels []string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		hub:    h,
		labels: labels,
		upgrader: websocket.Upgrader{
			// Subscribers are browser extensions and local tooling.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Routes registers the hub endpoints on an echo instance.
func (s *Server) Routes(e *echo.Echo, path string) {
	e.Use(middleware.Recover())

	e.GET(path, s.handleSubscribe)
	e.POST("/send-fact-check", s.handlePublish)
	e.GET("/health", s.handleHealth)
}

// handleSubscribe upgrades the connection and keeps it registered until
// it closes. Inbound messages are liveness keepalives only and carry no
// command semantics.
func (s *Server) handleSubscribe(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	s.hub.Register(ws)
	defer func() {
		s.hub.Unregister(ws)
		_ = ws.Close()
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return nil
		}
	}
}

// handlePublish accepts a record from the checker service and fans it
// out. The result label must be a member of the configured vocabulary.
func (s *Server) handlePublish(c echo.Context) error {
	var record model.FactCheckRecord
	if err := c.Bind(&record); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid record"})
	}

	if !model.ValidLabel(record.Result, s.labels) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "result must be one of the configured verdict labels",
		})
	}

	s.hub.Publish(record)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":            "sent",
		"activeConnections": s.hub.Count(),
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
