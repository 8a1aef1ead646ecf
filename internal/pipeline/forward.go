package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ppiankov/veracity/internal/model"
)

// Forwarder pushes completed records to the broadcast hub. Forwarding is
// a best-effort side channel: failure is logged and never affects the
// primary response.
type Forwarder struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewForwarder creates a hub forwarder.
func NewForwarder(cfg model.HubConfig, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Forwarder{
		url: cfg.ForwardURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Forward sends the record to the hub's publish endpoint.
func (f *Forwarder) Forward(ctx context.Context, record model.FactCheckRecord) {
	body, err := json.Marshal(record)
	if err != nil {
		f.logger.Warn("forward: marshal record", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		f.logger.Warn("forward: create request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Warn("forward to hub failed", "url", f.url, "error", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("hub rejected record", "status", resp.StatusCode)
	}
}
