// Package mosclient is the HTTP client RHS uses to read the event listing
// served by MOS.
package mosclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rubuy74/market-ops/internal/api/shared"
	"github.com/rubuy74/market-ops/internal/domain"
	"github.com/rubuy74/market-ops/internal/platform/logger"
)

// ErrUpstream is returned when MOS cannot be reached or answers with an error.
var ErrUpstream = errors.New("market operations service unavailable")

// EventsPath is the MOS endpoint listing events.
const EventsPath = "/api/v1/events"

// maxErrorBody bounds how much of an error response is kept for logging.
const maxErrorBody = 512

// Client calls MOS over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client for the MOS instance at baseURL.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "mos_client")),
	}
}

type listEventsResponse struct {
	Status string         `json:"status"`
	Events []domain.Event `json:"events"`
}

// ListEvents fetches every event with its markets and selections.
func (c *Client) ListEvents(ctx context.Context) ([]domain.Event, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)
	url := c.baseURL + EventsPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if traceID := shared.GetTraceID(ctx); traceID != "" {
		req.Header.Set(shared.TraceIDHeader, traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request to MOS failed",
			slog.String("url", url),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warn("failed to close response body", slog.String("error", err.Error()))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Error("MOS returned an error",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)))
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var decoded listEventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		log.Error("failed to decode MOS response", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: invalid response: %v", ErrUpstream, err)
	}
	if decoded.Events == nil {
		decoded.Events = []domain.Event{}
	}

	log.Debug("fetched events from MOS", slog.Int("count", len(decoded.Events)))
	return decoded.Events, nil
}
