// Package renderer talks to the HTML-to-PDF rendering service.
package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/polkiloo/dealerflow/internal/adapter/locale"
)

// ErrUnknownTemplate indicates the rendering service has no such template.
var ErrUnknownTemplate = errors.New("unknown template")

// TooManyRequestsError represents rate limiting signal from the rendering service.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

const (
	maxAttempts   = 3
	maxRetryDelay = 5 * time.Second
)

// HTTPClient renders PDFs via the rendering service HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates HTTP renderer client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse renderer url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("renderer url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Render posts data to /render/<template> and returns the PDF bytes.
// The locale bound to ctx is sent as Accept-Language.
func (c *HTTPClient) Render(ctx context.Context, template string, data map[string]any) ([]byte, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode render data: %w", err)
	}

	for attempt := 1; ; attempt++ {
		content, err := c.render(ctx, template, body)
		var tm TooManyRequestsError
		if !errors.As(err, &tm) || attempt == maxAttempts {
			return content, err
		}
		delay := min(tm.RetryAfter, maxRetryDelay)
		c.logger.Warn("renderer rate limited", slog.String("template", template), slog.Duration("retry_after", delay))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *HTTPClient) render(ctx context.Context, template string, body []byte) ([]byte, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/render/", template)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")
	if lang := locale.From(ctx); lang != "" {
		req.Header.Set("Accept-Language", lang)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(resp.Body)
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, template)
	case http.StatusTooManyRequests:
		return nil, TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		msg, _ := io.ReadAll(resp.Body)
		c.logger.Error("render request failed",
			slog.String("template", template), slog.Int("status", resp.StatusCode), slog.String("body", string(msg)))
		return nil, fmt.Errorf("renderer error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return time.Second
}
