package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shareit/internal/api"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// Client forwards validated requests to the server tier unchanged.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	retry      RetryPolicy
	logger     *zerolog.Logger
}

func NewClient(serverURL string, timeout time.Duration, logger *zerolog.Logger) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url must be absolute, got %q", serverURL)
	}

	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// WithRetry retries GET requests that fail before reaching the server.
func (c *Client) WithRetry(policy RetryPolicy) *Client {
	c.retry = policy
	return c
}

// Forward replays r against the server with body and copies the status and
// body of the response back to w.
func (c *Client) Forward(w http.ResponseWriter, r *http.Request, body []byte) {
	target := *c.baseURL
	target.Path = strings.TrimSuffix(c.baseURL.Path, "/") + r.URL.Path
	target.RawQuery = r.URL.RawQuery

	resp, err := c.send(r, target.String(), body)
	if err != nil {
		status := http.StatusBadGateway
		if isTimeout(err) {
			status = http.StatusGatewayTimeout
		}
		c.logger.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", api.RequestIDFrom(r.Context())).
			Msg("upstream request failed")
		api.WriteError(w, status, "server unavailable")
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		c.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("failed to copy upstream response")
	}
}

func (c *Client) send(r *http.Request, target string, body []byte) (*http.Response, error) {
	ctx := r.Context()
	for attempt := 1; ; attempt++ {
		req, err := c.newRequest(ctx, r, target, body)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		if r.Method != http.MethodGet || attempt > c.retry.MaxRetries || isTimeout(err) {
			return nil, err
		}

		delay := c.retry.NextDelay(attempt)
		c.logger.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Str("path", r.URL.Path).Msg("retrying upstream request")
		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(delay):
		}
	}
}

func (c *Client) newRequest(ctx context.Context, r *http.Request, target string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID := r.Header.Get(models.UserIDHeader); userID != "" {
		req.Header.Set(models.UserIDHeader, userID)
	}
	req.Header.Set(api.RequestIDHeader, api.RequestIDFrom(ctx))
	return req, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
