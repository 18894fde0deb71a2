// Package provider turns upstream tariff provider payloads into unsaved tariff facts.
package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

// maxBodyBytes caps how much of an upstream body is read.
const maxBodyBytes = 16 << 20

// Archiver keeps a copy of each successful upstream body.
type Archiver interface {
	Archive(ctx context.Context, provider string, body []byte) (string, error)
}

// StatusError reports a non-2xx upstream response. It unwraps to model.ErrUpstreamFailure.
type StatusError struct {
	Provider   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.Provider, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return model.ErrUpstreamFailure
}

// Options configures a Client
type Options struct {
	BaseURL       string
	Token         string // sent as the "token" query parameter when set
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	HTTPClient    *http.Client // overrides Timeout when set
	Archive       Archiver
}

// Client is the rate-limited HTTP plumbing shared by the adapters of one provider.
type Client struct {
	name    string
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	archive Archiver
}

// NewClient creates a Client named after its provider
func NewClient(name string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		name:    name,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		archive: opts.Archive,
	}
}

// Name returns the provider name used in logs and archive keys
func (c *Client) Name() string {
	return c.name
}

// get fetches path relative to the base URL and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s rate limiter: %w: %w", c.name, model.ErrUpstreamFailure, err)
	}

	if query == nil {
		query = url.Values{}
	}
	logURL := c.baseURL + path
	if len(query) > 0 {
		logURL += "?" + query.Encode()
	}
	if c.token != "" {
		query.Set("token", c.token)
	}
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "upstream call failed", "provider", c.name, "url", logURL, "duration", time.Since(start), "error", err)
		return nil, fmt.Errorf("%s request failed: %w: %w", c.name, model.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	slog.InfoContext(ctx, "upstream call", "provider", c.name, "url", logURL, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Provider: c.name, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w: %w", c.name, model.ErrUpstreamFailure, err)
	}

	if c.archive != nil {
		if key, err := c.archive.Archive(ctx, c.name, body); err != nil {
			slog.WarnContext(ctx, "failed to archive upstream payload", "provider", c.name, "error", err)
		} else if key != "" {
			slog.DebugContext(ctx, "upstream payload archived", "provider", c.name, "key", key)
		}
	}

	return body, nil
}
