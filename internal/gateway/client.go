// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

// Package gateway is the typed client for the Odyssey REST backend.
//
// Every call goes through the same pipeline: bearer token from the injected
// auth.TokenSource, client-side rate limiting, the circuit breaker, and
// bounded retries for 429 and transient 5xx responses. Non-2xx responses are
// returned as *APIError carrying the backend's detail message.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/odyssey/internal/auth"
	"github.com/tomtom215/odyssey/internal/cache"
	"github.com/tomtom215/odyssey/internal/config"
	"github.com/tomtom215/odyssey/internal/logging"
	"github.com/tomtom215/odyssey/internal/metrics"
	"github.com/tomtom215/odyssey/internal/models"
)

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	baseURL     string
	uploadsPath string
	http        *http.Client
	tokens      auth.TokenSource
	limiter     *rate.Limiter
	breaker     *breaker
	geocode     *cache.LRU[[]models.CityResult]

	maxRetries     int
	retryBaseDelay time.Duration
	minQueryLength int
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client from configuration. tokens may be nil for anonymous
// calls, in which case every call fails with ErrUnauthenticated.
func New(cfg *config.Config, tokens auth.TokenSource, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.API.RateLimit > 0 {
		limit = rate.Limit(cfg.API.RateLimit)
	}

	c := &Client{
		baseURL:        strings.TrimRight(cfg.API.BaseURL, "/"),
		uploadsPath:    "/" + strings.Trim(cfg.API.UploadsPath, "/"),
		http:           &http.Client{Timeout: cfg.API.Timeout},
		tokens:         tokens,
		limiter:        rate.NewLimiter(limit, max(cfg.API.RateBurst, 1)),
		breaker:        newBreaker(cfg.Breaker),
		geocode:        cache.NewLRU[[]models.CityResult](cfg.Search.CacheSize, cfg.Search.CacheTTL),
		maxRetries:     cfg.API.MaxRetries,
		retryBaseDelay: cfg.API.RetryBaseDelay,
		minQueryLength: cfg.Search.MinQueryLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BreakerState returns "closed", "half-open", "open" or "disabled".
func (c *Client) BreakerState() string {
	return c.breaker.state()
}

// PhotoURL returns the absolute URL of an uploaded photo, or "" for an
// empty path.
func (c *Client) PhotoURL(photoPath string) string {
	if photoPath == "" {
		return ""
	}
	return c.baseURL + c.uploadsPath + "/" + strings.TrimLeft(photoPath, "/")
}

// request describes one backend call. endpoint is the path template used as
// the metrics label.
type request struct {
	method      string
	path        string
	endpoint    string
	query       url.Values
	body        []byte
	contentType string
}

func jsonRequest(method, path, endpoint string, payload any) (request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("failed to encode %s body: %w", endpoint, err)
	}
	return request{method: method, path: path, endpoint: endpoint, body: body, contentType: "application/json"}, nil
}

// do executes req through the breaker and decodes a JSON response into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	if token == "" {
		return ErrUnauthenticated
	}

	return c.breaker.execute(func() error {
		resp, err := c.doWithRetry(ctx, req, token)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{
				Method:   req.method,
				Endpoint: req.endpoint,
				Status:   resp.StatusCode,
				Detail:   parseDetail(readBodyForError(resp.Body)),
			}
		}

		if out == nil || resp.StatusCode == http.StatusNoContent {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", req.method, req.endpoint, err)
		}
		return nil
	})
}

// doWithRetry performs the HTTP exchange, retrying 429 for every method and
// 502/503/504 for idempotent methods with exponential backoff. A Retry-After
// header overrides the computed delay.
func (c *Client) doWithRetry(ctx context.Context, req request, token string) (*http.Response, error) {
	reqURL := c.baseURL + req.path
	if len(req.query) > 0 {
		reqURL += "?" + req.query.Encode()
	}

	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = logging.GenerateRequestID()
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var body io.Reader = http.NoBody
		if req.body != nil {
			body = bytes.NewReader(req.body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.method, reqURL, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("X-Request-ID", requestID)
		if req.contentType != "" {
			httpReq.Header.Set("Content-Type", req.contentType)
		}

		start := time.Now()
		resp, err := c.http.Do(httpReq)
		if err != nil {
			metrics.RecordGatewayRequest(req.method, req.endpoint, 0, time.Since(start))
			return nil, fmt.Errorf("%s %s failed: %w", req.method, req.endpoint, err)
		}
		metrics.RecordGatewayRequest(req.method, req.endpoint, resp.StatusCode, time.Since(start))

		logging.Ctx(ctx).Debug().
			Str("method", req.method).
			Str("endpoint", req.endpoint).
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Msg("Backend request")

		if !shouldRetry(req.method, resp.StatusCode) || attempt >= c.maxRetries {
			return resp, nil
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if ra, ok := retryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
			delay = ra
		}
		_ = resp.Body.Close()

		metrics.GatewayRetries.WithLabelValues(req.endpoint).Inc()
		logging.Ctx(ctx).Warn().
			Str("endpoint", req.endpoint).
			Int("status", resp.StatusCode).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Retrying backend request")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

func shouldRetry(method string, status int) bool {
	switch status {
	case http.StatusTooManyRequests:
		return true
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return method != http.MethodPost
	default:
		return false
	}
}

// retryAfter parses a Retry-After header given as seconds or an HTTP date.
func retryAfter(header string, now time.Time) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := at.Sub(now); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}

func mapPath(mapID int64, suffix string) string {
	return "/maps/" + strconv.FormatInt(mapID, 10) + suffix
}
