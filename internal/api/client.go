// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

// Package api is the HTTP client for the remote user API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/tokentemplate/authclient/internal/observability"
	"github.com/tokentemplate/authclient/pkg/errutil"
)

const (
	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 15 * time.Second
	// DefaultMaxRetries is the number of extra attempts for idempotent requests.
	DefaultMaxRetries = 3
	// DefaultRetryBase is the first backoff delay.
	DefaultRetryBase = 200 * time.Millisecond

	// RequestIDHeader carries a per-request ULID.
	RequestIDHeader = "X-Request-ID"

	maxResponseSize = 1 << 20
	tracerName      = "github.com/tokentemplate/authclient/internal/api"
)

// Config configures a Client.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	MaxRetries    uint64
	RetryBase     time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records request counts and latency.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

// Client calls the user API.
type Client struct {
	base       *url.URL
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries uint64
	retryBase  time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics
	tracer     trace.Tracer
}

// New creates a Client for cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, oops.Code("API_BASE_URL_REQUIRED").Errorf("api base url is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, oops.Code("API_BASE_URL_INVALID").With("url", cfg.BaseURL).Errorf("invalid api base url")
	}
	base.Path = strings.TrimSuffix(base.Path, "/")

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = DefaultRetryBase
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		base:       base,
		http:       &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: cfg.MaxRetries,
		retryBase:  cfg.RetryBase,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

type request struct {
	op     string
	method string
	path   string
	body   any
	out    any
}

func (c *Client) do(ctx context.Context, req request) error {
	ctx, span := c.tracer.Start(ctx, "api."+req.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.method),
			attribute.String("api.operation", req.op),
		),
	)
	defer span.End()

	start := time.Now()
	var err error
	if req.method == http.MethodGet {
		backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))
		err = retry.Do(ctx, backoff, func(ctx context.Context) error {
			rerr := c.attempt(ctx, req)
			if isTransient(rerr) {
				c.logger.DebugContext(ctx, "retrying api request", "operation", req.op, "error", rerr)
				return retry.RetryableError(rerr)
			}
			return rerr
		})
	} else {
		err = c.attempt(ctx, req)
	}
	elapsed := time.Since(start)

	status := statusLabel(err)
	c.metrics.RecordAPIRequest(req.op, status, elapsed)
	span.SetAttributes(attribute.String("api.status", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Message(err))
		c.logger.WarnContext(ctx, "api request failed", "operation", req.op, "status", status, "elapsed", elapsed, "error", err)
		return err
	}
	c.logger.DebugContext(ctx, "api request completed", "operation", req.op, "elapsed", elapsed)
	return nil
}

func (c *Client) attempt(ctx context.Context, req request) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return oops.Code("API_UNREACHABLE").With("operation", req.op).Wrap(err)
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return oops.Code("API_ENCODE_FAILED").With("operation", req.op).Wrap(err)
		}
		body = bytes.NewReader(payload)
	}

	endpoint := c.base.JoinPath(req.path)
	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint.String(), body)
	if err != nil {
		return oops.Code("API_ENCODE_FAILED").With("operation", req.op).Wrap(err)
	}
	requestID := ulid.Make().String()
	httpReq.Header.Set(RequestIDHeader, requestID)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return oops.Code("API_UNREACHABLE").
			With("operation", req.op).
			With("request_id", requestID).
			Public("The server could not be reached.").
			Wrap(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return oops.Code("API_UNREACHABLE").With("operation", req.op).With("request_id", requestID).Wrap(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejected(req.op, requestID, resp.StatusCode, raw)
	}

	if req.out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, req.out); err != nil {
		return oops.Code("API_MALFORMED_RESPONSE").
			With("operation", req.op).
			With("request_id", requestID).
			Public("The server sent an unexpected response.").
			Wrap(err)
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
}

func rejected(op, requestID string, status int, raw []byte) error {
	var eb errorBody
	msg := http.StatusText(status)
	if json.Unmarshal(raw, &eb) == nil && eb.Message != "" {
		msg = eb.Message
	}
	return oops.Code("API_REQUEST_REJECTED").
		With("operation", op).
		With("request_id", requestID).
		With("status", status).
		Public(msg).
		Errorf("%s rejected with status %d", op, status)
}

// StatusCode returns the HTTP status of a rejected request, or 0.
func StatusCode(err error) int {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return 0
	}
	if status, ok := oopsErr.Context()["status"].(int); ok {
		return status
	}
	return 0
}

// Message returns the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		if public := oopsErr.Public(); public != "" {
			return public
		}
	}
	return err.Error()
}

func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	switch errutil.Code(err) {
	case "API_UNREACHABLE":
		return true
	case "API_REQUEST_REJECTED":
		switch StatusCode(err) {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}

func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if status := StatusCode(err); status != 0 {
		return strconv.Itoa(status)
	}
	switch errutil.Code(err) {
	case "API_UNREACHABLE":
		return "unreachable"
	case "API_MALFORMED_RESPONSE":
		return "malformed"
	default:
		return "error"
	}
}
