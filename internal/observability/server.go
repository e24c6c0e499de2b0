// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

// Package observability provides HTTP endpoints for metrics and health checks.
package observability

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
)

// ReadinessChecker returns whether the client is ready (its session store is usable).
type ReadinessChecker func() bool

// Metrics contains the client's custom Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SessionEventsTotal *prometheus.CounterVec
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	Authenticated      prometheus.Gauge
}

// NewMetrics creates and registers the client metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authclient_session_events_total",
				Help: "Total number of session state events by kind",
			},
			[]string{"kind"},
		),
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authclient_api_requests_total",
				Help: "Total number of auth API requests by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		APIRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "authclient_api_request_duration_seconds",
				Help:    "Auth API request latency by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		Authenticated: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "authclient_authenticated",
				Help: "1 while a session is active, 0 otherwise",
			},
		),
	}

	reg.MustRegister(m.SessionEventsTotal)
	reg.MustRegister(m.APIRequestsTotal)
	reg.MustRegister(m.APIRequestDuration)
	reg.MustRegister(m.Authenticated)

	return m
}

// RecordSessionEvent counts a session event and tracks the authenticated gauge.
func (m *Metrics) RecordSessionEvent(kind string, authenticated bool) {
	if m == nil {
		return
	}
	m.SessionEventsTotal.WithLabelValues(kind).Inc()
	if authenticated {
		m.Authenticated.Set(1)
	} else {
		m.Authenticated.Set(0)
	}
}

// RecordAPIRequest counts one API call and observes its latency.
func (m *Metrics) RecordAPIRequest(operation, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.APIRequestsTotal.WithLabelValues(operation, status).Inc()
	m.APIRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Server provides HTTP endpoints for observability (metrics and health probes).
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	registry   *prometheus.Registry
	metrics    *Metrics
	isReady    ReadinessChecker
	running    atomic.Bool
}

// NewServer creates an observability server listening on addr ("host:port").
// The server owns a private registry holding the Go, process and client metrics.
func NewServer(addr string, readinessChecker ReadinessChecker) *Server {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics := NewMetrics(registry)

	s := &Server{
		addr:     addr,
		registry: registry,
		metrics:  metrics,
		isReady:  readinessChecker,
	}

	return s
}

// Metrics returns the custom metrics for recording session and API events.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start begins serving /metrics and the health probes. The returned channel
// receives a serve error if the listener fails and is closed on shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("observability server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	mux.HandleFunc("/healthz/liveness", s.handleLiveness)
	mux.HandleFunc("/healthz/readiness", s.handleReadiness)

	httpSrv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("observability server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("observability server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the observability server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_observability_server").Wrap(err)
		}
	}

	slog.Info("observability server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// handleLiveness returns 200 while the process is running.
func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeProbe(w, http.StatusOK, "ok")
}

// handleReadiness returns 200 if the client is ready, or 503 if not.
func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if s.isReady == nil || s.isReady() {
		writeProbe(w, http.StatusOK, "ok")
		return
	}
	writeProbe(w, http.StatusServiceUnavailable, "not ready")
}

func writeProbe(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // probe write error is acceptable, client may disconnect
	w.Write([]byte(body + "\n"))
}
