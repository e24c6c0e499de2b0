// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/tokentemplate/authclient/internal/api"
	"github.com/tokentemplate/authclient/internal/auth"
	"github.com/tokentemplate/authclient/internal/config"
	"github.com/tokentemplate/authclient/internal/kvstore"
	"github.com/tokentemplate/authclient/internal/logging"
	"github.com/tokentemplate/authclient/internal/notify"
	"github.com/tokentemplate/authclient/internal/observability"
	"github.com/tokentemplate/authclient/internal/route"
	"github.com/tokentemplate/authclient/internal/session"
	"github.com/tokentemplate/authclient/pkg/errutil"
)

const serviceName = "authclient"

// app is one application run: configuration, session, transport and views
// wired together.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	tracer   *sdktrace.TracerProvider
	store    kvstore.Store
	sessions *session.Manager
	client   *api.Client
	router   *route.Router
	sink     *countingSink
	service  *auth.Service
	prompter Prompter
	out      io.Writer
	views    *views
}

// loadConfig loads the configuration for cmd from --config and the flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(configFile, cmd.Flags())
}

// newApp wires an application run and restores any persisted session.
// metrics may be nil.
func newApp(ctx context.Context, cmd *cobra.Command, deps *Deps, metrics *observability.Metrics) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newAppWithConfig(ctx, cmd, cfg, deps, metrics)
}

func newAppWithConfig(ctx context.Context, cmd *cobra.Command, cfg *config.Config, deps *Deps, metrics *observability.Metrics) (*app, error) {
	deps = deps.withDefaults()

	// config.Load has validated the level.
	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.Setup(serviceName, version, cfg.Log.Format, level, cmd.ErrOrStderr())

	store, err := deps.StoreFactory(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		tracer: sdktrace.NewTracerProvider(),
		store:  store,
		out:    cmd.OutOrStdout(),
	}

	a.sessions = session.NewManager(store,
		session.WithClock(deps.Clock),
		session.WithLogger(logger),
		session.WithMetrics(metrics),
	)

	opts := []api.Option{
		api.WithLogger(logger),
		api.WithMetrics(metrics),
		api.WithTracerProvider(a.tracer),
	}
	if deps.HTTPClient != nil {
		opts = append(opts, api.WithHTTPClient(deps.HTTPClient))
	}
	a.client, err = api.New(api.Config{
		BaseURL:       cfg.API.URL,
		Timeout:       cfg.API.Timeout,
		RatePerSecond: cfg.API.RatePerSecond,
		Burst:         cfg.API.Burst,
		MaxRetries:    cfg.API.MaxRetries,
		RetryBase:     cfg.API.RetryBase,
	}, opts...)
	if err != nil {
		a.close()
		return nil, err
	}

	guard, err := route.NewGuard(a.sessions, cfg.App.Protected)
	if err != nil {
		a.close()
		return nil, err
	}
	a.router = route.NewRouter(guard, logger)
	a.sink = &countingSink{Sink: notify.NewTerminal(a.out)}

	a.service, err = auth.NewService(a.client, a.sessions, a.sink, a.router, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	a.prompter = deps.Prompter
	if a.prompter == nil {
		a.prompter = newTermPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	}

	a.views = registerViews(a)

	a.sessions.Restore(ctx)
	return a, nil
}

// span starts the root span of a command so its logs carry a trace id.
func (a *app) span(ctx context.Context, name string) (context.Context, trace.Span) {
	return a.tracer.Tracer(serviceName).Start(ctx, name)
}

// close stops the expiry timer and releases the store.
func (a *app) close() {
	if a.views != nil {
		a.views.close()
	}
	if a.sessions != nil {
		a.sessions.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		errutil.LogError(a.logger, "failed to shut down tracer provider", err)
	}
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errutil.LogError(a.logger, "failed to close session store", err)
		}
	}
}

// withApp runs fn inside an application run named after cmd.
func withApp(cmd *cobra.Command, deps *Deps, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cmd, deps, nil)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, span := a.span(ctx, "authclient."+cmd.Name())
	defer span.End()

	shown := a.sink.Shown()
	if err := fn(ctx, a); err != nil {
		if a.sink.Shown() == shown {
			a.sink.Error(api.Message(err))
		}
		return shownError{err}
	}
	return nil
}

// countingSink counts the errors it has shown so callers do not show the
// same failure twice.
type countingSink struct {
	notify.Sink
	errors atomic.Int64
}

func (c *countingSink) Error(message string) {
	c.errors.Add(1)
	c.Sink.Error(message)
}

// Shown returns how many errors have been shown.
func (c *countingSink) Shown() int64 {
	return c.errors.Load()
}

// shownError marks an error the user has already seen.
type shownError struct {
	error
}

func (e shownError) Unwrap() error {
	return e.error
}
