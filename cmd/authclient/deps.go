// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package main

import (
	"context"
	"net/http"

	"github.com/peterh/liner"
	"k8s.io/utils/clock"

	"github.com/tokentemplate/authclient/internal/kvstore"
	"github.com/tokentemplate/authclient/internal/observability"
)

// Deps contains injectable dependencies for the commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// StoreFactory opens the session store.
	// Default: kvstore.Open
	StoreFactory func(ctx context.Context, opts kvstore.Options) (kvstore.Store, error)

	// Clock drives session expiry.
	// Default: clock.RealClock
	Clock clock.WithDelayedExecution

	// HTTPClient performs API requests.
	// Default: an http.Client with the configured timeout
	HTTPClient *http.Client

	// Prompter reads emails and passwords for one-shot commands.
	// Default: a terminal prompter over the command's stdin
	Prompter Prompter

	// LineReaderFactory opens the interactive line editor of the shell.
	// Default: liner.NewLiner
	LineReaderFactory func() LineReader

	// ObservabilityServerFactory creates the metrics server of the shell.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer
}

// LineReader is the line editor used by the shell. *liner.State satisfies it.
type LineReader interface {
	Prompter
	AppendHistory(item string)
	Close() error
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

// withDefaults returns a copy of deps with nil fields filled in.
func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.StoreFactory == nil {
		out.StoreFactory = kvstore.Open
	}
	if out.Clock == nil {
		out.Clock = clock.RealClock{}
	}
	if out.LineReaderFactory == nil {
		out.LineReaderFactory = func() LineReader {
			l := liner.NewLiner()
			l.SetCtrlCAborts(true)
			return l
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	return &out
}
