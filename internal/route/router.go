// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

// Package route maps view paths to handlers behind an authentication guard.
package route

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// View paths.
const (
	PathHome          = ""
	PathLogin         = "auth/login"
	PathSignup        = "auth/signup"
	PathResetPassword = "auth/reset-password"
	PathNewPassword   = "auth/new-password/:token"
)

// Match is a resolved navigation.
type Match struct {
	Pattern string
	Path    string
	Params  map[string]string
}

// Param returns a path parameter, or "".
func (m Match) Param(name string) string {
	return m.Params[name]
}

// Handler renders a view.
type Handler func(ctx context.Context, m Match) error

type entry struct {
	pattern  string
	segments []string
	handler  Handler
}

// Router resolves paths, applies the guard, and invokes handlers.
type Router struct {
	guard  *Guard
	logger *slog.Logger

	mu      sync.Mutex
	routes  []entry
	current string
}

// NewRouter creates a router. A nil guard allows every path.
func NewRouter(guard *Guard, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{guard: guard, logger: logger, current: PathLogin}
}

// Normalize trims surrounding slashes and whitespace.
func Normalize(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}

func split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Handle registers h for pattern. Segments starting with ':' are parameters.
func (r *Router) Handle(pattern string, h Handler) {
	pattern = Normalize(pattern)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, entry{pattern: pattern, segments: split(pattern), handler: h})
}

// Resolve finds the route for path without running it.
func (r *Router) Resolve(path string) (Match, Handler, error) {
	path = Normalize(path)
	parts := split(path)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.routes {
		if params, ok := matchSegments(e.segments, parts); ok {
			return Match{Pattern: e.pattern, Path: path, Params: params}, e.handler, nil
		}
	}
	return Match{}, nil, oops.Code("ROUTE_NOT_FOUND").
		With("path", path).
		Public("Unknown page: /" + path).
		Errorf("no route for %q", path)
}

func matchSegments(pattern, parts []string) (map[string]string, bool) {
	if len(pattern) != len(parts) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range pattern {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if parts[i] == "" {
				return nil, false
			}
			params[name] = parts[i]
			continue
		}
		if seg != parts[i] {
			return nil, false
		}
	}
	return params, true
}

// Navigate shows path. A guarded path without a session redirects to the
// login view. It returns the path actually shown.
func (r *Router) Navigate(ctx context.Context, path string) (string, error) {
	path = Normalize(path)
	if r.guard != nil && !r.guard.CanActivate(path) {
		r.logger.InfoContext(ctx, "navigation blocked, redirecting to login", "path", path)
		path = PathLogin
	}

	m, h, err := r.Resolve(path)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.current = m.Path
	r.mu.Unlock()

	if h != nil {
		if err := h(ctx, m); err != nil {
			return m.Path, err
		}
	}
	return m.Path, nil
}

// Current returns the path last navigated to.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}
