// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package route

import (
	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// DefaultProtected lists the views that need a session: the home view under
// both of its names.
var DefaultProtected = []string{PathHome, "home"}

// AuthChecker reports whether a session is active.
type AuthChecker interface {
	IsAuthenticated() bool
}

type matcher func(path string) bool

// Guard decides whether a path may be activated.
type Guard struct {
	auth     AuthChecker
	patterns []string
	matchers []matcher
}

// NewGuard compiles the protected patterns. Patterns use glob syntax with
// '/' as separator; the empty pattern matches only the home path.
func NewGuard(auth AuthChecker, patterns []string) (*Guard, error) {
	if auth == nil {
		return nil, oops.Code("ROUTE_GUARD_INVALID").Errorf("auth checker is required")
	}
	if patterns == nil {
		patterns = DefaultProtected
	}
	g := &Guard{auth: auth, patterns: patterns}
	for _, p := range patterns {
		p = Normalize(p)
		if p == PathHome {
			g.matchers = append(g.matchers, func(path string) bool { return path == PathHome })
			continue
		}
		compiled, err := glob.Compile(p, '/')
		if err != nil {
			return nil, oops.Code("ROUTE_GUARD_INVALID").With("pattern", p).Wrap(err)
		}
		g.matchers = append(g.matchers, compiled.Match)
	}
	return g, nil
}

// Patterns returns the protected patterns.
func (g *Guard) Patterns() []string {
	return g.patterns
}

// Protects reports whether path needs a session.
func (g *Guard) Protects(path string) bool {
	path = Normalize(path)
	for _, m := range g.matchers {
		if m(path) {
			return true
		}
	}
	return false
}

// CanActivate reports whether path may be shown now.
func (g *Guard) CanActivate(path string) bool {
	return !g.Protects(path) || g.auth.IsAuthenticated()
}
