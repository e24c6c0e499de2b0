// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/tokentemplate/authclient/internal/home"
	"github.com/tokentemplate/authclient/internal/route"
)

// views renders the pages the router navigates to. The home view stays
// subscribed to session changes until another page is shown.
type views struct {
	a      *app
	header lipgloss.Style

	mu   sync.Mutex
	home *home.View
}

func registerViews(a *app) *views {
	v := &views{
		a:      a,
		header: lipgloss.NewRenderer(a.out).NewStyle().Faint(true),
	}
	a.router.Handle(route.PathHome, v.showHome)
	a.router.Handle("home", v.showHome)
	a.router.Handle(route.PathLogin, v.showPage("Log in"))
	a.router.Handle(route.PathSignup, v.showPage("Sign up"))
	a.router.Handle(route.PathResetPassword, v.showPage("Reset password"))
	a.router.Handle(route.PathNewPassword, v.showNewPassword)
	return v
}

func (v *views) showHome(_ context.Context, _ route.Match) error {
	v.mu.Lock()
	if v.home != nil {
		v.home.Close()
	}
	view := home.Open(v.a.sessions)
	v.home = view
	v.mu.Unlock()

	return view.Render(v.a.out)
}

func (v *views) showPage(title string) route.Handler {
	return func(_ context.Context, m route.Match) error {
		v.leaveHome()
		_, err := fmt.Fprintln(v.a.out, v.header.Render(fmt.Sprintf("» %s (/%s)", title, m.Path)))
		return err
	}
}

// showNewPassword resolves the reset token from the path, then asks for the
// new password and submits it.
func (v *views) showNewPassword(ctx context.Context, m route.Match) error {
	if err := v.showPage("New password")(ctx, m); err != nil {
		return err
	}

	token := m.Param("token")
	userID, err := v.a.service.OpenResetToken(ctx, token)
	if err != nil {
		return err
	}

	password, err := v.a.prompter.PasswordPrompt("New password: ")
	if err != nil {
		return err
	}
	return v.a.service.ChangePassword(ctx, token, userID, password)
}

func (v *views) leaveHome() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.home != nil {
		v.home.Close()
		v.home = nil
	}
}

func (v *views) close() {
	v.leaveHome()
}
