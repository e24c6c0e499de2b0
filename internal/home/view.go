// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

// Package home implements the guarded home view.
package home

import (
	"fmt"
	"io"
	"sync"

	"github.com/tokentemplate/authclient/internal/session"
)

// Source is the session state the view reads.
type Source interface {
	UserID() string
	IsAuthenticated() bool
	Subscribe(session.Listener) *session.Subscription
}

// View tracks the current user while open.
type View struct {
	src Source
	sub *session.Subscription

	mu            sync.Mutex
	userID        string
	authenticated bool
	updates       int
}

// Open reads the current state and subscribes to changes.
func Open(src Source) *View {
	v := &View{
		src:           src,
		userID:        src.UserID(),
		authenticated: src.IsAuthenticated(),
	}
	v.sub = src.Subscribe(v.onStatus)
	return v
}

func (v *View) onStatus(ev session.Event) {
	userID := v.src.UserID()
	v.mu.Lock()
	defer v.mu.Unlock()
	v.authenticated = ev.Authenticated
	v.userID = userID
	v.updates++
}

// UserID returns the user shown by the view.
func (v *View) UserID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.userID
}

// Authenticated returns the authenticated flag shown by the view.
func (v *View) Authenticated() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.authenticated
}

// Updates returns how many status events the view has seen.
func (v *View) Updates() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.updates
}

// Render writes the view.
func (v *View) Render(w io.Writer) error {
	v.mu.Lock()
	userID, authenticated := v.userID, v.authenticated
	v.mu.Unlock()

	if !authenticated {
		_, err := fmt.Fprintln(w, "Not logged in.")
		return err
	}
	_, err := fmt.Fprintf(w, "Home\n  user: %s\n  authenticated: %t\n", userID, authenticated)
	return err
}

// Close unsubscribes from status changes.
func (v *View) Close() {
	v.sub.Unsubscribe()
}
