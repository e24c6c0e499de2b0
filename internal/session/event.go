// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package session

// Kind identifies what caused an authentication status change.
type Kind string

// Event kinds published by the Manager.
const (
	KindLogin      Kind = "login"
	KindRestored   Kind = "restored"
	KindLogout     Kind = "logout"
	KindExpired    Kind = "expired"
	KindAuthFailed Kind = "auth_failed"
)

// Event is a single authentication status change.
type Event struct {
	Kind          Kind
	Authenticated bool
}

// Listener receives status events. It runs on the goroutine that caused the
// transition, which for KindExpired is the timer goroutine.
type Listener func(Event)
