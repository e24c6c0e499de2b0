// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

// Package notify renders user feedback: progress, success, errors and the
// session-expired notice.
package notify

import "sync"

// Sink receives user-facing notifications.
type Sink interface {
	// Loading announces a request in flight.
	Loading(title, text string)
	// Success reports a completed action. html may contain <strong> markup.
	Success(title, html string)
	// Error reports a failed action with the server's message.
	Error(message string)
	// SessionExpired tells the user to log in again.
	SessionExpired()
}

// Titles and texts shared by every sink.
const (
	ErrorTitle          = "An error has occurred"
	SessionExpiredTitle = "Session expired"
	SessionExpiredText  = "Your session has expired. Please log in again."
	LoadingText         = "Please wait a few seconds."
)

// Kind tags a recorded notification.
type Kind string

// Notification kinds.
const (
	KindLoading        Kind = "loading"
	KindSuccess        Kind = "success"
	KindError          Kind = "error"
	KindSessionExpired Kind = "session_expired"
)

// Notification is one call recorded by Recorder.
type Notification struct {
	Kind  Kind
	Title string
	Body  string
}

// Recorder is a Sink that keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Loading implements Sink.
func (r *Recorder) Loading(title, text string) {
	r.add(Notification{Kind: KindLoading, Title: title, Body: text})
}

// Success implements Sink.
func (r *Recorder) Success(title, html string) {
	r.add(Notification{Kind: KindSuccess, Title: title, Body: html})
}

// Error implements Sink.
func (r *Recorder) Error(message string) {
	r.add(Notification{Kind: KindError, Title: ErrorTitle, Body: message})
}

// SessionExpired implements Sink.
func (r *Recorder) SessionExpired() {
	r.add(Notification{Kind: KindSessionExpired, Title: SessionExpiredTitle, Body: SessionExpiredText})
}

func (r *Recorder) add(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Kinds returns the kinds of the recorded notifications in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.items))
	for i, n := range r.items {
		out[i] = n.Kind
	}
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
