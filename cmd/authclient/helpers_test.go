// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	testclock "k8s.io/utils/clock/testing"

	"github.com/tokentemplate/authclient/internal/kvstore"
)

var epoch = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

const (
	goodPassword = "secret"
	goodToken    = "good"
	apiToken     = "tok-123"
	apiUserID    = "user-1"
)

// fakeAPI is a user API that accepts goodPassword and goodToken.
type fakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
	bodies   map[string]map[string]any
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{bodies: map[string]map[string]any{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/signup", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusCreated, map[string]any{"message": "User created!"})
	})
	mux.HandleFunc("POST /api/user/login", func(w http.ResponseWriter, r *http.Request) {
		body := f.record(r)
		if body["password"] != goodPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid authentication credentials!"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": apiToken, "expiresIn": 3600, "userId": apiUserID})
	})
	mux.HandleFunc("POST /api/user/reset-password", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"message": "Email sent"})
	})
	mux.HandleFunc("GET /api/user/new-password/{token}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if r.PathValue("token") != goodToken {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Token not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"userId": apiUserID})
	})
	mux.HandleFunc("POST /api/user/new-password", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"message": "Password changed"})
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) record(r *http.Request) map[string]any {
	key := r.Method + " " + r.URL.Path
	raw, _ := io.ReadAll(r.Body)
	body := map[string]any{}
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, key)
	f.bodies[key] = body
	return body
}

func (f *fakeAPI) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeAPI) Body(key string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// scriptedPrompter answers prompts in order and records them.
type scriptedPrompter struct {
	mu      sync.Mutex
	answers []string
	prompts []string
}

func (p *scriptedPrompter) Prompt(prompt string) (string, error) {
	return p.next(prompt)
}

func (p *scriptedPrompter) PasswordPrompt(prompt string) (string, error) {
	return p.next(prompt)
}

func (p *scriptedPrompter) next(prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	if len(p.answers) == 0 {
		return "", io.EOF
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

// step is one answer of a scripted line editor. before runs first.
type step struct {
	before func()
	line   string
}

// scriptedLines is a LineReader that plays steps, then reports end of input.
type scriptedLines struct {
	steps   []step
	prompts []string
	history []string
	closed  bool
}

func (s *scriptedLines) Prompt(prompt string) (string, error) {
	return s.next(prompt)
}

func (s *scriptedLines) PasswordPrompt(prompt string) (string, error) {
	return s.next(prompt)
}

func (s *scriptedLines) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func (s *scriptedLines) Close() error {
	s.closed = true
	return nil
}

func (s *scriptedLines) next(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.steps) == 0 {
		return "", io.EOF
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	if st.before != nil {
		st.before()
	}
	return st.line, nil
}

// cli runs commands against a fake API with a shared memory store and a
// fake clock, so state carries over between runs like it does on disk.
type cli struct {
	t     *testing.T
	api   *fakeAPI
	store *kvstore.MemoryStore
	clock *testclock.FakeClock
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))

	return &cli{
		t:     t,
		api:   newFakeAPI(t),
		store: kvstore.NewMemoryStore(),
		clock: testclock.NewFakeClock(epoch),
	}
}

func (c *cli) deps(answers ...string) *Deps {
	return &Deps{
		StoreFactory: func(context.Context, kvstore.Options) (kvstore.Store, error) {
			return c.store, nil
		},
		Clock:      c.clock,
		HTTPClient: c.api.Client(),
		Prompter:   &scriptedPrompter{answers: answers},
	}
}

func (c *cli) args(args ...string) []string {
	return append(args,
		"--api-url", c.api.URL+"/api/user",
		"--store", "memory",
		"--log-level", "error",
	)
}

// run executes one command line and returns its stdout.
func (c *cli) run(answers []string, args ...string) (string, error) {
	return c.runWithDeps(c.deps(answers...), args...)
}

func (c *cli) runWithDeps(deps *Deps, args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCmdWithDeps(deps)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetArgs(c.args(args...))

	err := cmd.Execute()
	return out.String(), err
}

func (c *cli) login() {
	c.t.Helper()
	if _, err := c.run([]string{goodPassword}, "login", "--email", "ada@example.com"); err != nil {
		c.t.Fatalf("login: %v", err)
	}
}

func (c *cli) stored(key string) string {
	v, err := c.store.Get(context.Background(), key)
	if err != nil {
		return ""
	}
	return v
}
