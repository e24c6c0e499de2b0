// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package auth_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	testclock "k8s.io/utils/clock/testing"

	"github.com/tokentemplate/authclient/internal/api"
	"github.com/tokentemplate/authclient/internal/auth"
	"github.com/tokentemplate/authclient/internal/kvstore"
	"github.com/tokentemplate/authclient/internal/notify"
	"github.com/tokentemplate/authclient/internal/route"
	"github.com/tokentemplate/authclient/internal/session"
)

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Signup(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *mockTransport) Login(ctx context.Context, email, password string) (api.LoginResult, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(api.LoginResult), args.Error(1)
}

func (m *mockTransport) RequestPasswordReset(ctx context.Context, email, originDomain string) error {
	args := m.Called(ctx, email, originDomain)
	return args.Error(0)
}

func (m *mockTransport) FetchResetToken(ctx context.Context, token string) (api.ResetTokenData, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(api.ResetTokenData), args.Error(1)
}

func (m *mockTransport) SubmitNewPassword(ctx context.Context, np api.NewPassword) error {
	args := m.Called(ctx, np)
	return args.Error(0)
}

// rejected builds the error the API client returns for a non-2xx reply.
func rejected(status int, message string) error {
	return oops.Code("API_REQUEST_REJECTED").
		With("status", status).
		Public(message).
		Errorf("rejected with status %d", status)
}

var errUnauthorized = rejected(http.StatusUnauthorized, "Invalid authentication credentials!")

type harness struct {
	svc    *auth.Service
	api    *mockTransport
	mgr    *session.Manager
	clock  *testclock.FakeClock
	store  *kvstore.MemoryStore
	sink   *notify.Recorder
	router *route.Router
	events *[]session.Event
	logs   *bytes.Buffer
	shown  *[]string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fc := testclock.NewFakeClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	store := kvstore.NewMemoryStore()
	mgr := session.NewManager(store, session.WithClock(fc), session.WithLogger(logger))
	t.Cleanup(mgr.Close)

	guard, err := route.NewGuard(mgr, nil)
	require.NoError(t, err)
	router := route.NewRouter(guard, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var shown []string
	for _, p := range []string{route.PathHome, route.PathLogin, route.PathSignup, route.PathResetPassword, route.PathNewPassword} {
		router.Handle(p, func(_ context.Context, m route.Match) error {
			shown = append(shown, m.Path)
			return nil
		})
	}

	var events []session.Event
	mgr.Subscribe(func(ev session.Event) { events = append(events, ev) })

	transport := &mockTransport{}
	t.Cleanup(func() { transport.AssertExpectations(t) })
	sink := &notify.Recorder{}

	svc, err := auth.NewService(transport, mgr, sink, router, logger)
	require.NoError(t, err)

	return harness{
		svc: svc, api: transport, mgr: mgr, clock: fc, store: store, sink: sink,
		router: router, events: &events, logs: &logs, shown: &shown,
	}
}

func (h harness) kinds() []session.Kind {
	out := make([]session.Kind, len(*h.events))
	for i, ev := range *h.events {
		out[i] = ev.Kind
	}
	return out
}
