// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/tokentemplate/authclient/internal/api"
	"github.com/tokentemplate/authclient/internal/notify"
	"github.com/tokentemplate/authclient/internal/route"
	"github.com/tokentemplate/authclient/internal/session"
)

// Transport is the subset of the API client the flows use.
type Transport interface {
	Signup(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
	RequestPasswordReset(ctx context.Context, email, originDomain string) error
	FetchResetToken(ctx context.Context, token string) (api.ResetTokenData, error)
	SubmitNewPassword(ctx context.Context, np api.NewPassword) error
}

// Sessions is the subset of session.Manager the flows use.
type Sessions interface {
	Login(ctx context.Context, token string, expiresIn time.Duration, userID string) error
	Logout(ctx context.Context)
	PublishAuthFailure()
	Subscribe(fn session.Listener) *session.Subscription
}

// Navigator switches views.
type Navigator interface {
	Navigate(ctx context.Context, path string) (string, error)
}

// Service runs the authentication flows.
type Service struct {
	api      Transport
	sessions Sessions
	sink     notify.Sink
	nav      Navigator
	logger   *slog.Logger
}

// NewService creates a Service. logger may be nil.
func NewService(transport Transport, sessions Sessions, sink notify.Sink, nav Navigator, logger *slog.Logger) (*Service, error) {
	if transport == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("api transport is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("session manager is required")
	}
	if sink == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("notification sink is required")
	}
	if nav == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("navigator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: transport, sessions: sessions, sink: sink, nav: nav, logger: logger}, nil
}

// CreateUser registers a user and moves to the login view.
func (s *Service) CreateUser(ctx context.Context, email, password string) error {
	if err := s.checkForm(ValidateCredentials(email, password)); err != nil {
		return err
	}

	s.sink.Loading("Creating user with "+email+" address...", notify.LoadingText)
	if err := s.api.Signup(ctx, email, password); err != nil {
		return s.fail(ctx, "AUTH_SIGNUP_FAILED", err)
	}

	s.logger.InfoContext(ctx, "user created", "email", email)
	s.navigate(ctx, route.PathLogin)
	s.sink.Success("User created", "User <strong>"+email+"</strong> was created.")
	return nil
}

// Login exchanges credentials for a token, starts the session and moves to
// the home view.
func (s *Service) Login(ctx context.Context, email, password string) error {
	if err := s.checkForm(ValidateCredentials(email, password)); err != nil {
		return err
	}

	s.sink.Loading("Logging...", notify.LoadingText)
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return s.fail(ctx, "AUTH_LOGIN_FAILED", err)
	}

	if err := s.sessions.Login(ctx, res.Token, res.Expiry(), res.UserID); err != nil {
		return s.fail(ctx, "AUTH_LOGIN_FAILED", err)
	}

	s.navigate(ctx, route.PathHome)
	s.sink.Success("Welcome!", "")
	return nil
}

// Logout ends the session and moves to the login view.
func (s *Service) Logout(ctx context.Context) {
	s.sessions.Logout(ctx)
	s.navigate(ctx, route.PathLogin)
}

// WatchExpiry shows the session-expired notice and returns to the login view
// whenever the session lapses. Unsubscribe the result to stop.
func (s *Service) WatchExpiry() *session.Subscription {
	return s.sessions.Subscribe(func(ev session.Event) {
		if ev.Kind != session.KindExpired {
			return
		}
		s.sink.SessionExpired()
		s.navigate(context.Background(), route.PathLogin)
	})
}

// checkForm reports an invalid form through the sink.
func (s *Service) checkForm(err error) error {
	if err == nil {
		return nil
	}
	s.sink.Error(api.Message(err))
	return err
}

// fail handles a failed request: publish false, show the server's message and
// hand the error back.
func (s *Service) fail(ctx context.Context, code string, err error) error {
	s.sessions.PublishAuthFailure()
	s.sink.Error(api.Message(err))
	s.logger.DebugContext(ctx, "auth flow failed", "code", code, "error", err)
	return oops.Code(code).Wrap(err)
}

func (s *Service) navigate(ctx context.Context, path string) {
	if _, err := s.nav.Navigate(ctx, path); err != nil {
		s.logger.WarnContext(ctx, "navigation failed", "path", path, "error", err)
	}
}
