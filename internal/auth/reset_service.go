// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package auth

import (
	"context"
	"net/url"
	"strings"

	"github.com/samber/oops"

	"github.com/tokentemplate/authclient/internal/api"
	"github.com/tokentemplate/authclient/internal/route"
)

// DevOrigin replaces any localhost origin in reset links.
const DevOrigin = "http://localhost:4200/"

// OriginDomain returns the domain placed in reset emails for origin. Local
// development origins map to DevOrigin; anything else yields its host name.
func OriginDomain(origin string) string {
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	if strings.Contains(host, "localhost") {
		return DevOrigin
	}
	return host
}

// RequestPasswordReset asks the server to email a reset link for email.
func (s *Service) RequestPasswordReset(ctx context.Context, email, origin string) error {
	if err := s.checkForm(ValidateEmail(email)); err != nil {
		return err
	}

	s.sink.Loading("Sending reset email...", "")
	if err := s.api.RequestPasswordReset(ctx, email, OriginDomain(origin)); err != nil {
		return s.fail(ctx, "AUTH_RESET_REQUEST_FAILED", err)
	}

	s.sink.Success("Email sent", "A reset link was sent to <strong>"+email+"</strong>.")
	return nil
}

// OpenResetToken resolves the token of the new-password view to its user.
func (s *Service) OpenResetToken(ctx context.Context, token string) (string, error) {
	data, err := s.api.FetchResetToken(ctx, token)
	if err != nil {
		return "", s.fail(ctx, "AUTH_RESET_TOKEN_FAILED", err)
	}
	if data.UserID == "" {
		return "", s.fail(ctx, "AUTH_RESET_TOKEN_FAILED", oops.Code("API_MALFORMED_RESPONSE").
			Public("The reset link is not valid.").
			Errorf("reset token resolved to no user"))
	}
	return data.UserID, nil
}

// ChangePassword submits a new password for the user a reset token belongs
// to, then moves to the login view.
func (s *Service) ChangePassword(ctx context.Context, token, userID, password string) error {
	if err := s.checkForm(ValidatePassword(password)); err != nil {
		return err
	}

	err := s.api.SubmitNewPassword(ctx, api.NewPassword{
		Password: password,
		UserID:   userID,
		Token:    token,
	})
	if err != nil {
		return s.fail(ctx, "AUTH_NEW_PASSWORD_FAILED", err)
	}

	s.navigate(ctx, route.PathLogin)
	s.sink.Success("Password changed successfully.", "")
	return nil
}

// NewPassword runs the whole new-password view: resolve the token, then
// submit the password.
func (s *Service) NewPassword(ctx context.Context, token, password string) error {
	if err := s.checkForm(ValidatePassword(password)); err != nil {
		return err
	}
	userID, err := s.OpenResetToken(ctx, token)
	if err != nil {
		return err
	}
	return s.ChangePassword(ctx, token, userID, password)
}
