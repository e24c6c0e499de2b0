// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Credentials is the body of signup and login requests.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is a successful login response.
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
	UserID    string `json:"userId"`
}

// Expiry returns ExpiresIn as a duration.
func (r LoginResult) Expiry() time.Duration {
	return time.Duration(r.ExpiresIn) * time.Second
}

// ResetTokenData identifies the user a password reset token belongs to.
type ResetTokenData struct {
	UserID string `json:"userId"`
}

// NewPassword is the body of a password change.
type NewPassword struct {
	Password string `json:"password"`
	UserID   string `json:"userId"`
	Token    string `json:"passwordToken"`
}

type resetRequest struct {
	Email  string `json:"email"`
	Domain string `json:"domain"`
}

// Signup registers a new user.
func (c *Client) Signup(ctx context.Context, email, password string) error {
	return c.do(ctx, request{
		op:     "signup",
		method: http.MethodPost,
		path:   "signup",
		body:   Credentials{Email: email, Password: password},
	})
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	err := c.do(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   "login",
		body:   Credentials{Email: email, Password: password},
		out:    &res,
	})
	if err != nil {
		return LoginResult{}, err
	}
	if res.Token == "" || res.ExpiresIn <= 0 {
		return LoginResult{}, oops.Code("API_MALFORMED_RESPONSE").
			With("operation", "login").
			Public("The server sent an unexpected response.").
			Errorf("login response missing token or expiry")
	}
	return res, nil
}

// RequestPasswordReset asks the server to email a reset link that points at
// originDomain.
func (c *Client) RequestPasswordReset(ctx context.Context, email, originDomain string) error {
	return c.do(ctx, request{
		op:     "reset_password",
		method: http.MethodPost,
		path:   "reset-password",
		body:   resetRequest{Email: email, Domain: originDomain},
	})
}

// FetchResetToken resolves a reset token to its user.
func (c *Client) FetchResetToken(ctx context.Context, token string) (ResetTokenData, error) {
	if token == "" || token == "." || token == ".." || strings.ContainsAny(token, "/?#") {
		return ResetTokenData{}, oops.Code("API_INVALID_ARGUMENT").
			Public("The reset link is not valid.").
			Errorf("invalid reset token")
	}
	var res ResetTokenData
	err := c.do(ctx, request{
		op:     "fetch_reset_token",
		method: http.MethodGet,
		path:   "new-password/" + token,
		out:    &res,
	})
	if err != nil {
		return ResetTokenData{}, err
	}
	return res, nil
}

// SubmitNewPassword sets a new password using a reset token.
func (c *Client) SubmitNewPassword(ctx context.Context, np NewPassword) error {
	return c.do(ctx, request{
		op:     "new_password",
		method: http.MethodPost,
		path:   "new-password",
		body:   np,
	})
}
