// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package auth

import (
	"net/mail"
	"strings"

	"github.com/samber/oops"
)

// MaxPasswordLength bounds password input.
const MaxPasswordLength = 256

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return oops.Code("AUTH_INVALID_FORM").
			With("field", "email").
			Public("Please enter an email address.").
			Errorf("email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return oops.Code("AUTH_INVALID_FORM").
			With("field", "email").
			Public("Please enter a valid email address.").
			Errorf("invalid email address")
	}
	return nil
}

// ValidatePassword checks that password is present and bounded.
func ValidatePassword(password string) error {
	if password == "" {
		return oops.Code("AUTH_INVALID_FORM").
			With("field", "password").
			Public("Please enter a password.").
			Errorf("password cannot be empty")
	}
	if len(password) > MaxPasswordLength {
		return oops.Code("AUTH_INVALID_FORM").
			With("field", "password").
			With("max", MaxPasswordLength).
			Public("The password is too long.").
			Errorf("password must be at most %d bytes", MaxPasswordLength)
	}
	return nil
}

// ValidateCredentials checks an email and password pair.
func ValidateCredentials(email, password string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidatePassword(password)
}
