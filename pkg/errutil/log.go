// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

// Package errutil holds helpers for logging and inspecting oops errors.
package errutil

import (
	"fmt"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context if it's an oops error.
// For oops errors it logs the message, code, context and the public
// (user-facing) message when one was attached. Standard errors are logged
// as their string.
func LogError(logger *slog.Logger, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.Error(msg, "error", err)
		return
	}

	attrs := []any{"error", oopsErr.Error()}
	if code := Code(err); code != "" {
		attrs = append(attrs, "code", code)
	}
	if public := oopsErr.Public(); public != "" {
		attrs = append(attrs, "public", public)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	logger.Error(msg, attrs...)
}

// Code returns the deepest oops code in err's chain as a string, or "" when
// err carries no code.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code := oopsErr.Code()
	if code == nil {
		return ""
	}
	if s, ok := code.(string); ok {
		return s
	}
	return fmt.Sprint(code)
}
