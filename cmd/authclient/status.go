// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tokentemplate/authclient/internal/session"
)

// SessionStatus describes the restored session.
type SessionStatus struct {
	Authenticated    bool       `json:"authenticated"`
	UserID           string     `json:"user_id,omitempty"`
	TokenFingerprint string     `json:"token_fingerprint,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	RemainingSeconds int64      `json:"remaining_seconds,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

func newStatusCmd(deps *Deps) *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Long:  `Show whether a session is active, its user and how long it has left.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, deps, func(_ context.Context, a *app) error {
				return printStatus(cmd.OutOrStdout(), a, cfg.jsonOutput)
			})
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")
	return cmd
}

func printStatus(w io.Writer, a *app, jsonOutput bool) error {
	status := buildStatus(a.sessions.Snapshot(), a.sessions.Now())

	var output string
	var err error
	if jsonOutput {
		output, err = formatStatusJSON(status)
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
	} else {
		output = formatStatusTable(status)
	}

	_, err = fmt.Fprintln(w, output)
	return err
}

// buildStatus summarizes s at now. The token itself is never shown.
func buildStatus(s session.State, now time.Time) SessionStatus {
	if !s.Authenticated {
		return SessionStatus{}
	}
	expiresAt := s.ExpiresAt.UTC()
	return SessionStatus{
		Authenticated:    true,
		UserID:           s.UserID,
		TokenFingerprint: session.Fingerprint(s.Token),
		ExpiresAt:        &expiresAt,
		RemainingSeconds: int64(s.Remaining(now) / time.Second),
	}
}

func formatStatusJSON(status SessionStatus) (string, error) {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func formatStatusTable(status SessionStatus) string {
	if !status.Authenticated {
		return "Not logged in."
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "USER\t%s\n", status.UserID)
	_, _ = fmt.Fprintf(w, "TOKEN\t%s\n", status.TokenFingerprint)
	_, _ = fmt.Fprintf(w, "EXPIRES\t%s\n", status.ExpiresAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "REMAINING\t%s\n", (time.Duration(status.RemainingSeconds) * time.Second).String())
	_ = w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}
