// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package main

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokentemplate/authclient/internal/session"
)

func TestStatus_Flags(t *testing.T) {
	cmd := newStatusCmd(nil)
	assert.NotNil(t, cmd.Flags().Lookup("json"))
	assert.Equal(t, "status", cmd.Use)
}

func TestStatus_NotLoggedIn(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(nil, "status")

	require.NoError(t, err)
	assert.Equal(t, "Not logged in.\n", out)
}

func TestStatus_Table(t *testing.T) {
	c := newCLI(t)
	c.login()
	c.clock.Step(10 * time.Minute)

	out, err := c.run(nil, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "USER       user-1")
	assert.Contains(t, out, "TOKEN      "+session.Fingerprint(apiToken))
	assert.Contains(t, out, "EXPIRES    2026-03-14T10:26:53Z")
	assert.Contains(t, out, "REMAINING  50m0s")
	assert.NotContains(t, out, apiToken)
}

func TestStatus_JSON(t *testing.T) {
	c := newCLI(t)
	c.login()

	out, err := c.run(nil, "status", "--json")
	require.NoError(t, err)

	var got SessionStatus
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Authenticated)
	assert.Equal(t, apiUserID, got.UserID)
	assert.Equal(t, session.Fingerprint(apiToken), got.TokenFingerprint)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, epoch.Add(time.Hour).Equal(*got.ExpiresAt))
	assert.Equal(t, int64(3600), got.RemainingSeconds)
}

func TestBuildStatus(t *testing.T) {
	now := epoch
	assert.Equal(t, SessionStatus{}, buildStatus(session.State{}, now))

	s := session.State{
		Token:         "abc123",
		UserID:        "user-1",
		Authenticated: true,
		ExpiresAt:     now.Add(90 * time.Second),
	}
	got := buildStatus(s, now)
	assert.Equal(t, int64(90), got.RemainingSeconds)
	assert.Equal(t, session.Fingerprint("abc123"), got.TokenFingerprint)

	got = buildStatus(s, now.Add(time.Hour))
	assert.Zero(t, got.RemainingSeconds, "remaining time never goes negative")
}

func TestFormatStatusJSON_OmitsEmpty(t *testing.T) {
	out, err := formatStatusJSON(SessionStatus{})

	require.NoError(t, err)
	assert.JSONEq(t, `{"authenticated": false}`, out)
}

func TestFormatStatusTable_NoTrailingNewline(t *testing.T) {
	expires := epoch
	out := formatStatusTable(SessionStatus{
		Authenticated:    true,
		UserID:           "u",
		TokenFingerprint: "f",
		ExpiresAt:        &expires,
	})

	assert.False(t, strings.HasSuffix(out, "\n"))
	assert.Len(t, strings.Split(out, "\n"), 4)
}
