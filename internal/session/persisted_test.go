// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokentemplate/authclient/internal/kvstore"
	"github.com/tokentemplate/authclient/internal/session"
	"github.com/tokentemplate/authclient/pkg/errutil"
)

func TestFormatExpiration(t *testing.T) {
	local := time.FixedZone("CET", 3600)
	ts := time.Date(2026, 3, 14, 10, 0, 0, 123456789, local)

	assert.Equal(t, "2026-03-14T09:00:00.123Z", session.FormatExpiration(ts))
}

func TestParseExpiration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-14T09:00:00.123Z", time.Date(2026, 3, 14, 9, 0, 0, 123000000, time.UTC)},
		{"2026-03-14T09:00:00Z", time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)},
		{"2026-03-14T10:00:00+01:00", time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := session.ParseExpiration(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := session.ParseExpiration("not a time")
	errutil.AssertErrorCode(t, err, "SESSION_BAD_EXPIRATION")
}

func TestPersisted_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	in := session.Persisted{
		Token:     "abc123",
		ExpiresAt: time.Date(2026, 3, 14, 9, 0, 0, 500000000, time.UTC),
		UserID:    "user-1",
	}

	require.NoError(t, session.SavePersisted(ctx, store, in))
	out, ok, err := session.LoadPersisted(ctx, store)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in.Token, out.Token)
	assert.Equal(t, in.UserID, out.UserID)
	assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt))

	require.NoError(t, session.ErasePersisted(ctx, store))
	_, ok, err = session.LoadPersisted(ctx, store)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestSavePersisted_FailedWriteErasesRecord(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: kvstore.NewMemoryStore(), failKey: session.KeyUserID}
	require.NoError(t, session.SavePersisted(ctx, store, session.Persisted{
		Token: "old", ExpiresAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC), UserID: "user-old",
	}))
	store.armed.Store(true)

	err := session.SavePersisted(ctx, store, session.Persisted{
		Token: "new", ExpiresAt: time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC), UserID: "user-new",
	})

	errutil.AssertErrorCode(t, err, "SESSION_SAVE_FAILED")
	_, ok, err := session.LoadPersisted(ctx, store)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestErasePersisted_MissingKeysAreFine(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, session.KeyUserID, "lingering"))

	require.NoError(t, session.ErasePersisted(ctx, store))
	assert.Equal(t, 0, store.Len())
}

func TestFingerprint(t *testing.T) {
	assert.Empty(t, session.Fingerprint(""))

	fp := session.Fingerprint("abc123")
	assert.Len(t, fp, 12)
	assert.Equal(t, fp, session.Fingerprint("abc123"))
	assert.NotEqual(t, fp, session.Fingerprint("abc124"))
	assert.NotContains(t, fp, "abc123")
}
