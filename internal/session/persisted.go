// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package session

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/tokentemplate/authclient/internal/kvstore"
)

// Keys of the persisted session record.
const (
	KeyToken      = "token"
	KeyExpiration = "expiration"
	KeyUserID     = "userId"
)

// ExpirationLayout is the stored form of the absolute expiry: UTC with
// millisecond precision.
const ExpirationLayout = "2006-01-02T15:04:05.000Z"

// Persisted is the durable copy of a session.
type Persisted struct {
	Token     string
	ExpiresAt time.Time
	UserID    string
}

// FormatExpiration renders t in ExpirationLayout.
func FormatExpiration(t time.Time) string {
	return t.UTC().Format(ExpirationLayout)
}

// ParseExpiration parses a stored expiry. Any RFC 3339 timestamp is accepted.
func ParseExpiration(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, oops.Code("SESSION_BAD_EXPIRATION").With("value", s).Wrap(err)
	}
	return t, nil
}

// LoadPersisted reads the record from store. ok is false when token or
// expiration is missing, empty or unparseable. err is only set for store
// failures other than a missing key.
func LoadPersisted(ctx context.Context, store kvstore.Store) (rec Persisted, ok bool, err error) {
	token, found, err := get(ctx, store, KeyToken)
	if err != nil || !found || token == "" {
		return Persisted{}, false, err
	}
	raw, found, err := get(ctx, store, KeyExpiration)
	if err != nil || !found {
		return Persisted{}, false, err
	}
	expiresAt, perr := ParseExpiration(raw)
	if perr != nil {
		return Persisted{}, false, nil
	}
	userID, _, err := get(ctx, store, KeyUserID)
	if err != nil {
		return Persisted{}, false, err
	}
	return Persisted{Token: token, ExpiresAt: expiresAt, UserID: userID}, true, nil
}

func get(ctx context.Context, store kvstore.Store, key string) (string, bool, error) {
	v, err := store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, oops.Code("SESSION_LOAD_FAILED").With("key", key).Wrap(err)
	}
	return v, true, nil
}

// SavePersisted writes all three keys. If any write fails the record is
// erased, so a previous session's keys never mix with the new ones.
func SavePersisted(ctx context.Context, store kvstore.Store, rec Persisted) error {
	pairs := [...][2]string{
		{KeyToken, rec.Token},
		{KeyExpiration, FormatExpiration(rec.ExpiresAt)},
		{KeyUserID, rec.UserID},
	}
	for _, kv := range pairs {
		if err := store.Set(ctx, kv[0], kv[1]); err != nil {
			builder := oops.Code("SESSION_SAVE_FAILED").With("key", kv[0])
			if eraseErr := ErasePersisted(ctx, store); eraseErr != nil {
				builder = builder.With("erase_error", eraseErr.Error())
			}
			return builder.Wrap(err)
		}
	}
	return nil
}

// ErasePersisted removes all three keys, attempting each even if one fails.
func ErasePersisted(ctx context.Context, store kvstore.Store) error {
	var errs []error
	for _, key := range []string{KeyToken, KeyExpiration, KeyUserID} {
		if err := store.Remove(ctx, key); err != nil {
			errs = append(errs, oops.Code("SESSION_ERASE_FAILED").With("key", key).Wrap(err))
		}
	}
	return errors.Join(errs...)
}
