// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package kvstore

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/oops"
)

// ErrNotFound is returned when a key has no value in the store.
var ErrNotFound = errors.New("key not found")

// Backend names accepted by Open.
const (
	BackendMemory  = "memory"
	BackendFile    = "file"
	BackendKeyring = "keyring"
	BackendRedis   = "redis"
)

// Store is a string key-value store with get/set/remove semantics.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key succeeds.
	Remove(ctx context.Context, key string) error
}

// Options selects and configures a backend.
type Options struct {
	Backend        string
	Path           string
	KeyringService string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisPrefix    string
}

// Open builds the store named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		return NewFileStore(opts.Path)
	case BackendKeyring:
		return NewKeyringStore(opts.KeyringService)
	case BackendRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Prefix:   opts.RedisPrefix,
		})
	default:
		return nil, oops.Code("KVSTORE_UNKNOWN_BACKEND").
			With("backend", opts.Backend).
			Errorf("unknown store backend %q", opts.Backend)
	}
}
