// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package kvstore

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keyring service name used when none is configured.
const DefaultKeyringService = "authclient"

// KeyringStore stores each key as a secret in the operating system keyring.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a KeyringStore for the given service name.
func NewKeyringStore(service string) (*KeyringStore, error) {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringStore{service: service}, nil
}

// Get returns the secret stored under key.
func (s *KeyringStore) Get(_ context.Context, key string) (string, error) {
	v, err := keyring.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", oops.Code("KVSTORE_READ_FAILED").
			With("service", s.service).
			With("key", key).
			Wrap(err)
	}
	return v, nil
}

// Set stores value under key.
func (s *KeyringStore) Set(_ context.Context, key, value string) error {
	if err := keyring.Set(s.service, key, value); err != nil {
		return oops.Code("KVSTORE_WRITE_FAILED").
			With("service", s.service).
			With("key", key).
			Wrap(err)
	}
	return nil
}

// Remove deletes key from the keyring.
func (s *KeyringStore) Remove(_ context.Context, key string) error {
	if err := keyring.Delete(s.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return oops.Code("KVSTORE_WRITE_FAILED").
			With("service", s.service).
			With("key", key).
			Wrap(err)
	}
	return nil
}
