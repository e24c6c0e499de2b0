// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/samber/oops"

	"github.com/tokentemplate/authclient/internal/xdg"
)

// lockTimeout is the maximum time to wait for the file lock.
const lockTimeout = time.Second

// lockRetryDelay is how often the lock is retried while waiting.
const lockRetryDelay = 50 * time.Millisecond

// FileStore keeps all keys in one JSON object file. Writers serialize on a
// sibling lock file so two clients sharing a state directory do not lose
// each other's updates.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at path. An empty path selects
// the default session file in the XDG state directory.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		var err error
		if path, err = xdg.SessionFile(); err != nil {
			return nil, oops.Code("KVSTORE_FILE_PATH_FAILED").Wrap(err)
		}
	}
	path = filepath.Clean(path)
	if err := xdg.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, oops.Code("KVSTORE_FILE_DIR_FAILED").
			With("path", path).
			Wrap(err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value for key.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	values, err := s.read()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	return s.update(ctx, func(values map[string]string) {
		values[key] = value
	})
}

// Remove deletes key.
func (s *FileStore) Remove(ctx context.Context, key string) error {
	return s.update(ctx, func(values map[string]string) {
		delete(values, key)
	})
}

// update performs a locked read-modify-write of the file.
func (s *FileStore) update(ctx context.Context, fn func(map[string]string)) error {
	fileLock := flock.New(s.path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		return oops.Code("KVSTORE_LOCK_FAILED").
			With("path", s.path).
			Wrap(err)
	}
	if !locked {
		return oops.Code("KVSTORE_LOCK_FAILED").
			With("path", s.path).
			Errorf("timed out after %v waiting for lock", lockTimeout)
	}
	defer func() { _ = fileLock.Unlock() }()

	values, err := s.read()
	if err != nil {
		return err
	}
	fn(values)
	return s.write(values)
}

func (s *FileStore) read() (map[string]string, error) {
	// #nosec G304: path comes from configuration.
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, oops.Code("KVSTORE_READ_FAILED").
			With("path", s.path).
			Wrap(err)
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, oops.Code("KVSTORE_CORRUPT").
			With("path", s.path).
			Wrap(err)
	}
	return values, nil
}

// write replaces the file atomically via a temp file and rename.
func (s *FileStore) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return oops.Code("KVSTORE_WRITE_FAILED").Wrap(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return oops.Code("KVSTORE_WRITE_FAILED").
			With("path", s.path).
			Wrap(err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return oops.Code("KVSTORE_WRITE_FAILED").
			With("path", tmpName).
			Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return oops.Code("KVSTORE_WRITE_FAILED").
			With("path", tmpName).
			Wrap(err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return oops.Code("KVSTORE_WRITE_FAILED").
			With("path", tmpName).
			Wrap(err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return oops.Code("KVSTORE_WRITE_FAILED").
			With("path", s.path).
			Wrap(err)
	}
	return nil
}
