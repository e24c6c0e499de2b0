// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

// Package kvstore provides the durable key-value stores that hold the
// persisted session between runs of the client.
//
// # Backends
//
//   - MemoryStore - process-local map, used by tests and ephemeral runs
//   - FileStore - JSON object file under the XDG state directory
//   - KeyringStore - the operating system keyring
//   - RedisStore - a Redis database shared by several clients
//
// All backends return ErrNotFound for a missing key. Removing a missing key
// is not an error.
package kvstore
