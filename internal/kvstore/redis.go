// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package kvstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// DefaultRedisPrefix namespaces the session keys inside a shared database.
const DefaultRedisPrefix = "authclient:"

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps values as plain Redis strings under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, oops.Code("KVSTORE_REDIS_ADDR_REQUIRED").Errorf("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.Code("KVSTORE_REDIS_UNREACHABLE").
			With("addr", opts.Addr).
			Wrap(err)
	}
	return NewRedisStoreWithClient(client, opts.Prefix), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Get returns the value for key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", oops.Code("KVSTORE_READ_FAILED").
			With("key", s.prefix+key).
			Wrap(err)
	}
	return v, nil
}

// Set stores value under key without expiry. The session's own expiration
// key decides when the record is stale.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return oops.Code("KVSTORE_WRITE_FAILED").
			With("key", s.prefix+key).
			Wrap(err)
	}
	return nil
}

// Remove deletes key.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return oops.Code("KVSTORE_WRITE_FAILED").
			With("key", s.prefix+key).
			Wrap(err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
