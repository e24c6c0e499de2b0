// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

// Package config loads and validates the client configuration.
//
// Values are layered: built-in defaults, then the YAML file, then
// AUTHCLIENT_* environment variables, then command-line flags.
package config

import (
	"net/url"
	"time"

	"github.com/samber/oops"

	"github.com/tokentemplate/authclient/internal/api"
	"github.com/tokentemplate/authclient/internal/kvstore"
	"github.com/tokentemplate/authclient/internal/logging"
)

// Config is the complete client configuration.
type Config struct {
	API     APIConfig     `koanf:"api" json:"api" yaml:"api"`
	Store   StoreConfig   `koanf:"store" json:"store" yaml:"store"`
	Log     LogConfig     `koanf:"log" json:"log" yaml:"log"`
	App     AppConfig     `koanf:"app" json:"app" yaml:"app"`
	Metrics MetricsConfig `koanf:"metrics" json:"metrics" yaml:"metrics"`
}

// APIConfig configures the HTTP client.
type APIConfig struct {
	URL           string        `koanf:"url" json:"url" yaml:"url" jsonschema:"description=Base URL of the user API"`
	Timeout       time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout" jsonschema:"type=string,description=Per-request timeout such as 15s"`
	RatePerSecond float64       `koanf:"rate_per_second" json:"rate_per_second" yaml:"rate_per_second" jsonschema:"minimum=0,description=Request pacing (0 disables)"`
	Burst         int           `koanf:"burst" json:"burst" yaml:"burst" jsonschema:"minimum=0"`
	MaxRetries    uint64        `koanf:"max_retries" json:"max_retries" yaml:"max_retries" jsonschema:"description=Extra attempts for idempotent requests"`
	RetryBase     time.Duration `koanf:"retry_base" json:"retry_base" yaml:"retry_base" jsonschema:"type=string"`
}

// StoreConfig selects where the session is persisted.
type StoreConfig struct {
	Backend        string      `koanf:"backend" json:"backend" yaml:"backend" jsonschema:"enum=file,enum=memory,enum=keyring,enum=redis"`
	Path           string      `koanf:"path" json:"path" yaml:"path" jsonschema:"description=Session file for the file backend"`
	KeyringService string      `koanf:"keyring_service" json:"keyring_service" yaml:"keyring_service"`
	Redis          RedisConfig `koanf:"redis" json:"redis" yaml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `koanf:"addr" json:"addr" yaml:"addr"`
	Password string `koanf:"password" json:"password" yaml:"password"`
	DB       int    `koanf:"db" json:"db" yaml:"db" jsonschema:"minimum=0"`
	Prefix   string `koanf:"prefix" json:"prefix" yaml:"prefix"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `koanf:"format" json:"format" yaml:"format" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" json:"level" yaml:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// AppConfig holds application behavior.
type AppConfig struct {
	Origin    string   `koanf:"origin" json:"origin" yaml:"origin" jsonschema:"description=Origin placed in password reset links"`
	Protected []string `koanf:"protected" json:"protected" yaml:"protected" jsonschema:"description=Glob patterns of views that need a session"`
}

// MetricsConfig configures the metrics endpoint of the shell.
type MetricsConfig struct {
	Addr string `koanf:"addr" json:"addr" yaml:"addr" jsonschema:"description=Listen address for /metrics (empty disables)"`
}

// Default values.
const (
	DefaultAPIURL    = "http://localhost:3000/api/user"
	DefaultOrigin    = "http://localhost:4200"
	DefaultLogFormat = "text"
	DefaultLogLevel  = "info"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:           DefaultAPIURL,
			Timeout:       api.DefaultTimeout,
			RatePerSecond: 5,
			Burst:         5,
			MaxRetries:    api.DefaultMaxRetries,
			RetryBase:     api.DefaultRetryBase,
		},
		Store: StoreConfig{
			Backend:        kvstore.BackendFile,
			KeyringService: kvstore.DefaultKeyringService,
			Redis:          RedisConfig{Prefix: kvstore.DefaultRedisPrefix},
		},
		Log: LogConfig{
			Format: DefaultLogFormat,
			Level:  DefaultLogLevel,
		},
		App: AppConfig{
			Origin:    DefaultOrigin,
			Protected: []string{"", "home"},
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return invalid("api.url", "is required")
	}
	if u, err := url.Parse(c.API.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return invalid("api.url", "must be an absolute URL")
	}
	if c.API.Timeout < 0 {
		return invalid("api.timeout", "must not be negative")
	}
	if c.API.RatePerSecond < 0 {
		return invalid("api.rate_per_second", "must not be negative")
	}
	if c.API.Burst < 0 {
		return invalid("api.burst", "must not be negative")
	}

	switch c.Store.Backend {
	case kvstore.BackendFile, kvstore.BackendMemory, kvstore.BackendKeyring:
	case kvstore.BackendRedis:
		if c.Store.Redis.Addr == "" {
			return invalid("store.redis.addr", "is required for the redis backend")
		}
	default:
		return invalid("store.backend", "must be one of file, memory, keyring, redis")
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format", "must be 'json' or 'text'")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "must be debug, info, warn or error")
	}
	return nil
}

func invalid(key, problem string) error {
	return oops.Code("CONFIG_INVALID").
		With("key", key).
		Public(key + " " + problem).
		Errorf("%s %s", key, problem)
}

// StoreOptions converts the store section for kvstore.Open.
func (c *Config) StoreOptions() kvstore.Options {
	return kvstore.Options{
		Backend:        c.Store.Backend,
		Path:           c.Store.Path,
		KeyringService: c.Store.KeyringService,
		RedisAddr:      c.Store.Redis.Addr,
		RedisPassword:  c.Store.Redis.Password,
		RedisDB:        c.Store.Redis.DB,
		RedisPrefix:    c.Store.Redis.Prefix,
	}
}
