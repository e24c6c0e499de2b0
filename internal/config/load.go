// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/tokentemplate/authclient/internal/xdg"
)

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: AUTHCLIENT_API__URL sets api.url.
const EnvPrefix = "AUTHCLIENT_"

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"api-url":      "api.url",
	"store":        "store.backend",
	"store-path":   "store.path",
	"log-format":   "log.format",
	"log-level":    "log.level",
	"metrics-addr": "metrics.addr",
	"origin":       "app.origin",
}

// DefaultPath returns the default configuration file location.
func DefaultPath() (string, error) {
	return xdg.ConfigFile()
}

// Load builds the configuration. An empty path means the default location,
// which may be absent; an explicit path must exist. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(Default()), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "defaults").Wrap(err)
	}

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "file").Wrap(err)
		}
		path = p
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, oops.Code("CONFIG_NOT_FOUND").With("path", path).Wrap(err)
	default:
		if err := ValidateYAML(data); err != nil {
			return nil, oops.Code("CONFIG_SCHEMA_INVALID").
				With("path", path).
				Public(FormatSchemaError(err)).
				Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "file").With("path", path).Wrap(err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "env").Wrap(err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := FlagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "flags").Wrap(err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "decode").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func defaultsMap(c *Config) map[string]any {
	return map[string]any{
		"api.url":               c.API.URL,
		"api.timeout":           c.API.Timeout,
		"api.rate_per_second":   c.API.RatePerSecond,
		"api.burst":             c.API.Burst,
		"api.max_retries":       c.API.MaxRetries,
		"api.retry_base":        c.API.RetryBase,
		"store.backend":         c.Store.Backend,
		"store.path":            c.Store.Path,
		"store.keyring_service": c.Store.KeyringService,
		"store.redis.addr":      c.Store.Redis.Addr,
		"store.redis.password":  c.Store.Redis.Password,
		"store.redis.db":        c.Store.Redis.DB,
		"store.redis.prefix":    c.Store.Redis.Prefix,
		"log.format":            c.Log.Format,
		"log.level":             c.Log.Level,
		"app.origin":            c.App.Origin,
		"app.protected":         c.App.Protected,
		"metrics.addr":          c.Metrics.Addr,
	}
}
