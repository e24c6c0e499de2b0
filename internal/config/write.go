// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with durations rendered as strings.
type fileConfig struct {
	API struct {
		URL           string  `yaml:"url"`
		Timeout       string  `yaml:"timeout"`
		RatePerSecond float64 `yaml:"rate_per_second"`
		Burst         int     `yaml:"burst"`
		MaxRetries    uint64  `yaml:"max_retries"`
		RetryBase     string  `yaml:"retry_base"`
	} `yaml:"api"`
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
	App     AppConfig     `yaml:"app"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// Marshal renders c as YAML.
func Marshal(c *Config) ([]byte, error) {
	var fc fileConfig
	fc.API.URL = c.API.URL
	fc.API.Timeout = c.API.Timeout.String()
	fc.API.RatePerSecond = c.API.RatePerSecond
	fc.API.Burst = c.API.Burst
	fc.API.MaxRetries = c.API.MaxRetries
	fc.API.RetryBase = c.API.RetryBase.String()
	fc.Store = c.Store
	fc.Log = c.Log
	fc.App = c.App
	fc.Metrics = c.Metrics

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&fc); err != nil {
		return nil, oops.Code("CONFIG_ENCODE_FAILED").Wrap(err)
	}
	if err := enc.Close(); err != nil {
		return nil, oops.Code("CONFIG_ENCODE_FAILED").Wrap(err)
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default configuration to path. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return oops.Code("CONFIG_WRITE_FAILED").Wrap(err)
		}
		path = p
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return oops.Code("CONFIG_EXISTS").
				With("path", path).
				Public("Config file already exists: " + path).
				Errorf("config file already exists")
		} else if !errors.Is(err, fs.ErrNotExist) {
			return oops.Code("CONFIG_WRITE_FAILED").With("path", path).Wrap(err)
		}
	}

	data, err := Marshal(Default())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return oops.Code("CONFIG_WRITE_FAILED").With("path", path).Wrap(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return oops.Code("CONFIG_WRITE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
