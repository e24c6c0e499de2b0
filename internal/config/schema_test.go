// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package config_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokentemplate/authclient/internal/config"
	"github.com/tokentemplate/authclient/pkg/errutil"
)

func TestGenerateSchema(t *testing.T) {
	raw, err := config.GenerateSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, config.SchemaID, doc["$id"])
	assert.Equal(t, "authclient configuration", doc["title"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"api", "store", "log", "app", "metrics"} {
		assert.Contains(t, props, key)
	}
}

func TestValidateYAML(t *testing.T) {
	assert.NoError(t, config.ValidateYAML(nil))
	assert.NoError(t, config.ValidateYAML([]byte("store:\n  backend: keyring\n")))

	err := config.ValidateYAML([]byte("store: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML")

	err = config.ValidateYAML([]byte("log:\n  level: loud\n"))
	require.Error(t, err)
	assert.NotContains(t, config.FormatSchemaError(err), "schema validation failed:")
}

func TestFormatSchemaError(t *testing.T) {
	assert.Empty(t, config.FormatSchemaError(nil))
	assert.Equal(t, "plain", config.FormatSchemaError(errors.New("plain")))
}

func TestMarshal_DefaultRoundTrips(t *testing.T) {
	isolate(t)
	raw, err := config.Marshal(config.Default())
	require.NoError(t, err)

	require.NoError(t, config.ValidateYAML(raw))

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestWriteDefault(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.yaml")

	require.NoError(t, config.WriteDefault(path, false))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	err = config.WriteDefault(path, false)
	errutil.AssertErrorCode(t, err, "CONFIG_EXISTS")

	require.NoError(t, config.WriteDefault(path, true))
}

func TestWriteDefault_DefaultPath(t *testing.T) {
	dir := isolate(t)

	require.NoError(t, config.WriteDefault("", false))

	_, err := os.Stat(filepath.Join(dir, "config", "authclient", "config.yaml"))
	assert.NoError(t, err)
}
