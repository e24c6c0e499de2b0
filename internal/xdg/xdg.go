// Package xdg provides XDG Base Directory paths for authclient.
package xdg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const appName = "authclient"

// ErrNoHome is returned when neither the XDG variable nor HOME is set.
var ErrNoHome = errors.New("HOME is not set")

// ConfigDir returns the XDG config directory for authclient.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for authclient.
// Checks XDG_STATE_HOME first, falls back to ~/.local/state.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// ConfigFile returns the default config file path.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// SessionFile returns the default persisted session file.
func SessionFile() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

func resolve(envVar, homeRel string) (string, error) {
	base := os.Getenv(envVar)
	if base == "" {
		home := os.Getenv("HOME")
		if home == "" {
			return "", fmt.Errorf("resolve %s: %w", envVar, ErrNoHome)
		}
		base = filepath.Join(home, homeRel)
	}
	return filepath.Join(base, appName), nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
// Directories are created with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
