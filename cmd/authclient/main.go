// Package main is the entry point for the authclient CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tokentemplate/authclient/internal/api"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := cmd.Execute(); err != nil {
		var shown shownError
		if !errors.As(err, &shown) {
			fmt.Fprintln(os.Stderr, "Error:", api.Message(err))
		}
		os.Exit(1)
	}
}
