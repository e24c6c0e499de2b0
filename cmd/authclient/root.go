// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the authclient CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmdWithDeps(nil)
}

// newRootCmdWithDeps builds the command tree with injectable dependencies.
// If deps is nil, default implementations are used.
func newRootCmdWithDeps(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authclient",
		Short: "authclient - sign up, log in and keep a session",
		Long: `authclient talks to a user API to create accounts, log in and reset
passwords. The session token is persisted and restored on the next run
until it expires.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/authclient/config.yaml)")
	flags.String("log-format", "", "log format (json or text)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("api-url", "", "base URL of the user API")
	flags.String("store", "", "session store backend (file, memory, keyring, redis)")
	flags.String("store-path", "", "session file for the file backend")
	flags.String("origin", "", "origin placed in password reset links")

	cmd.AddCommand(newSignupCmd(deps))
	cmd.AddCommand(newLoginCmd(deps))
	cmd.AddCommand(newLogoutCmd(deps))
	cmd.AddCommand(newResetPasswordCmd(deps))
	cmd.AddCommand(newNewPasswordCmd(deps))
	cmd.AddCommand(newHomeCmd(deps))
	cmd.AddCommand(newStatusCmd(deps))
	cmd.AddCommand(newShellCmd(deps))
	cmd.AddCommand(newConfigCmd())

	return cmd
}
