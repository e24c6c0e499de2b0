// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package main

import (
	"context"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tokentemplate/authclient/internal/route"
)

// credentialsConfig holds flags shared by the commands that take an email.
type credentialsConfig struct {
	email string
}

func newSignupCmd(deps *Deps) *cobra.Command {
	cfg := &credentialsConfig{}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a user account",
		Long:  `Create a user account with an email address and password.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, deps, func(ctx context.Context, a *app) error {
				email, password, err := askCredentials(a.prompter, cfg.email)
				if err != nil {
					return err
				}
				return a.service.CreateUser(ctx, email, password)
			})
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "", "email address (prompted when empty)")
	return cmd
}

func newLoginCmd(deps *Deps) *cobra.Command {
	cfg := &credentialsConfig{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		Long: `Log in with an email address and password. The session token is
stored and restored by later commands until it expires.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, deps, func(ctx context.Context, a *app) error {
				email, password, err := askCredentials(a.prompter, cfg.email)
				if err != nil {
					return err
				}
				return a.service.Login(ctx, email, password)
			})
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "", "email address (prompted when empty)")
	return cmd
}

func newLogoutCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and erase the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, deps, func(ctx context.Context, a *app) error {
				a.service.Logout(ctx)
				return nil
			})
		},
	}
}

func newResetPasswordCmd(deps *Deps) *cobra.Command {
	cfg := &credentialsConfig{}

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Email a password reset link",
		Long: `Ask the server to email a password reset link. The link points at the
configured origin (app.origin).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, deps, func(ctx context.Context, a *app) error {
				email, err := askEmail(a.prompter, cfg.email)
				if err != nil {
					return err
				}
				return a.service.RequestPasswordReset(ctx, email, a.cfg.App.Origin)
			})
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "", "email address (prompted when empty)")
	return cmd
}

func newNewPasswordCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "new-password <token>",
		Short: "Choose a new password with a reset token",
		Long:  `Resolve the reset token from the emailed link, then set a new password.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, deps, func(ctx context.Context, a *app) error {
				_, err := a.router.Navigate(ctx, newPasswordPath(args[0]))
				return err
			})
		},
	}
}

func newHomeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show the home view (requires a session)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, deps, func(ctx context.Context, a *app) error {
				return showHome(ctx, a)
			})
		},
	}
}

// showHome navigates to the home view and fails when the guard redirected.
func showHome(ctx context.Context, a *app) error {
	shown, err := a.router.Navigate(ctx, "home")
	if err != nil {
		return err
	}
	if shown != "home" {
		return oops.Code("CLI_NOT_LOGGED_IN").
			With("shown", shown).
			Public("Please log in first.").
			Errorf("home view requires a session")
	}
	return nil
}

func newPasswordPath(token string) string {
	return "auth/new-password/" + route.Normalize(token)
}

// askCredentials reads the email (unless given) and the password.
func askCredentials(p Prompter, email string) (string, string, error) {
	email, err := askEmail(p, email)
	if err != nil {
		return "", "", err
	}
	password, err := p.PasswordPrompt("Password: ")
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}
