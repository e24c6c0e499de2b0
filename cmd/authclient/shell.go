// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/peterh/liner"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tokentemplate/authclient/internal/api"
	"github.com/tokentemplate/authclient/internal/observability"
	"github.com/tokentemplate/authclient/internal/route"
	"github.com/tokentemplate/authclient/pkg/errutil"
)

const shellHelp = `Commands:
  signup [email]          create an account
  login [email]           log in
  logout                  end the session
  reset-password [email]  email a reset link
  new-password <token>    set a new password with a reset token
  home                    show the home view
  open <path>             navigate to a view, e.g. open auth/signup
  status                  show the session
  help                    show this help
  exit                    leave the shell`

func newShellCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Long: `Start an interactive shell. The stored session is restored on start and
expires while the shell runs, returning to the login view.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShellWithDeps(cmd, deps)
		},
	}

	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
	return cmd
}

// runShellWithDeps runs the interactive shell until exit or end of input.
func runShellWithDeps(cmd *cobra.Command, deps *Deps) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	deps = deps.withDefaults()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var ready atomic.Bool
	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, ready.Load)
		metrics = obsServer.Metrics()
	}

	a, err := newAppWithConfig(ctx, cmd, cfg, deps, metrics)
	if err != nil {
		return err
	}
	defer a.close()

	if obsServer != nil {
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").With("addr", cfg.Metrics.Addr).Wrap(err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := obsServer.Stop(shutdownCtx); err != nil {
				a.logger.Warn("error stopping observability server", "error", err)
			}
		}()
		go func() {
			for err := range obsErrChan {
				errutil.LogError(a.logger, "observability server error", err)
			}
		}()
		a.logger.InfoContext(ctx, "observability server started", "addr", obsServer.Addr())
	}

	line := deps.LineReaderFactory()
	defer func() { _ = line.Close() }()
	a.prompter = line

	watch := a.service.WatchExpiry()
	defer watch.Unsubscribe()

	ready.Store(true)

	sh := &shell{a: a, line: line}
	if _, err := a.router.Navigate(ctx, route.PathHome); err != nil {
		sh.report(err)
	}
	return sh.run(ctx)
}

// shell reads commands from a line editor and runs them against an app.
type shell struct {
	a    *app
	line LineReader
}

func (s *shell) prompt() string {
	return fmt.Sprintf("authclient:/%s> ", s.a.router.Current())
}

func (s *shell) run(ctx context.Context) error {
	for {
		input, err := s.line.Prompt(s.prompt())
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			_, _ = fmt.Fprintln(s.a.out)
			return nil
		}
		if err != nil {
			return oops.Code("CLI_INPUT_FAILED").Wrap(err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		s.line.AppendHistory(input)

		shown := s.a.sink.Shown()
		quit, err := s.exec(ctx, input)
		if err != nil && s.a.sink.Shown() == shown {
			s.report(err)
		}
		if quit {
			return nil
		}
	}
}

// exec runs one shell command. It reports whether the shell should exit.
func (s *shell) exec(ctx context.Context, input string) (bool, error) {
	fields := strings.Fields(input)
	name, args := fields[0], fields[1:]
	arg := func() string {
		if len(args) > 0 {
			return args[0]
		}
		return ""
	}

	ctx, span := s.a.span(ctx, "shell."+name)
	defer span.End()

	a := s.a
	switch name {
	case "exit", "quit":
		return true, nil
	case "help":
		_, err := fmt.Fprintln(a.out, shellHelp)
		return false, err
	case "signup":
		email, password, err := askCredentials(s.line, arg())
		if err != nil {
			return false, err
		}
		return false, a.service.CreateUser(ctx, email, password)
	case "login":
		email, password, err := askCredentials(s.line, arg())
		if err != nil {
			return false, err
		}
		return false, a.service.Login(ctx, email, password)
	case "logout":
		a.service.Logout(ctx)
		return false, nil
	case "reset-password":
		email, err := askEmail(s.line, arg())
		if err != nil {
			return false, err
		}
		return false, a.service.RequestPasswordReset(ctx, email, a.cfg.App.Origin)
	case "new-password":
		if len(args) != 1 {
			return false, usageError("new-password <token>")
		}
		_, err := a.router.Navigate(ctx, newPasswordPath(args[0]))
		return false, err
	case "home":
		_, err := a.router.Navigate(ctx, "home")
		return false, err
	case "open":
		if len(args) != 1 {
			return false, usageError("open <path>")
		}
		_, err := a.router.Navigate(ctx, args[0])
		return false, err
	case "status":
		return false, printStatus(a.out, a, false)
	default:
		return false, oops.Code("CLI_UNKNOWN_COMMAND").
			With("command", name).
			Public(fmt.Sprintf("Unknown command %q. Type help for a list.", name)).
			Errorf("unknown shell command %q", name)
	}
}

// report shows an error that the auth flows have not already shown.
func (s *shell) report(err error) {
	s.a.logger.Debug("shell command failed", "code", errutil.Code(err), "error", err)
	s.a.sink.Error(api.Message(err))
}

func usageError(usage string) error {
	return oops.Code("CLI_USAGE").
		Public("Usage: " + usage).
		Errorf("usage: %s", usage)
}
