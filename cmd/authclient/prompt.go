// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/term"
)

// Prompter reads a line of input, optionally without echo.
type Prompter interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
}

// termPrompter reads from stdin. Passwords are read without echo when stdin
// is a terminal and as a plain line otherwise.
type termPrompter struct {
	in  io.Reader
	r   *bufio.Reader
	out io.Writer
}

func newTermPrompter(in io.Reader, out io.Writer) *termPrompter {
	return &termPrompter{in: in, r: bufio.NewReader(in), out: out}
}

func (p *termPrompter) Prompt(prompt string) (string, error) {
	_, _ = fmt.Fprint(p.out, prompt)
	line, err := p.r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", oops.Code("CLI_INPUT_FAILED").With("prompt", prompt).Wrap(err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *termPrompter) PasswordPrompt(prompt string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Prompt(prompt)
	}

	_, _ = fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	_, _ = fmt.Fprintln(p.out)
	if err != nil {
		return "", oops.Code("CLI_INPUT_FAILED").With("prompt", prompt).Wrap(err)
	}
	return string(b), nil
}

// askEmail returns flagValue, or prompts when it is empty.
func askEmail(p Prompter, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	email, err := p.Prompt("Email: ")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(email), nil
}
