// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package notify

import (
	"fmt"
	"io"
	"regexp"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var strongTag = regexp.MustCompile(`(?s)<strong>(.*?)</strong>`)

// Terminal writes notifications to a terminal. Colors are dropped when w is
// not a TTY.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer

	title   lipgloss.Style
	strong  lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	info    lipgloss.Style
	muted   lipgloss.Style
}

// NewTerminal creates a Terminal sink writing to w.
func NewTerminal(w io.Writer) *Terminal {
	r := lipgloss.NewRenderer(w)
	return &Terminal{
		w:       w,
		title:   r.NewStyle().Bold(true),
		strong:  r.NewStyle().Bold(true),
		success: r.NewStyle().Foreground(lipgloss.Color("10")),
		failure: r.NewStyle().Foreground(lipgloss.Color("9")),
		info:    r.NewStyle().Foreground(lipgloss.Color("12")),
		muted:   r.NewStyle().Faint(true),
	}
}

// Loading implements Sink.
func (t *Terminal) Loading(title, text string) {
	t.print(t.info.Render("…"), t.title.Render(title), t.muted.Render(text))
}

// Success implements Sink.
func (t *Terminal) Success(title, html string) {
	t.print(t.success.Render("✔"), t.title.Render(title), t.markup(html))
}

// Error implements Sink.
func (t *Terminal) Error(message string) {
	t.print(t.failure.Render("✘"), t.title.Render(ErrorTitle), "Error message: "+t.strong.Render(message))
}

// SessionExpired implements Sink.
func (t *Terminal) SessionExpired() {
	t.print(t.info.Render("!"), t.title.Render(SessionExpiredTitle), SessionExpiredText)
}

func (t *Terminal) markup(html string) string {
	return strongTag.ReplaceAllStringFunc(html, func(m string) string {
		return t.strong.Render(strongTag.FindStringSubmatch(m)[1])
	})
}

func (t *Terminal) print(icon, title, body string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if body == "" {
		_, _ = fmt.Fprintf(t.w, "%s %s\n", icon, title)
		return
	}
	_, _ = fmt.Fprintf(t.w, "%s %s\n  %s\n", icon, title, body)
}
