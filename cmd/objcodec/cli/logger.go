// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger returns a logger on stderr: text for a terminal,
// JSON lines when stderr is redirected. verbose lowers the level to
// Debug.
//
//	logger := cli.NewCommandLogger(params.Verbose).With("command", "link/send")
func NewCommandLogger(verbose bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		options.Level = slog.LevelDebug
	}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// IsTerminal reports whether f is attached to a terminal. Commands
// that emit binary use it to refuse writing raw bytes to a console.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
