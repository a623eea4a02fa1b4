// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// Process exit statuses for objcodec.
const (
	ExitOK      = 0
	ExitFailure = 1
	// ExitUsage follows a [UsageError]: an unknown command or flag, or
	// a bad argument.
	ExitUsage = 2
	// ExitUndecodable means a message carried a known marker but its
	// payload did not decode.
	ExitUndecodable = 3
)

// ExitError ends the process with Code after a command has written its
// own report, so main prints nothing more. Reason is for logs and tests.
type ExitError struct {
	Code   int
	Reason string
}

func (e *ExitError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return fmt.Sprintf("exit status %d: %s", e.Code, e.Reason)
}

// UsageError is a command-line mistake. Its message ends with a pointer
// to the command's --help.
type UsageError struct {
	message string
}

func (e *UsageError) Error() string { return e.message }

// ExitStatus maps the error a command returned to the process exit
// status, and reports whether main still has to print err.
func ExitStatus(err error) (code int, printErr bool) {
	if err == nil {
		return ExitOK, false
	}
	var exitError *ExitError
	if errors.As(err, &exitError) {
		return exitError.Code, false
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsage, true
	}
	return ExitFailure, true
}
