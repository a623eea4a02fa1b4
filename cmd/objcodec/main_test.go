// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"strings"
	"testing"
)

func TestRootTree(t *testing.T) {
	names := make(map[string]bool)
	for _, group := range root().Subcommands {
		for _, sub := range group.Subcommands {
			names[group.Name+" "+sub.Name] = true
		}
	}
	for _, want := range []string{"wire encode", "wire decode", "wire inspect", "wire diag", "wire formats", "link send", "link receive"} {
		if !names[want] {
			t.Errorf("command %q missing from the tree", want)
		}
	}
}

func TestRunUnknownCommand(t *testing.T) {
	err := run([]string{"wier"})
	if err == nil || !strings.Contains(err.Error(), `did you mean "wire"`) {
		t.Errorf("run error = %v", err)
	}
}
