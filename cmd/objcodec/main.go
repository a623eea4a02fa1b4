// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command objcodec produces, examines and transports framed messages:
// a format marker byte followed by a JSON or MessagePack payload.
package main

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/objcodec/cmd/objcodec/cli"
	"github.com/bureau-foundation/objcodec/cmd/objcodec/link"
	"github.com/bureau-foundation/objcodec/cmd/objcodec/wire"
)

func main() {
	err := run(os.Args[1:])
	code, printErr := cli.ExitStatus(err)
	if printErr {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(code)
}

func run(args []string) error {
	return root().Execute(args)
}

func root() *cli.Command {
	return &cli.Command{
		Name:    "objcodec",
		Summary: "Framed JSON and MessagePack messages",
		Description: `objcodec works with framed messages: one marker byte naming the
format ('J' for JSON, 'M' for MessagePack) followed by the payload.`,
		Subcommands: []*cli.Command{
			wire.Command(),
			link.Command(),
		},
	}
}
