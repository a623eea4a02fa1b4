// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"

	"github.com/bureau-foundation/objcodec/cmd/objcodec/cli"
	"github.com/bureau-foundation/objcodec/lib/codec"
)

// Command returns the "wire" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "wire",
		Summary: "Produce and examine framed messages",
		Description: `Tools for framed messages: one format marker byte ('J' for JSON,
'M' for MessagePack) followed by the payload.

Every subcommand takes an optional trailing file path; without one,
input is read from stdin. With --hex, input is hex text and whitespace
is ignored.`,
		Subcommands: []*cli.Command{
			encodeCommand(),
			decodeCommand(),
			inspectCommand(),
			diagCommand(),
			formatsCommand(),
		},
	}
}

func formatsCommand() *cli.Command {
	return &cli.Command{
		Name:    "formats",
		Summary: "List the registered formats and their marker bytes",
		Run: func(args []string) error {
			if err := noPositional("formats", args); err != nil {
				return err
			}
			for _, format := range codec.Formats() {
				marker, err := codec.MarkerOf(format)
				if err != nil {
					return err
				}
				fmt.Printf("%-8s %q\n", format, rune(marker))
			}
			return nil
		},
	}
}
