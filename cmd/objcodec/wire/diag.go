// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/objcodec/cmd/objcodec/cli"
	"github.com/bureau-foundation/objcodec/lib/codec"
)

func diagCommand() *cli.Command {
	var hexInput bool
	return &cli.Command{
		Name:    "diag",
		Summary: "Print a message's payload in CBOR diagnostic notation",
		Description: `Print the payload in RFC 8949 diagnostic notation. Unlike "decode",
this keeps integer and float types distinct and prints map keys in a
deterministic order, so two messages with the same content print
identically regardless of their format.`,
		Usage: "objcodec wire diag [--hex] [file]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("diag", pflag.ContinueOnError)
			flagSet.BoolVarP(&hexInput, "hex", "x", false, "input is hex-encoded")
			return flagSet
		},
		Run: func(args []string) error {
			data, remaining, err := readInput(args, os.Stdin, hexInput)
			if err != nil {
				return err
			}
			if err := noPositional("diag", remaining); err != nil {
				return err
			}
			return diagnoseMessage(data, os.Stdout)
		},
	}
}

func diagnoseMessage(message []byte, w io.Writer) error {
	diagnostic, err := codec.Diagnose(message)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, diagnostic)
	return err
}
