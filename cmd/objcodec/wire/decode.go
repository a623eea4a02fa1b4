// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/objcodec/cmd/objcodec/cli"
	"github.com/bureau-foundation/objcodec/lib/codec"
)

type decodeParams struct {
	HexInput bool `flag:"hex,x" desc:"input is hex-encoded"`
	Compact  bool `flag:"compact,c" desc:"compact output (no indentation)"`
}

func decodeCommand() *cli.Command {
	var params decodeParams
	return &cli.Command{
		Name:    "decode",
		Summary: "Print a framed message's payload as JSON",
		Description: `Read one framed message, pick the format from its marker byte, and
print the payload as JSON.

MessagePack records are positional, so they print as arrays. Binary
strings print as base64.`,
		Usage: "objcodec wire decode [--hex] [-c] [file]",
		Examples: []cli.Example{
			{
				Description: "Decode a hex-encoded MessagePack message",
				Command:     "echo '4d 93 03 a3 61 62 63 c0' | objcodec wire decode --hex",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("decode", &params) },
		Run: func(args []string) error {
			data, remaining, err := readInput(args, os.Stdin, params.HexInput)
			if err != nil {
				return err
			}
			if err := noPositional("decode", remaining); err != nil {
				return err
			}
			return decodeMessage(data, os.Stdout, params.Compact)
		},
	}
}

func decodeMessage(message []byte, w io.Writer, compact bool) error {
	_, value, err := codec.DecodeAny(message)
	if err != nil {
		return err
	}
	return cli.WriteJSON(w, value, compact)
}
