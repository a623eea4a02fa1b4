// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/objcodec/cmd/objcodec/cli"
	"github.com/bureau-foundation/objcodec/lib/codec"
)

type encodeParams struct {
	Format    string `flag:"format,f" desc:"wire format (json or msgpack)" default:"json"`
	HexOutput bool   `flag:"hex,x" desc:"write the message as hex text"`
}

func encodeCommand() *cli.Command {
	var params encodeParams
	return &cli.Command{
		Name:    "encode",
		Summary: "Frame a JSON value as a marker-prefixed message",
		Description: `Read a JSON value (comments and trailing commas allowed) and write
it as a framed message: one format marker byte followed by the payload
in the chosen format.

Objects become maps. Receivers that expect a record type decode maps
only in the JSON format; MessagePack records are positional arrays, so
write them as JSON arrays in field order.

Binary output is refused when stdout is a terminal; use --hex.`,
		Usage: "objcodec wire encode [--format json|msgpack] [--hex] [file]",
		Examples: []cli.Example{
			{
				Description: "Encode a positional MessagePack record",
				Command:     `echo '[3, "abc", [1.5, 2.5]]' | objcodec wire encode -f msgpack --hex`,
			},
			{
				Description: "Encode a JSONC file to a JSON message",
				Command:     "objcodec wire encode request.jsonc > request.msg",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("encode", &params) },
		Run: func(args []string) error {
			data, remaining, err := readInput(args, os.Stdin, false)
			if err != nil {
				return err
			}
			if err := noPositional("encode", remaining); err != nil {
				return err
			}
			if !params.HexOutput && cli.IsTerminal(os.Stdout) {
				return fmt.Errorf("refusing to write a binary message to a terminal (use --hex or redirect stdout)")
			}
			return encodeMessage(data, os.Stdout, params)
		},
	}
}

func encodeMessage(data []byte, w io.Writer, params encodeParams) error {
	format, err := codec.ParseFormat(params.Format)
	if err != nil {
		return err
	}
	value, err := parseValue(data)
	if err != nil {
		return err
	}
	message, err := codec.Serialize(value, format)
	if err != nil {
		return err
	}
	if params.HexOutput {
		_, err = fmt.Fprintln(w, hex.EncodeToString(message))
		return err
	}
	_, err = w.Write(message)
	return err
}
