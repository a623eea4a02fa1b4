// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/objcodec/cmd/objcodec/cli"
	"github.com/bureau-foundation/objcodec/lib/codec"
)

type inspectParams struct {
	cli.JSONOutput
	HexInput bool `flag:"hex,x" desc:"input is hex-encoded"`
}

// inspection describes one framed message.
type inspection struct {
	Format      string `json:"format"`
	Marker      string `json:"marker"`
	Size        int    `json:"size"`
	PayloadSize int    `json:"payload_size"`
	// PayloadHash is the BLAKE3-256 of the payload, hex-encoded.
	PayloadHash string `json:"payload_blake3"`
	Valid       bool   `json:"valid"`
	Error       string `json:"error,omitempty"`
}

func inspectCommand() *cli.Command {
	var params inspectParams
	return &cli.Command{
		Name:    "inspect",
		Summary: "Report a message's format, sizes and payload hash",
		Description: `Report the marker byte, format, total and payload sizes, and the
BLAKE3-256 hash of the payload, then check that the payload parses.

Exits 3 after printing the report when the payload does not parse.
Messages with no marker or an unknown marker are errors.`,
		Usage: "objcodec wire inspect [--hex] [--json] [file]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("inspect", &params) },
		Run: func(args []string) error {
			data, remaining, err := readInput(args, os.Stdin, params.HexInput)
			if err != nil {
				return err
			}
			if err := noPositional("inspect", remaining); err != nil {
				return err
			}
			report, err := inspectMessage(data)
			if err != nil {
				return err
			}
			if err := writeInspection(os.Stdout, report, &params.JSONOutput); err != nil {
				return err
			}
			if !report.Valid {
				return &cli.ExitError{Code: cli.ExitUndecodable, Reason: report.Error}
			}
			return nil
		},
	}
}

func inspectMessage(message []byte) (inspection, error) {
	format, payload, err := codec.Peek(message)
	if err != nil {
		return inspection{}, err
	}
	sum := blake3.Sum256(payload)
	report := inspection{
		Format:      format.String(),
		Marker:      fmt.Sprintf("%q", rune(message[0])),
		Size:        len(message),
		PayloadSize: len(payload),
		PayloadHash: hex.EncodeToString(sum[:]),
		Valid:       true,
	}
	if _, _, err := codec.DecodeAny(message); err != nil {
		report.Valid = false
		report.Error = err.Error()
	}
	return report, nil
}

func writeInspection(w io.Writer, report inspection, output *cli.JSONOutput) error {
	if done, err := output.EmitJSON(w, report); done {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "format:\t%s (marker %s)\n", report.Format, report.Marker)
	fmt.Fprintf(tw, "size:\t%d bytes (payload %d)\n", report.Size, report.PayloadSize)
	fmt.Fprintf(tw, "payload blake3:\t%s\n", report.PayloadHash)
	if report.Valid {
		fmt.Fprintf(tw, "payload:\tok\n")
	} else {
		fmt.Fprintf(tw, "payload:\tinvalid: %s\n", report.Error)
	}
	return tw.Flush()
}
