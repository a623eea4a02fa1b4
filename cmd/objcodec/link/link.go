// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package link

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/objcodec/cmd/objcodec/cli"
	"github.com/bureau-foundation/objcodec/lib/codec"
	"github.com/bureau-foundation/objcodec/lib/config"
	"github.com/bureau-foundation/objcodec/lib/netobject"
	"github.com/bureau-foundation/objcodec/transport"
)

// linkParams are the flags shared by send and receive.
type linkParams struct {
	Config  string        `flag:"config" desc:"link config file (default: $OBJCODEC_CONFIG, then built-in defaults)"`
	Format  string        `flag:"format,f" desc:"override the configured format"`
	Address string        `flag:"address,a" desc:"override the configured address"`
	Timeout time.Duration `flag:"timeout,t" desc:"give up after this long (0 waits forever)" default:"10s"`
	Verbose bool          `flag:"verbose,v" desc:"debug logging"`
}

// resolve loads the link config and applies flag overrides.
func (p *linkParams) resolve() (config.Link, error) {
	var (
		link *config.Link
		err  error
	)
	switch {
	case p.Config != "":
		link, err = config.LoadFile(p.Config)
	case os.Getenv(config.EnvironmentVariable) != "":
		link, err = config.Load()
	default:
		link = config.Default()
	}
	if err != nil {
		return config.Link{}, err
	}
	if p.Format != "" {
		link.Format = p.Format
	}
	if p.Address != "" {
		link.Address = p.Address
	}
	if err := link.Validate(); err != nil {
		return config.Link{}, err
	}
	return *link, nil
}

// Command returns the "link" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "link",
		Summary: "Send and receive values over a configured transport",
		Description: `Send JSON values to, or receive them from, a transport link. The link
is described by a YAML or JSONC config file naming the format,
transport plugin, address and compression.

The inproc transport only connects endpoints inside one process, so
from the command line use tcp.`,
		Subcommands: []*cli.Command{
			sendCommand(),
			receiveCommand(),
		},
	}
}

func sendCommand() *cli.Command {
	var params linkParams
	return &cli.Command{
		Name:    "send",
		Summary: "Encode JSON values and send them",
		Description: `Read JSON values from the input (a file or stdin; comments allowed),
one after another, and send each as a framed message in the link's
format.`,
		Usage: "objcodec link send [--config file] [flags] [file]",
		Examples: []cli.Example{
			{
				Description: "Send one MessagePack value to a TCP receiver",
				Command:     `echo '[3, "abc"]' | objcodec link send --config link.yaml -f msgpack`,
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("send", &params) },
		Run: func(args []string) error {
			link, err := params.resolve()
			if err != nil {
				return err
			}
			input := io.Reader(os.Stdin)
			switch len(args) {
			case 0:
			case 1:
				file, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer file.Close()
				input = file
			default:
				return fmt.Errorf("send takes at most one input file, got %d arguments", len(args))
			}
			logger := cli.NewCommandLogger(params.Verbose).With("command", "link/send")
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			count, err := sendValues(ctx, link, input, params.Timeout, logger)
			logger.Debug("send finished", "messages", count)
			return err
		},
	}
}

// sendValues sends every JSON value in input and returns how many were
// sent.
func sendValues(ctx context.Context, link config.Link, input io.Reader, timeout time.Duration, logger *slog.Logger) (int, error) {
	document, err := io.ReadAll(input)
	if err != nil {
		return 0, fmt.Errorf("read input: %w", err)
	}
	values, err := splitValues(document)
	if err != nil {
		return 0, err
	}

	sender, err := netobject.NewSender[any](link, netobject.Options{Logger: logger})
	if err != nil {
		return 0, err
	}
	defer sender.Close()

	for i, value := range values {
		if err := sender.Send(ctx, value, timeout); err != nil {
			return i, fmt.Errorf("sending value %d: %w", i+1, err)
		}
	}
	return len(values), nil
}

// splitValues parses a stream of JSON values, comments allowed.
func splitValues(document []byte) ([]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(document)))
	var values []any
	for {
		var raw json.RawMessage
		err := decoder.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse value %d: %w", len(values)+1, err)
		}
		_, value, err := codec.DecodeAny(append([]byte{'J'}, raw...))
		if err != nil {
			return nil, fmt.Errorf("parse value %d: %w", len(values)+1, err)
		}
		values = append(values, value)
	}
}

type receiveParams struct {
	linkParams
	Count   int  `flag:"count,n" desc:"stop after this many messages (0 means until interrupted or timed out)" default:"1"`
	Compact bool `flag:"compact,c" desc:"compact output (one value per line)"`
}

func receiveCommand() *cli.Command {
	var params receiveParams
	return &cli.Command{
		Name:    "receive",
		Summary: "Receive messages and print them as JSON",
		Description: `Listen on the link and print each received message's payload as JSON.
Each message's format comes from its marker byte, so the configured
format does not need to match the sender's.

Messages that fail to decode are logged and skipped.`,
		Usage: "objcodec link receive [--config file] [flags]",
		Examples: []cli.Example{
			{
				Description: "Print messages until interrupted",
				Command:     "objcodec link receive --config link.yaml -n 0 -t 0 -c",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("receive", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("receive takes no positional arguments, got %q", args[0])
			}
			link, err := params.resolve()
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger(params.Verbose).With("command", "link/receive")
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			receiver, err := netobject.NewReceiver[any](link, netobject.Options{Logger: logger})
			if err != nil {
				return err
			}
			defer receiver.Close()
			logger.Info("listening", "address", receiver.Address())

			err = receiveValues(ctx, receiver, os.Stdout, params.Count, params.Timeout, params.Compact, logger)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

// valueReceiver is the part of netobject.Receiver that receiveValues
// uses.
type valueReceiver interface {
	Receive(ctx context.Context, timeout time.Duration) (any, error)
}

// receiveValues prints up to count decoded values (all of them when
// count is 0). Undecodable messages are skipped; transport errors end
// the loop.
func receiveValues(ctx context.Context, receiver valueReceiver, w io.Writer, count int, timeout time.Duration, compact bool, logger *slog.Logger) error {
	for printed := 0; count == 0 || printed < count; {
		value, err := receiver.Receive(ctx, timeout)
		switch {
		case err == nil:
		case errors.Is(err, codec.ErrCannotDeserialize), errors.Is(err, codec.ErrEmptyMessage):
			logger.Warn("skipping message", "error", err)
			continue
		default:
			var markerErr *codec.UnknownFormatByteError
			if errors.As(err, &markerErr) {
				logger.Warn("skipping message", "error", err)
				continue
			}
			if errors.Is(err, transport.ErrTimeout) {
				return fmt.Errorf("after %d messages: %w", printed, err)
			}
			return err
		}
		if err := cli.WriteJSON(w, value, compact); err != nil {
			return err
		}
		printed++
	}
	return nil
}
