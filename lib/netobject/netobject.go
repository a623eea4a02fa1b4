// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netobject

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/objcodec/lib/clock"
	"github.com/bureau-foundation/objcodec/lib/codec"
	"github.com/bureau-foundation/objcodec/lib/config"
	"github.com/bureau-foundation/objcodec/transport"
)

// Options carries the collaborators a link end does not read from its
// config file.
type Options struct {
	// Logger receives transport events and send/receive failures. Nil
	// means slog.Default().
	Logger *slog.Logger

	// Clock drives transport timeouts. Nil means the real clock.
	Clock clock.Clock
}

func linkTransportOptions(link config.Link, options Options) (transport.Options, error) {
	transportOptions, err := link.TransportOptions()
	if err != nil {
		return transport.Options{}, err
	}
	transportOptions.Logger = options.Logger
	transportOptions.Clock = options.Clock
	return transportOptions, nil
}

func logger(options Options) *slog.Logger {
	if options.Logger != nil {
		return options.Logger
	}
	return slog.Default()
}

// Sender serializes values of type T and sends them over a transport.
type Sender[T any] struct {
	format    codec.Format
	transport transport.Sender
	logger    *slog.Logger
}

// NewSender validates link and opens its transport sender. Messages are
// encoded in link.Format.
func NewSender[T any](link config.Link, options Options) (*Sender[T], error) {
	if err := link.Validate(); err != nil {
		return nil, fmt.Errorf("netobject: invalid link: %w", err)
	}
	format, err := link.ParsedFormat()
	if err != nil {
		return nil, err
	}
	transportOptions, err := linkTransportOptions(link, options)
	if err != nil {
		return nil, err
	}
	sender, err := transport.NewSender(link.Transport, transportOptions)
	if err != nil {
		return nil, fmt.Errorf("netobject: opening %s sender: %w", link.Transport, err)
	}
	return &Sender[T]{
		format:    format,
		transport: sender,
		logger:    logger(options).With("transport", link.Transport, "address", link.Address, "format", format.String()),
	}, nil
}

// Format returns the wire format this sender encodes with.
func (s *Sender[T]) Format() codec.Format { return s.format }

// Send serializes value and hands the message to the transport. A
// positive timeout bounds the transport call; codec failures are
// returned before anything is sent.
func (s *Sender[T]) Send(ctx context.Context, value T, timeout time.Duration) error {
	message, err := codec.Serialize(value, s.format)
	if err != nil {
		return err
	}
	if err := s.transport.Send(ctx, message, timeout); err != nil {
		s.logger.Warn("send failed", "bytes", len(message), "error", err)
		return err
	}
	return nil
}

// Close closes the underlying transport sender.
func (s *Sender[T]) Close() error { return s.transport.Close() }

// Receiver receives messages from a transport and deserializes them
// into values of type T. The format of each message is read from its
// marker byte, so one receiver accepts senders using either format.
type Receiver[T any] struct {
	transport transport.Receiver
	logger    *slog.Logger
}

// NewReceiver validates link and opens its transport receiver.
// link.Format is validated but otherwise unused.
func NewReceiver[T any](link config.Link, options Options) (*Receiver[T], error) {
	if err := link.Validate(); err != nil {
		return nil, fmt.Errorf("netobject: invalid link: %w", err)
	}
	transportOptions, err := linkTransportOptions(link, options)
	if err != nil {
		return nil, err
	}
	receiver, err := transport.NewReceiver(link.Transport, transportOptions)
	if err != nil {
		return nil, fmt.Errorf("netobject: opening %s receiver: %w", link.Transport, err)
	}
	return &Receiver[T]{
		transport: receiver,
		logger:    logger(options).With("transport", link.Transport, "address", receiver.Address()),
	}, nil
}

// Address returns the transport address senders should use. For a TCP
// receiver bound to port 0 it carries the chosen port.
func (r *Receiver[T]) Address() string { return r.transport.Address() }

// Receive waits for the next message and deserializes it. Transport
// errors (including transport.ErrTimeout) and codec errors are returned
// unchanged; on any error the zero T is returned.
func (r *Receiver[T]) Receive(ctx context.Context, timeout time.Duration) (T, error) {
	var zero T
	response, err := r.transport.Receive(ctx, timeout)
	if err != nil {
		return zero, err
	}
	value, err := codec.Deserialize[T](response.Data)
	if err != nil {
		r.logger.Warn("discarding undecodable message", "bytes", len(response.Data), "error", err)
		return zero, err
	}
	return value, nil
}

// ReceiveRaw waits for the next message and returns it undecoded.
func (r *Receiver[T]) ReceiveRaw(ctx context.Context, timeout time.Duration) ([]byte, error) {
	response, err := r.transport.Receive(ctx, timeout)
	if err != nil {
		return nil, err
	}
	return response.Data, nil
}

// Close closes the underlying transport receiver.
func (r *Receiver[T]) Close() error { return r.transport.Close() }
