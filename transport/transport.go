// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bureau-foundation/objcodec/lib/clock"
)

var (
	// ErrTimeout is returned when a Send or Receive does not complete
	// within its timeout.
	ErrTimeout = errors.New("transport: timed out")

	// ErrClosed is returned by operations on a closed Sender or
	// Receiver.
	ErrClosed = errors.New("transport: closed")

	// ErrMessageTooLarge is returned for messages above
	// Options.MaxMessageBytes.
	ErrMessageTooLarge = errors.New("transport: message too large")
)

// DefaultMaxMessageBytes is the message size limit used when
// Options.MaxMessageBytes is zero.
const DefaultMaxMessageBytes = 8 << 20

// Response is one message delivered by a Receiver.
type Response struct {
	Data []byte
}

// Sender delivers opaque messages to the Receiver at its address.
type Sender interface {
	// Send delivers data. It returns once the message has been handed
	// to the transport, not when a receiver has read it. A positive
	// timeout bounds the call in addition to ctx; on expiry Send
	// returns an error matching ErrTimeout. The caller keeps ownership
	// of data.
	Send(ctx context.Context, data []byte, timeout time.Duration) error

	// Close releases the sender's resources.
	Close() error
}

// Receiver yields messages sent to its address, in arrival order per
// sender.
type Receiver interface {
	// Receive blocks until a message arrives, ctx is done, or a
	// positive timeout elapses (ErrTimeout).
	Receive(ctx context.Context, timeout time.Duration) (Response, error)

	// Address returns the address senders use to reach this receiver.
	// For listeners bound to port 0 it carries the chosen port.
	Address() string

	// Close stops the receiver. Pending and later Receive calls return
	// ErrClosed.
	Close() error
}

// Options configures a Sender or Receiver.
type Options struct {
	// Address is plugin-specific: "inproc://name" for inproc,
	// "tcp://host:port" or "host:port" for tcp.
	Address string

	// Compression is applied by the sender to each message, where the
	// plugin supports it.
	Compression Compression

	// MaxMessageBytes bounds the uncompressed size of a message. Zero
	// means DefaultMaxMessageBytes.
	MaxMessageBytes int

	// Logger receives connection-level events. Nil means slog.Default().
	Logger *slog.Logger

	// Clock drives Send and Receive timeouts. Nil means clock.Real().
	Clock clock.Clock
}

func (o Options) withDefaults() Options {
	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = DefaultMaxMessageBytes
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Clock == nil {
		o.Clock = clock.Real()
	}
	return o
}

// Plugin constructs senders and receivers for one kind of transport.
type Plugin interface {
	NewSender(options Options) (Sender, error)
	NewReceiver(options Options) (Receiver, error)
}

// UnknownPluginError reports a plugin name with no registration.
type UnknownPluginError struct {
	Name string
}

func (e *UnknownPluginError) Error() string {
	return fmt.Sprintf("transport: unknown plugin %q (registered: %v)", e.Name, Plugins())
}

var registry = struct {
	sync.RWMutex
	plugins map[string]Plugin
}{plugins: make(map[string]Plugin)}

// Register makes a plugin available under name, replacing any earlier
// registration. The inproc and tcp plugins are registered by this
// package.
func Register(name string, plugin Plugin) {
	if plugin == nil {
		panic("transport: Register called with nil plugin")
	}
	registry.Lock()
	defer registry.Unlock()
	registry.plugins[name] = plugin
}

// Plugins returns the registered plugin names, sorted.
func Plugins() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.plugins))
	for name := range registry.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (Plugin, error) {
	registry.RLock()
	defer registry.RUnlock()
	plugin, ok := registry.plugins[name]
	if !ok {
		return nil, &UnknownPluginError{Name: name}
	}
	return plugin, nil
}

// NewSender creates a sender with the named plugin.
func NewSender(name string, options Options) (Sender, error) {
	plugin, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return plugin.NewSender(options.withDefaults())
}

// NewReceiver creates a receiver with the named plugin.
func NewReceiver(name string, options Options) (Receiver, error) {
	plugin, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return plugin.NewReceiver(options.withDefaults())
}

func init() {
	Register("inproc", inprocPlugin{})
	Register("tcp", tcpPlugin{})
}

// waitQueue takes the next message from queue, honoring ctx, closed
// and timeout.
func waitQueue(ctx context.Context, queue <-chan []byte, closed <-chan struct{}, clk clock.Clock, timeout time.Duration) (Response, error) {
	// A message already queued wins over an expired context.
	select {
	case data := <-queue:
		return Response{Data: data}, nil
	default:
	}

	expired, release := clock.Deadline(clk, timeout)
	defer release()
	select {
	case data := <-queue:
		return Response{Data: data}, nil
	case <-closed:
		return Response{}, ErrClosed
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-expired:
		return Response{}, fmt.Errorf("%w: no message within %v", ErrTimeout, timeout)
	}
}
