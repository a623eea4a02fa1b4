// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/objcodec/lib/clock"
	"github.com/bureau-foundation/objcodec/lib/testutil"
)

func listenTCP(t *testing.T, options Options) Receiver {
	t.Helper()
	options.Address = "tcp://127.0.0.1:0"
	receiver, err := NewReceiver("tcp", options)
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}
	t.Cleanup(func() { receiver.Close() })
	return receiver
}

func dialTCP(t *testing.T, address string, compression Compression) Sender {
	t.Helper()
	sender, err := NewSender("tcp", Options{Address: address, Compression: compression})
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	t.Cleanup(func() { sender.Close() })
	return sender
}

func TestParseTCPAddress(t *testing.T) {
	valid := map[string]string{
		"tcp://127.0.0.1:7891": "127.0.0.1:7891",
		"localhost:80":         "localhost:80",
		"[::1]:9000":           "[::1]:9000",
	}
	for input, want := range valid {
		got, err := parseTCPAddress(input)
		if err != nil {
			t.Errorf("parseTCPAddress(%q): %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("parseTCPAddress(%q) = %q, want %q", input, got, want)
		}
	}
	for _, input := range []string{"inproc://x", "localhost", "", "udp://1.2.3.4:5"} {
		if _, err := parseTCPAddress(input); err == nil {
			t.Errorf("parseTCPAddress(%q) accepted", input)
		}
	}
}

func TestTCPDelivery(t *testing.T) {
	receiver := listenTCP(t, Options{})
	if !strings.HasPrefix(receiver.Address(), "tcp://127.0.0.1:") {
		t.Fatalf("Address() = %q", receiver.Address())
	}

	ctx := context.Background()
	large := append([]byte{'J'}, bytes.Repeat([]byte(`{"k":"v"},`), 2000)...)
	tests := []struct {
		compression Compression
		message     []byte
	}{
		{CompressionNone, []byte("Jplain")},
		{CompressionLZ4, large},
		{CompressionZstd, large},
		{CompressionZstd, []byte("M")},
	}
	for _, test := range tests {
		sender := dialTCP(t, receiver.Address(), test.compression)
		if err := sender.Send(ctx, test.message, 5*time.Second); err != nil {
			t.Fatalf("Send(%v): %v", test.compression, err)
		}
		response, err := receiver.Receive(ctx, 5*time.Second)
		if err != nil {
			t.Fatalf("Receive(%v): %v", test.compression, err)
		}
		if !bytes.Equal(response.Data, test.message) {
			t.Errorf("%v: received %d bytes, want %d", test.compression, len(response.Data), len(test.message))
		}
	}
}

func TestTCPOrderPerSender(t *testing.T) {
	receiver := listenTCP(t, Options{})
	sender := dialTCP(t, receiver.Address(), CompressionNone)
	ctx := context.Background()

	var want []string
	for i := range 50 {
		message := fmt.Sprintf("J%d", i)
		want = append(want, message)
		if err := sender.Send(ctx, []byte(message), 5*time.Second); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	for i, message := range want {
		response, err := receiver.Receive(ctx, 5*time.Second)
		if err != nil {
			t.Fatalf("Receive %d: %v", i, err)
		}
		if string(response.Data) != message {
			t.Fatalf("message %d = %q, want %q", i, response.Data, message)
		}
	}
}

func TestTCPManySenders(t *testing.T) {
	receiver := listenTCP(t, Options{})
	ctx := context.Background()

	const senders = 5
	for i := range senders {
		sender := dialTCP(t, receiver.Address(), CompressionNone)
		if err := sender.Send(ctx, []byte{'J', byte('0' + i)}, 5*time.Second); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}
	seen := make(map[string]bool)
	for range senders {
		response, err := receiver.Receive(ctx, 5*time.Second)
		if err != nil {
			t.Fatalf("Receive: %v", err)
		}
		seen[string(response.Data)] = true
	}
	if len(seen) != senders {
		t.Errorf("received %d distinct messages, want %d", len(seen), senders)
	}
}

func TestTCPReceiveTimeout(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	receiver := listenTCP(t, Options{Clock: fake})

	result := make(chan error, 1)
	go func() {
		_, err := receiver.Receive(context.Background(), 2*time.Second)
		result <- err
	}()
	fake.WaitForTimers(1)
	fake.Advance(2 * time.Second)

	if err := testutil.RequireReceive(t, result, 5*time.Second, "waiting for Receive to time out"); !errors.Is(err, ErrTimeout) {
		t.Errorf("Receive error = %v, want ErrTimeout", err)
	}
}

func TestTCPSenderRedials(t *testing.T) {
	// Reserve a port, then close it so the first Send fails to dial.
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	address := probe.Addr().String()
	probe.Close()

	sender := dialTCP(t, address, CompressionNone)
	ctx := context.Background()
	if err := sender.Send(ctx, []byte("Jlost"), time.Second); err == nil {
		t.Fatal("Send succeeded with nothing listening")
	}

	receiver, err := ListenTCP(address, Options{})
	if err != nil {
		t.Skipf("port %s was reused before the receiver could bind: %v", address, err)
	}
	t.Cleanup(func() { receiver.Close() })

	if err := sender.Send(ctx, []byte("Jfound"), 5*time.Second); err != nil {
		t.Fatalf("Send after receiver started: %v", err)
	}
	response, err := receiver.Receive(ctx, 5*time.Second)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(response.Data) != "Jfound" {
		t.Errorf("Receive = %q", response.Data)
	}
}

func TestTCPMessageTooLarge(t *testing.T) {
	receiver := listenTCP(t, Options{MaxMessageBytes: 8})
	sender, err := NewSender("tcp", Options{Address: receiver.Address(), MaxMessageBytes: 8})
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Close()
	if err := sender.Send(context.Background(), []byte("J123456789"), time.Second); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("Send error = %v, want ErrMessageTooLarge", err)
	}
}

func TestTCPReceiverDropsOversizedFrames(t *testing.T) {
	receiver := listenTCP(t, Options{MaxMessageBytes: 8})

	// The sender allows more than the receiver does.
	sender := dialTCP(t, receiver.Address(), CompressionNone)
	ctx := context.Background()
	if err := sender.Send(ctx, []byte("J0123456789"), time.Second); err != nil {
		t.Fatalf("Send: %v", err)
	}

	// The connection is dropped; the next send redials and gets through.
	deliveredAfterRedial := false
	for range 20 {
		if err := sender.Send(ctx, []byte("Jok"), time.Second); err != nil {
			continue
		}
		shortCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		response, err := receiver.Receive(shortCtx, 0)
		cancel()
		if err == nil {
			if string(response.Data) != "Jok" {
				t.Fatalf("Receive = %q, oversized frame was delivered", response.Data)
			}
			deliveredAfterRedial = true
			break
		}
	}
	if !deliveredAfterRedial {
		t.Error("no message delivered after the oversized frame")
	}
}

func TestTCPClose(t *testing.T) {
	receiver := listenTCP(t, Options{})
	sender := dialTCP(t, receiver.Address(), CompressionNone)
	if err := sender.Send(context.Background(), []byte("J1"), time.Second); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if err := receiver.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := receiver.Receive(context.Background(), time.Second); !errors.Is(err, ErrClosed) {
		t.Errorf("Receive after Close = %v, want ErrClosed", err)
	}
	if err := receiver.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	sender.Close()
	if err := sender.Send(context.Background(), []byte("J2"), time.Second); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after Close = %v, want ErrClosed", err)
	}
}
