// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

// TCPQueueCapacity is the number of received messages a TCP receiver
// buffers before it stops reading from its connections.
const TCPQueueCapacity = 1000

const tcpScheme = "tcp://"

// parseTCPAddress accepts "tcp://host:port" or "host:port".
func parseTCPAddress(address string) (string, error) {
	hostPort := strings.TrimPrefix(address, tcpScheme)
	if strings.Contains(hostPort, "://") {
		return "", fmt.Errorf("transport: tcp address must be host:port or %shost:port, got %q", tcpScheme, address)
	}
	if _, _, err := net.SplitHostPort(hostPort); err != nil {
		return "", fmt.Errorf("transport: tcp address %q: %w", address, err)
	}
	return hostPort, nil
}

type tcpPlugin struct{}

func (tcpPlugin) NewSender(options Options) (Sender, error) {
	address, err := parseTCPAddress(options.Address)
	if err != nil {
		return nil, err
	}
	return &TCPSender{
		address: address,
		options: options,
		logger:  options.Logger.With("transport", "tcp", "address", address),
	}, nil
}

func (tcpPlugin) NewReceiver(options Options) (Receiver, error) {
	address, err := parseTCPAddress(options.Address)
	if err != nil {
		return nil, err
	}
	receiver, err := ListenTCP(address, options)
	if err != nil {
		return nil, err
	}
	return receiver, nil
}

// TCPSender writes framed messages over one TCP connection, dialed on
// the first Send and redialed on the Send after a failure.
type TCPSender struct {
	address string
	options Options
	logger  *slog.Logger

	mu     sync.Mutex
	conn   net.Conn
	buffer []byte
	closed bool
}

// Send frames data and writes it. A positive timeout bounds the dial
// and the write. Timeouts are reported as ErrTimeout; the connection is
// dropped after any write error so the next Send starts fresh.
func (s *TCPSender) Send(ctx context.Context, data []byte, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	frame, err := appendFrame(s.buffer[:0], data, s.options.Compression, s.options.MaxMessageBytes)
	if err != nil {
		return err
	}
	s.buffer = frame

	if s.conn == nil {
		if err := s.dial(ctx, timeout); err != nil {
			return err
		}
	}

	// Socket deadlines are wall-clock.
	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if contextDeadline, ok := ctx.Deadline(); ok && (deadline.IsZero() || contextDeadline.Before(deadline)) {
		deadline = contextDeadline
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		s.dropConnection()
		return fmt.Errorf("transport: setting write deadline: %w", err)
	}

	if _, err := s.conn.Write(frame); err != nil {
		s.dropConnection()
		return classifyNetError(fmt.Sprintf("writing to %s", s.address), err)
	}
	return nil
}

func (s *TCPSender) dial(ctx context.Context, timeout time.Duration) error {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.address)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classifyNetError(fmt.Sprintf("dialing %s", s.address), err)
	}
	s.logger.Debug("connected", "local", conn.LocalAddr().String())
	s.conn = conn
	return nil
}

func (s *TCPSender) dropConnection() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
		s.logger.Debug("connection dropped, will redial on next send")
	}
}

// Close closes the connection, if any.
func (s *TCPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

func classifyNetError(action string, err error) error {
	var netError net.Error
	if errors.As(err, &netError) && netError.Timeout() {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, action, err)
	}
	return fmt.Errorf("transport: %s: %w", action, err)
}

// TCPReceiver accepts any number of TCP senders and queues the messages
// they send.
type TCPReceiver struct {
	listener net.Listener
	options  Options
	logger   *slog.Logger

	queue     chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wait  sync.WaitGroup
}

// ListenTCP starts a receiver on address ("host:port"; port 0 picks a
// free port). The receiver accepts connections until Close.
func ListenTCP(address string, options Options) (*TCPReceiver, error) {
	options = options.withDefaults()
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("transport: listening on %s: %w", address, err)
	}
	receiver := &TCPReceiver{
		listener: listener,
		options:  options,
		logger:   options.Logger.With("transport", "tcp", "address", listener.Addr().String()),
		queue:    make(chan []byte, TCPQueueCapacity),
		closed:   make(chan struct{}),
		conns:    make(map[net.Conn]struct{}),
	}
	receiver.wait.Add(1)
	go receiver.acceptLoop()
	return receiver, nil
}

// Address returns "tcp://host:port" with the bound port.
func (r *TCPReceiver) Address() string {
	return tcpScheme + r.listener.Addr().String()
}

func (r *TCPReceiver) Receive(ctx context.Context, timeout time.Duration) (Response, error) {
	select {
	case <-r.closed:
		return Response{}, ErrClosed
	default:
	}
	return waitQueue(ctx, r.queue, r.closed, r.options.Clock, timeout)
}

// Close stops accepting, closes every connection and waits for the
// connection goroutines to exit.
func (r *TCPReceiver) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.closed)
		err = r.listener.Close()
		r.mu.Lock()
		for conn := range r.conns {
			conn.Close()
		}
		r.mu.Unlock()
		r.wait.Wait()
	})
	return err
}

func (r *TCPReceiver) acceptLoop() {
	defer r.wait.Done()
	for {
		conn, err := r.listener.Accept()
		if err != nil {
			select {
			case <-r.closed:
			default:
				r.logger.Error("accept failed, receiver stopped", "error", err)
			}
			return
		}
		if !r.track(conn) {
			conn.Close()
			return
		}
		r.wait.Add(1)
		go r.readLoop(conn)
	}
}

// track registers conn so Close can interrupt it. Returns false once
// the receiver is closing.
func (r *TCPReceiver) track(conn net.Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.closed:
		return false
	default:
	}
	r.conns[conn] = struct{}{}
	return true
}

func (r *TCPReceiver) readLoop(conn net.Conn) {
	defer r.wait.Done()
	defer func() {
		r.mu.Lock()
		delete(r.conns, conn)
		r.mu.Unlock()
		conn.Close()
	}()

	peer := conn.RemoteAddr().String()
	r.logger.Debug("sender connected", "peer", peer)
	reader := bufio.NewReader(conn)
	for {
		message, err := readFrame(reader, r.options.MaxMessageBytes)
		if err != nil {
			select {
			case <-r.closed:
			default:
				if errors.Is(err, io.EOF) {
					r.logger.Debug("sender disconnected", "peer", peer)
				} else {
					r.logger.Warn("dropping connection after bad frame", "peer", peer, "error", err)
				}
			}
			return
		}
		select {
		case r.queue <- message:
		case <-r.closed:
			return
		}
	}
}

// Compile-time interface checks.
var (
	_ Sender   = (*TCPSender)(nil)
	_ Receiver = (*TCPReceiver)(nil)
	_ Sender   = (*inprocSender)(nil)
	_ Receiver = (*inprocReceiver)(nil)
)

