// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bureau-foundation/objcodec/lib/clock"
)

// InprocQueueCapacity is the number of undelivered messages an inproc
// address holds before Send blocks.
const InprocQueueCapacity = 1000

const inprocScheme = "inproc://"

// inprocQueue is shared by every sender and receiver attached to one
// address. It is removed from the hub when the last one closes.
type inprocQueue struct {
	messages   chan []byte
	references int
}

var inprocHub = struct {
	sync.Mutex
	queues map[string]*inprocQueue
}{queues: make(map[string]*inprocQueue)}

func attachInproc(address string) (string, *inprocQueue, error) {
	name, ok := strings.CutPrefix(address, inprocScheme)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("transport: inproc address must look like %sname, got %q", inprocScheme, address)
	}
	inprocHub.Lock()
	defer inprocHub.Unlock()
	queue, ok := inprocHub.queues[name]
	if !ok {
		queue = &inprocQueue{messages: make(chan []byte, InprocQueueCapacity)}
		inprocHub.queues[name] = queue
	}
	queue.references++
	return name, queue, nil
}

func detachInproc(name string) {
	inprocHub.Lock()
	defer inprocHub.Unlock()
	queue, ok := inprocHub.queues[name]
	if !ok {
		return
	}
	queue.references--
	if queue.references <= 0 {
		delete(inprocHub.queues, name)
	}
}

type inprocPlugin struct{}

func (inprocPlugin) NewSender(options Options) (Sender, error) {
	name, queue, err := attachInproc(options.Address)
	if err != nil {
		return nil, err
	}
	return &inprocSender{inprocEndpoint: newInprocEndpoint(name, queue, options)}, nil
}

func (inprocPlugin) NewReceiver(options Options) (Receiver, error) {
	name, queue, err := attachInproc(options.Address)
	if err != nil {
		return nil, err
	}
	return &inprocReceiver{inprocEndpoint: newInprocEndpoint(name, queue, options)}, nil
}

type inprocEndpoint struct {
	name            string
	queue           *inprocQueue
	maxMessageBytes int
	clock           clock.Clock

	closeOnce sync.Once
	closed    chan struct{}
}

func newInprocEndpoint(name string, queue *inprocQueue, options Options) *inprocEndpoint {
	return &inprocEndpoint{
		name:            name,
		queue:           queue,
		maxMessageBytes: options.MaxMessageBytes,
		clock:           options.Clock,
		closed:          make(chan struct{}),
	}
}

func (e *inprocEndpoint) Address() string { return inprocScheme + e.name }

func (e *inprocEndpoint) Close() error {
	e.closeOnce.Do(func() {
		close(e.closed)
		detachInproc(e.name)
	})
	return nil
}

// inprocSender copies each message into the address's queue. Compression
// is not applied: nothing crosses a process boundary.
type inprocSender struct {
	*inprocEndpoint
}

func (s *inprocSender) Send(ctx context.Context, data []byte, timeout time.Duration) error {
	select {
	case <-s.closed:
		return ErrClosed
	default:
	}
	if len(data) > s.maxMessageBytes {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrMessageTooLarge, len(data), s.maxMessageBytes)
	}
	message := make([]byte, len(data))
	copy(message, data)

	select {
	case s.queue.messages <- message:
		return nil
	default:
	}

	expired, release := clock.Deadline(s.clock, timeout)
	defer release()
	select {
	case s.queue.messages <- message:
		return nil
	case <-s.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-expired:
		return fmt.Errorf("%w: queue %s full for %v", ErrTimeout, s.Address(), timeout)
	}
}

type inprocReceiver struct {
	*inprocEndpoint
}

func (r *inprocReceiver) Receive(ctx context.Context, timeout time.Duration) (Response, error) {
	select {
	case <-r.closed:
		return Response{}, ErrClosed
	default:
	}
	return waitQueue(ctx, r.queue.messages, r.closed, r.clock, timeout)
}
