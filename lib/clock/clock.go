// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time source for transport deadlines. Production code
// uses Real(); tests use Fake() and move time explicitly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTimer returns a Timer that fires once after d. If d <= 0 the
	// timer has already fired when NewTimer returns.
	NewTimer(d time.Duration) *Timer
}

// Timer is a one-shot timer. Read the fire time from C and call Stop
// once the timer is no longer needed.
type Timer struct {
	// C receives the fire time. Buffered with capacity 1.
	C <-chan time.Time

	stopFunc func() bool
}

// Stop prevents the Timer from firing. Returns false if it has already
// fired or been stopped.
func (t *Timer) Stop() bool { return t.stopFunc() }

// Real returns the Clock transports use outside tests.
func Real() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) NewTimer(d time.Duration) *Timer {
	timer := time.NewTimer(d)
	return &Timer{C: timer.C, stopFunc: timer.Stop}
}

// Deadline returns a channel that receives when timeout elapses on
// clock, and a function releasing the timer. A non-positive timeout
// never fires: the returned channel is nil.
func Deadline(clock Clock, timeout time.Duration) (<-chan time.Time, func()) {
	if timeout <= 0 {
		return nil, func() {}
	}
	timer := clock.NewTimer(timeout)
	return timer.C, func() { timer.Stop() }
}
