// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock set to initial. Time stands still until
// Advance is called.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.timersChanged = sync.NewCond(&clock.mu)
	return clock
}

// FakeClock is a deterministic Clock. Timers fire only when Advance
// moves the clock past their deadline. Safe for concurrent use.
type FakeClock struct {
	mu            sync.Mutex
	current       time.Time
	timers        []*fakeTimer
	timersChanged *sync.Cond
}

type fakeTimer struct {
	deadline time.Time
	channel  chan time.Time
	done     bool
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *FakeClock) NewTimer(d time.Duration) *Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	timer := &fakeTimer{
		deadline: c.current.Add(d),
		channel:  make(chan time.Time, 1),
	}
	if d <= 0 {
		timer.channel <- c.current
		timer.done = true
	} else {
		c.timers = append(c.timers, timer)
		c.timersChanged.Broadcast()
	}
	return &Timer{
		C: timer.channel,
		stopFunc: func() bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			if timer.done {
				return false
			}
			timer.done = true
			c.timersChanged.Broadcast()
			return true
		},
	}
}

// Advance moves the clock forward by d and fires, in deadline order,
// every timer whose deadline is not after the new time.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
	var expired, remaining []*fakeTimer
	for _, timer := range c.timers {
		switch {
		case timer.done:
		case timer.deadline.After(c.current):
			remaining = append(remaining, timer)
		default:
			expired = append(expired, timer)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].deadline.Before(expired[j].deadline)
	})
	for _, timer := range expired {
		timer.done = true
		timer.channel <- c.current
	}
	c.timers = remaining
	c.timersChanged.Broadcast()
}

// WaitForTimers blocks until at least n timers are pending. Call it
// before Advance so the goroutine under test has registered its
// deadline:
//
//	go func() { _, err := receiver.Receive(ctx, time.Second); errs <- err }()
//	fakeClock.WaitForTimers(1)
//	fakeClock.Advance(time.Second)
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pendingLocked() < n {
		c.timersChanged.Wait()
	}
}

// PendingCount returns the number of timers that have neither fired
// nor been stopped.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingLocked()
}

func (c *FakeClock) pendingLocked() int {
	count := 0
	for _, timer := range c.timers {
		if !timer.done {
			count++
		}
	}
	return count
}
