// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source behind transport
// timeouts.
//
// Transports take a [Clock] in their options. [Real] is the standard
// library; [Fake] returns a [FakeClock] whose timers fire only when the
// test calls Advance, so timeout paths are exercised without sleeping:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	receiver, _ := transport.NewReceiver("inproc", transport.Options{Address: address, Clock: fake})
//	go func() { _, err := receiver.Receive(ctx, 5*time.Second); result <- err }()
//	fake.WaitForTimers(1)
//	fake.Advance(5 * time.Second) // Receive returns transport.ErrTimeout
//
// Socket deadlines are wall-clock and never come from a Clock.
package clock
