// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive], [RequireSend] and [RequireClosed] wrap the
// select-with-fallback pattern so a test blocked on a transport or a
// goroutine fails with a message instead of hanging. They are the only
// place tests use real wall-clock timeouts; transport timeouts
// themselves are driven by lib/clock's fake clock.
//
// [InprocAddress] returns inproc transport addresses that never repeat
// within a test binary, so parallel tests never share a queue.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
