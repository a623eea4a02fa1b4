// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var addressSequence atomic.Uint64

// InprocAddress returns an inproc transport address that no other call
// in the test binary returns. Tests that share the process-wide inproc
// registry use it so their queues never meet.
//
//	testutil.InprocAddress("link") // "inproc://link-1", then "inproc://link-2"
func InprocAddress(name string) string {
	return fmt.Sprintf("inproc://%s-%d", name, addressSequence.Add(1))
}
