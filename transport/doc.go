// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport moves opaque messages between a [Sender] and a
// [Receiver]. It knows nothing about their contents; lib/netobject puts
// codec messages on top of it.
//
// Transports are plugins looked up by name with [NewSender] and
// [NewReceiver]. Two are registered by default:
//
//   - "inproc": process-local queues keyed by "inproc://name". Every
//     sender and receiver opened on the same name shares one bounded
//     queue of [InprocQueueCapacity] messages. Data is copied on Send.
//   - "tcp": a [TCPReceiver] listens on "tcp://host:port" (or plain
//     "host:port") and accepts any number of [TCPSender] connections.
//     Messages travel as length-prefixed frames, optionally compressed
//     with LZ4 or zstd (see [Compression]). The sender dials on first
//     use and redials after a failed write.
//
// Further plugins are added with [Register].
//
// Every Send and Receive takes a context and a timeout. A positive
// timeout that expires yields an error matching [ErrTimeout]; a zero
// timeout waits on the context alone. Queue timeouts are measured on
// Options.Clock, socket deadlines on the wall clock.
package transport
