// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netobject sends typed values between processes by composing
// lib/codec with a transport plugin.
//
// A [Sender] serializes each value with the link's configured format
// and sends the framed message; a [Receiver] deserializes whatever
// arrives using the message's marker byte, so a receiver never needs to
// know which format its senders chose:
//
//	link, err := config.LoadFile("link.yaml")
//	sender, err := netobject.NewSender[Reading](*link, netobject.Options{})
//	err = sender.Send(ctx, reading, 5*time.Second)
//
//	receiver, err := netobject.NewReceiver[Reading](*link, netobject.Options{})
//	reading, err := receiver.Receive(ctx, 5*time.Second)
//
// Codec errors reach the caller unchanged (errors.Is against
// codec.ErrCannotDeserialize and friends), as do transport errors such
// as transport.ErrTimeout.
package netobject
