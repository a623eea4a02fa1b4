// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package link implements "objcodec link send" and "objcodec link
// receive", which move JSON values over a transport described by a
// config.Link file using lib/netobject.
package link
