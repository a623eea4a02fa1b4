// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements "objcodec wire": encoding JSON values into
// framed messages and decoding, inspecting and diagnosing framed
// messages without knowing their target type.
package wire
