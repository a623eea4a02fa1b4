// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads link configuration: the wire format, transport
// plugin and address an object sender or receiver uses.
//
// A link is loaded from a single file named either by the
// OBJCODEC_CONFIG environment variable ([Load]) or by a --config flag
// ([LoadFile]). There is no discovery and no per-field environment
// override. YAML is the default syntax; files ending in .json or .jsonc
// are read as JSON with comments:
//
//	# link.yaml
//	format: msgpack
//	transport: tcp
//	address: tcp://${OBJCODEC_HOST:-127.0.0.1}:7891
//	compression: lz4
//
// Fields missing from the file keep the [Default] values (json over
// inproc://default). The address is the only field that expands
// ${VAR} and ${VAR:-default}.
package config
