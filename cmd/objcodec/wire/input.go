// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"unicode"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/objcodec/lib/codec"
)

// readInput reads from the file named by the last arg when it is a
// regular file, otherwise from stdin. With hexMode the bytes are
// hex-decoded first. The consumed path is removed from the returned
// args.
func readInput(args []string, stdin io.Reader, hexMode bool) ([]byte, []string, error) {
	var data []byte
	remaining := args

	if length := len(args); length > 0 {
		candidate := args[length-1]
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			data, err = os.ReadFile(candidate)
			if err != nil {
				return nil, nil, fmt.Errorf("read %s: %w", candidate, err)
			}
			remaining = args[:length-1]
		}
	}

	if data == nil {
		var err error
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("read stdin: %w", err)
		}
	}

	if hexMode {
		decoded, err := decodeHexInput(data)
		if err != nil {
			return nil, nil, err
		}
		data = decoded
	}
	return data, remaining, nil
}

// decodeHexInput decodes hex with any whitespace between digits.
func decodeHexInput(data []byte) ([]byte, error) {
	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("empty input after stripping whitespace from hex")
	}
	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	count, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded[:count], nil
}

// parseValue turns JSON-with-comments into a generic value. Integral
// numbers become int64 so MessagePack output keeps them integers.
func parseValue(document []byte) (any, error) {
	standard := jsonc.ToJSON(document)
	if len(bytes.TrimSpace(standard)) == 0 {
		return nil, fmt.Errorf("no JSON value in input")
	}
	message := append([]byte{'J'}, standard...)
	_, value, err := codec.DecodeAny(message)
	if err != nil {
		return nil, fmt.Errorf("parse JSON input: %w", err)
	}
	return value, nil
}

// noPositional rejects leftover positional arguments.
func noPositional(command string, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%s: unexpected argument %q (input files must exist)", command, args[0])
	}
	return nil
}
