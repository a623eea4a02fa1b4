// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"fmt"
)

// Serialize encodes value in format and returns the message: the
// format's marker byte followed by the payload. The result is never
// empty and is owned by the caller.
func Serialize(value any, format Format) ([]byte, error) {
	entry, err := lookupFormat(format)
	if err != nil {
		return nil, err
	}
	var buffer bytes.Buffer
	buffer.WriteByte(entry.marker)
	if err := entry.encode(&buffer, value); err != nil {
		return nil, &SerializeError{Format: format, Err: err}
	}
	return buffer.Bytes(), nil
}

// Deserialize decodes a message produced by [Serialize] into a new T.
// The format is taken from the message's marker byte.
//
// If *T implements [Defaulter], SetDefaults runs before decoding. On
// failure the zero T is returned, never a partially decoded value.
func Deserialize[T any](data []byte) (T, error) {
	var value T
	if defaulter, ok := any(&value).(Defaulter); ok {
		defaulter.SetDefaults()
	}
	if err := decodeMessage(data, &value); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

// DeserializeInto decodes a message into target, which must be a
// non-nil pointer. Members absent from a JSON message leave the
// corresponding fields of *target untouched. Unlike [Deserialize], a
// failure may leave *target partially updated.
func DeserializeInto(data []byte, target any) error {
	if target == nil || isNilPointer(target) {
		return fmt.Errorf("codec: DeserializeInto target must be a non-nil pointer, got %T", target)
	}
	return decodeMessage(data, target)
}

// Peek splits a message into its format and payload without decoding
// the payload. The payload aliases data.
func Peek(data []byte) (Format, []byte, error) {
	if len(data) == 0 {
		return 0, nil, ErrEmptyMessage
	}
	format, err := FormatOf(data[0])
	if err != nil {
		return 0, nil, err
	}
	return format, data[1:], nil
}

func decodeMessage(data []byte, target any) error {
	format, payload, err := Peek(data)
	if err != nil {
		return err
	}
	if err := formats[format].decode(payload, target); err != nil {
		return &DeserializeError{Format: format, Err: err}
	}
	return nil
}
