// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat is matched by [UnknownFormatError]. It means a
	// Format value outside the registered set reached a lookup, which
	// is a programming error rather than bad input.
	ErrUnknownFormat = errors.New("codec: unknown serialization format")

	// ErrEmptyMessage is returned when a message has no bytes at all,
	// not even the format marker.
	ErrEmptyMessage = errors.New("codec: empty message")

	// ErrMalformedVariantEnvelope is returned when a variant is not
	// encoded as an (index, value) pair.
	ErrMalformedVariantEnvelope = errors.New("codec: malformed variant envelope")

	// ErrCannotDeserialize is matched by every [DeserializeError].
	ErrCannotDeserialize = errors.New("codec: cannot deserialize message")
)

// UnknownFormatNameError reports a format name (typically from
// configuration) that does not match any registered format.
type UnknownFormatNameError struct {
	Name string
}

func (e *UnknownFormatNameError) Error() string {
	return fmt.Sprintf("codec: unknown serialization format name %q", e.Name)
}

// UnknownFormatError reports a Format value with no registry entry.
type UnknownFormatError struct {
	Format Format
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("codec: unknown serialization format %d", uint8(e.Format))
}

func (e *UnknownFormatError) Is(target error) bool {
	return target == ErrUnknownFormat
}

// UnknownFormatByteError reports a message whose leading byte is not a
// registered format marker.
type UnknownFormatByteError struct {
	Marker byte
}

func (e *UnknownFormatByteError) Error() string {
	return fmt.Sprintf("codec: unknown serialization format marker %q (0x%02x)", rune(e.Marker), e.Marker)
}

// InvalidVariantIndexError reports a variant envelope whose index does
// not select one of the variant's alternatives.
type InvalidVariantIndexError struct {
	Index        int64
	Alternatives int
}

func (e *InvalidVariantIndexError) Error() string {
	return fmt.Sprintf("codec: variant index %d out of range (variant has %d alternatives)",
		e.Index, e.Alternatives)
}

// ArityError reports a MessagePack record whose array length differs
// from the number of fields the target type declares. Got is -1 when
// the encoded value was nil rather than an array.
type ArityError struct {
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	if e.Got < 0 {
		return fmt.Sprintf("codec: expected array of %d fields, got nil", e.Want)
	}
	return fmt.Sprintf("codec: expected array of %d fields, got %d", e.Want, e.Got)
}

// DeserializeError wraps any failure to parse or convert a payload
// once its format is known.
type DeserializeError struct {
	Format Format
	Err    error
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("codec: cannot deserialize %s message: %v", e.Format, e.Err)
}

func (e *DeserializeError) Unwrap() error { return e.Err }

func (e *DeserializeError) Is(target error) bool {
	return target == ErrCannotDeserialize
}

// SerializeError wraps a failure to encode a value.
type SerializeError struct {
	Format Format
	Err    error
}

func (e *SerializeError) Error() string {
	return fmt.Sprintf("codec: cannot serialize %s message: %v", e.Format, e.Err)
}

func (e *SerializeError) Unwrap() error { return e.Err }
