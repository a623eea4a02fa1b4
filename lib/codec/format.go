// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"fmt"
)

// Format identifies a wire format.
type Format uint8

const (
	// JSON is the text format. Marker 'J'.
	JSON Format = iota
	// MsgPack is the binary format. Marker 'M'.
	MsgPack
)

// formatEntry binds a Format to everything the framing layer needs.
// encode writes the payload (without marker) to the buffer; decode
// parses a payload (without marker) into target, a non-nil pointer.
type formatEntry struct {
	format Format
	name   string
	marker byte
	encode func(buffer *bytes.Buffer, value any) error
	decode func(payload []byte, target any) error
}

// formats is indexed by Format. It is never modified after package
// initialization.
var formats = [...]formatEntry{
	JSON:    {format: JSON, name: "json", marker: 'J', encode: encodeJSON, decode: decodeJSON},
	MsgPack: {format: MsgPack, name: "msgpack", marker: 'M', encode: encodeMsgpack, decode: decodeMsgpack},
}

func lookupFormat(format Format) (*formatEntry, error) {
	if int(format) >= len(formats) {
		return nil, &UnknownFormatError{Format: format}
	}
	return &formats[format], nil
}

// MarkerOf returns the marker byte that prefixes messages in format.
func MarkerOf(format Format) (byte, error) {
	entry, err := lookupFormat(format)
	if err != nil {
		return 0, err
	}
	return entry.marker, nil
}

// FormatOf returns the format whose marker is marker.
func FormatOf(marker byte) (Format, error) {
	for i := range formats {
		if formats[i].marker == marker {
			return formats[i].format, nil
		}
	}
	return 0, &UnknownFormatByteError{Marker: marker}
}

// ParseFormat converts a configuration name ("json" or "msgpack") to a
// Format. Matching is exact and case-sensitive.
func ParseFormat(name string) (Format, error) {
	for i := range formats {
		if formats[i].name == name {
			return formats[i].format, nil
		}
	}
	return 0, &UnknownFormatNameError{Name: name}
}

// Formats returns every registered format in marker-table order.
func Formats() []Format {
	result := make([]Format, len(formats))
	for i := range formats {
		result[i] = formats[i].format
	}
	return result
}

// String returns the configuration name of the format.
func (f Format) String() string {
	entry, err := lookupFormat(f)
	if err != nil {
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
	return entry.name
}

// MarshalText implements encoding.TextMarshaler so a Format can appear
// directly in YAML and JSON configuration.
func (f Format) MarshalText() ([]byte, error) {
	entry, err := lookupFormat(f)
	if err != nil {
		return nil, err
	}
	return []byte(entry.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
