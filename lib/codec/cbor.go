// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CBOR is not a message format. It is the neutral representation used
// to print payloads of either format in RFC 8949 diagnostic notation,
// where every MessagePack array and JSON object keeps its shape.

// diagnosticMode is Core Deterministic Encoding: sorted map keys and
// smallest integer encoding, so equal payloads print identically.
var diagnosticMode cbor.EncMode

func init() {
	var err error
	diagnosticMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
}

// DecodeAny decodes a message's payload without a target type. JSON
// objects become map[string]any and integral JSON numbers become
// int64. MessagePack integers become int64 when signed and uint64
// when unsigned, whatever width the encoder chose, and float32 widens to
// float64. Containers are []any and map[string]any, or map[any]any when
// a map has non-string keys.
func DecodeAny(message []byte) (Format, any, error) {
	format, payload, err := Peek(message)
	if err != nil {
		return 0, nil, err
	}
	generic, err := decodeGeneric(format, payload)
	if err != nil {
		return format, nil, &DeserializeError{Format: format, Err: err}
	}
	return format, generic, nil
}

// Transcode decodes a message's payload without a target type and
// re-encodes it as deterministic CBOR. JSON numbers that are integers
// stay integers. The result describes the payload's structure only;
// field names of MessagePack records are not recoverable.
func Transcode(message []byte) ([]byte, error) {
	_, generic, err := DecodeAny(message)
	if err != nil {
		return nil, err
	}
	return diagnosticMode.Marshal(generic)
}

// Diagnose returns the CBOR diagnostic notation of a message's payload,
// for example [3, "abc", [1.5, 2.5]] for a three-field MessagePack
// record.
func Diagnose(message []byte) (string, error) {
	transcoded, err := Transcode(message)
	if err != nil {
		return "", err
	}
	return cbor.Diagnose(transcoded)
}

func decodeGeneric(format Format, payload []byte) (any, error) {
	switch format {
	case JSON:
		decoder := json.NewDecoder(bytes.NewReader(payload))
		decoder.UseNumber()
		var value any
		if err := decoder.Decode(&value); err != nil {
			return nil, err
		}
		if decoder.More() {
			return nil, fmt.Errorf("trailing data after JSON value")
		}
		return normalizeJSONNumbers(value), nil
	case MsgPack:
		reader := bytes.NewReader(payload)
		decoder := newMsgpackDecoder(reader)
		value, err := decoder.DecodeInterfaceLoose()
		if err != nil {
			return nil, err
		}
		if remaining := reader.Len(); remaining > 0 {
			return nil, fmt.Errorf("%d trailing bytes after MessagePack value", remaining)
		}
		return normalizeMsgpackNumbers(value), nil
	default:
		return nil, &UnknownFormatError{Format: format}
	}
}

// normalizeJSONNumbers replaces json.Number with int64 when the number
// is integral and float64 otherwise.
func normalizeJSONNumbers(value any) any {
	switch typed := value.(type) {
	case json.Number:
		if integer, err := typed.Int64(); err == nil {
			return integer
		}
		float, _ := typed.Float64()
		return float
	case []any:
		for i := range typed {
			typed[i] = normalizeJSONNumbers(typed[i])
		}
		return typed
	case map[string]any:
		for key, member := range typed {
			typed[key] = normalizeJSONNumbers(member)
		}
		return typed
	default:
		return value
	}
}

// normalizeMsgpackNumbers widens the compact integers the decoder returns
// so a value reads the same regardless of its wire width.
func normalizeMsgpackNumbers(value any) any {
	switch typed := value.(type) {
	case int8:
		return int64(typed)
	case int16:
		return int64(typed)
	case int32:
		return int64(typed)
	case int:
		return int64(typed)
	case uint8:
		return uint64(typed)
	case uint16:
		return uint64(typed)
	case uint32:
		return uint64(typed)
	case uint:
		return uint64(typed)
	case float32:
		return float64(typed)
	case []any:
		for i := range typed {
			typed[i] = normalizeMsgpackNumbers(typed[i])
		}
		return typed
	case map[string]any:
		for key, member := range typed {
			typed[key] = normalizeMsgpackNumbers(member)
		}
		return typed
	case map[any]any:
		normalized := make(map[any]any, len(typed))
		for key, member := range typed {
			normalized[normalizeMsgpackNumbers(key)] = normalizeMsgpackNumbers(member)
		}
		return normalized
	default:
		return value
	}
}
