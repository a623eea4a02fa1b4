// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// MessagePack representation: records are arrays of field values in
// declaration order, variants are [index, payload], everything else is
// whatever vmihailenco/msgpack produces with json struct tags and
// array-encoded structs.

func newMsgpackEncoder(w io.Writer) *msgpack.Encoder {
	encoder := msgpack.NewEncoder(w)
	// One set of struct tags serves both formats, and plain structs
	// are positional like records.
	encoder.SetCustomStructTag("json")
	encoder.UseArrayEncodedStructs(true)
	encoder.UseCompactInts(true)
	return encoder
}

func newMsgpackDecoder(r io.Reader) *msgpack.Decoder {
	decoder := msgpack.NewDecoder(r)
	decoder.SetCustomStructTag("json")
	return decoder
}

func encodeMsgpack(buffer *bytes.Buffer, value any) error {
	return writeMsgpackValue(newMsgpackEncoder(buffer), value)
}

func decodeMsgpack(payload []byte, target any) error {
	reader := bytes.NewReader(payload)
	if err := readMsgpackValue(newMsgpackDecoder(reader), target); err != nil {
		return err
	}
	if remaining := reader.Len(); remaining > 0 {
		return fmt.Errorf("%d trailing bytes after MessagePack value", remaining)
	}
	return nil
}

func writeMsgpackValue(encoder *msgpack.Encoder, value any) error {
	if variant, ok := encodeVariant(value); ok {
		return writeMsgpackVariant(encoder, variant)
	}
	if fields, ok := encodeFields(MsgPack, value); ok {
		return writeMsgpackRecord(encoder, fields)
	}
	if container, ok := containerOf(MsgPack, value); ok {
		return writeMsgpackContainer(encoder, container)
	}
	return encoder.Encode(value)
}

func writeMsgpackRecord(encoder *msgpack.Encoder, fields []Field) error {
	for _, field := range fields {
		if err := checkField(field); err != nil {
			return err
		}
	}
	if err := encoder.EncodeArrayLen(len(fields)); err != nil {
		return err
	}
	for _, field := range fields {
		if err := writeMsgpackValue(encoder, field.Value); err != nil {
			return fmt.Errorf("field %q: %w", field.Name, err)
		}
	}
	return nil
}

func writeMsgpackVariant(encoder *msgpack.Encoder, variant Variant) error {
	index, value, err := activeAlternative(variant)
	if err != nil {
		return err
	}
	if err := encoder.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := encoder.EncodeUint(uint64(index)); err != nil {
		return err
	}
	if err := writeMsgpackValue(encoder, value); err != nil {
		return fmt.Errorf("variant alternative %d: %w", index, err)
	}
	return nil
}

func readMsgpackValue(decoder *msgpack.Decoder, target any) error {
	if variant, ok := target.(MutableVariant); ok {
		return readMsgpackVariant(decoder, variant)
	}
	if fields, ok, err := decodeFields(MsgPack, target); ok {
		if err != nil {
			return err
		}
		return readMsgpackRecord(decoder, fields)
	}
	if container, ok := containerTarget(MsgPack, target); ok {
		return readMsgpackContainer(decoder, container)
	}
	return decoder.Decode(target)
}

// readMsgpackRecord requires an array of exactly len(fields) elements.
func readMsgpackRecord(decoder *msgpack.Decoder, fields []Field) error {
	for _, field := range fields {
		if err := checkField(field); err != nil {
			return err
		}
	}
	length, err := decoder.DecodeArrayLen()
	if err != nil {
		return err
	}
	if length != len(fields) {
		return &ArityError{Want: len(fields), Got: length}
	}
	for _, field := range fields {
		if err := readMsgpackValue(decoder, field.Value); err != nil {
			return fmt.Errorf("field %q: %w", field.Name, err)
		}
	}
	return nil
}

func readMsgpackVariant(decoder *msgpack.Decoder, variant MutableVariant) error {
	length, err := decoder.DecodeArrayLen()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedVariantEnvelope, err)
	}
	if length != 2 {
		return fmt.Errorf("%w: expected 2 elements, got %d", ErrMalformedVariantEnvelope, length)
	}
	index, err := decoder.DecodeInt64()
	if err != nil {
		return fmt.Errorf("%w: index: %v", ErrMalformedVariantEnvelope, err)
	}
	target, err := alternativeTarget(variant, index)
	if err != nil {
		return err
	}
	if err := readMsgpackValue(decoder, target); err != nil {
		return fmt.Errorf("variant alternative %d: %w", index, err)
	}
	return variant.Assign(int(index), target)
}

// EncodeRecordMsgpack writes record as a positional array. Use it to
// implement msgpack.CustomEncoder:
//
//	func (s *Sample) EncodeMsgpack(e *msgpack.Encoder) error { return codec.EncodeRecordMsgpack(e, s) }
func EncodeRecordMsgpack(encoder *msgpack.Encoder, record Record) error {
	return writeMsgpackRecord(encoder, record.Fields())
}

// DecodeRecordMsgpack reads a positional array into record, failing
// with an [ArityError] on a length mismatch. Use it to implement
// msgpack.CustomDecoder.
func DecodeRecordMsgpack(decoder *msgpack.Decoder, record Record) error {
	fields, err := decodableFields(record)
	if err != nil {
		return err
	}
	return readMsgpackRecord(decoder, fields)
}

// EncodeVariantMsgpack writes variant as [index, payload].
func EncodeVariantMsgpack(encoder *msgpack.Encoder, variant Variant) error {
	return writeMsgpackVariant(encoder, variant)
}

// DecodeVariantMsgpack reads an [index, payload] array into variant.
func DecodeVariantMsgpack(decoder *msgpack.Decoder, variant MutableVariant) error {
	return readMsgpackVariant(decoder, variant)
}
