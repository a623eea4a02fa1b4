// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// JSON representation: records are objects in field order, variants
// are {"index": i, "value": payload}, everything else is whatever
// encoding/json produces. HTML characters are not escaped.

func encodeJSON(buffer *bytes.Buffer, value any) error {
	return writeJSONValue(buffer, value)
}

func decodeJSON(payload []byte, target any) error {
	// Parse first so syntax errors are reported as such rather than
	// as conversion errors from deep inside a record.
	var document json.RawMessage
	if err := json.Unmarshal(payload, &document); err != nil {
		return err
	}
	return readJSONValue(document, target)
}

func writeJSONValue(buffer *bytes.Buffer, value any) error {
	if variant, ok := encodeVariant(value); ok {
		return writeJSONVariant(buffer, variant)
	}
	if fields, ok := encodeFields(JSON, value); ok {
		return writeJSONRecord(buffer, fields)
	}
	if container, ok := containerOf(JSON, value); ok {
		return writeJSONContainer(buffer, container)
	}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buffer.Truncate(buffer.Len() - 1)
	return nil
}

func writeJSONRecord(buffer *bytes.Buffer, fields []Field) error {
	buffer.WriteByte('{')
	for i, field := range fields {
		if err := checkField(field); err != nil {
			return err
		}
		if i > 0 {
			buffer.WriteByte(',')
		}
		if err := writeJSONValue(buffer, field.Name); err != nil {
			return err
		}
		buffer.WriteByte(':')
		if err := writeJSONValue(buffer, field.Value); err != nil {
			return fmt.Errorf("field %q: %w", field.Name, err)
		}
	}
	buffer.WriteByte('}')
	return nil
}

func writeJSONVariant(buffer *bytes.Buffer, variant Variant) error {
	index, value, err := activeAlternative(variant)
	if err != nil {
		return err
	}
	buffer.WriteString(`{"` + variantIndexKey + `":`)
	buffer.WriteString(strconv.Itoa(index))
	buffer.WriteString(`,"` + variantValueKey + `":`)
	if err := writeJSONValue(buffer, value); err != nil {
		return fmt.Errorf("variant alternative %d: %w", index, err)
	}
	buffer.WriteByte('}')
	return nil
}

func readJSONValue(data []byte, target any) error {
	if variant, ok := target.(MutableVariant); ok {
		return readJSONVariant(data, variant)
	}
	if fields, ok, err := decodeFields(JSON, target); ok {
		if err != nil {
			return err
		}
		return readJSONRecord(data, fields)
	}
	if container, ok := containerTarget(JSON, target); ok {
		return readJSONContainer(data, container)
	}
	return json.Unmarshal(data, target)
}

// readJSONRecord decodes the members present in data into their
// fields. Fields without a member are left untouched and unknown
// members are ignored.
func readJSONRecord(data []byte, fields []Field) error {
	members, err := jsonObject(data)
	if err != nil {
		return err
	}
	for _, field := range fields {
		if err := checkField(field); err != nil {
			return err
		}
		member, ok := members[field.Name]
		if !ok {
			continue
		}
		if err := readJSONValue(member, field.Value); err != nil {
			return fmt.Errorf("field %q: %w", field.Name, err)
		}
	}
	return nil
}

func readJSONVariant(data []byte, variant MutableVariant) error {
	members, err := jsonObject(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedVariantEnvelope, err)
	}
	rawIndex, hasIndex := members[variantIndexKey]
	rawValue, hasValue := members[variantValueKey]
	if !hasIndex || !hasValue {
		return fmt.Errorf("%w: object must have %q and %q members",
			ErrMalformedVariantEnvelope, variantIndexKey, variantValueKey)
	}
	var index int64
	if err := json.Unmarshal(rawIndex, &index); err != nil {
		return fmt.Errorf("%w: index: %v", ErrMalformedVariantEnvelope, err)
	}
	target, err := alternativeTarget(variant, index)
	if err != nil {
		return err
	}
	if err := readJSONValue(rawValue, target); err != nil {
		return fmt.Errorf("variant alternative %d: %w", index, err)
	}
	return variant.Assign(int(index), target)
}

func jsonObject(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("expected JSON object, got %s", jsonKind(trimmed))
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func jsonKind(data []byte) string {
	if len(data) == 0 {
		return "nothing"
	}
	switch data[0] {
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

// MarshalRecordJSON encodes record the way the codec encodes records in
// JSON messages. Use it to implement json.Marshaler:
//
//	func (s *Sample) MarshalJSON() ([]byte, error) { return codec.MarshalRecordJSON(s) }
func MarshalRecordJSON(record Record) ([]byte, error) {
	var buffer bytes.Buffer
	if err := writeJSONRecord(&buffer, record.Fields()); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// UnmarshalRecordJSON decodes data into record with the codec's
// tolerant record semantics. Use it to implement json.Unmarshaler.
func UnmarshalRecordJSON(data []byte, record Record) error {
	fields, err := decodableFields(record)
	if err != nil {
		return err
	}
	return readJSONRecord(data, fields)
}

// MarshalVariantJSON encodes variant as {"index": i, "value": payload}.
func MarshalVariantJSON(variant Variant) ([]byte, error) {
	var buffer bytes.Buffer
	if err := writeJSONVariant(&buffer, variant); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// UnmarshalVariantJSON decodes a {"index": i, "value": payload} object
// into variant.
func UnmarshalVariantJSON(data []byte, variant MutableVariant) error {
	return readJSONVariant(data, variant)
}
