// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Slices, arrays and maps whose elements are records, variants or
// adapted types are walked element by element, so an element has the
// same shape inside a container as it has as a record field. Other
// containers are left to the format library.

var (
	mutableVariantInterface = reflect.TypeFor[MutableVariant]()
	jsonMarshalerInterface  = reflect.TypeFor[json.Marshaler]()
	msgpackEncoderInterface = reflect.TypeFor[msgpack.CustomEncoder]()
)

// elementHandled reports whether the codec, not the format library,
// encodes values of t.
func elementHandled(format Format, t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if lookupAdapter(format, t) != nil {
		return true
	}
	pointer := reflect.PointerTo(t)
	return pointer.Implements(recordInterface) || pointer.Implements(mutableVariantInterface)
}

// hasHooks reports whether t brings its own marshaler for format.
func hasHooks(format Format, t reflect.Type) bool {
	pointer := reflect.PointerTo(t)
	switch format {
	case JSON:
		return pointer.Implements(jsonMarshalerInterface)
	case MsgPack:
		return pointer.Implements(msgpackEncoderInterface)
	}
	return false
}

func walked(format Format, t reflect.Type, seen map[reflect.Type]bool) bool {
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
	default:
		return false
	}
	if seen[t] || hasHooks(format, t) {
		return false
	}
	seen[t] = true
	element := t.Elem()
	if element.Kind() == reflect.Pointer {
		element = element.Elem()
	}
	return elementHandled(format, element) || walked(format, element, seen)
}

// containerOf dereferences value and returns the container the codec
// walks, or false.
func containerOf(format Format, value any) (reflect.Value, bool) {
	reflected := reflect.ValueOf(value)
	for reflected.Kind() == reflect.Pointer {
		if reflected.IsNil() {
			return reflect.Value{}, false
		}
		reflected = reflected.Elem()
	}
	if !reflected.IsValid() || !walked(format, reflected.Type(), make(map[reflect.Type]bool)) {
		return reflect.Value{}, false
	}
	return reflected, true
}

// containerTarget returns the container target points to, or false.
func containerTarget(format Format, target any) (reflect.Value, bool) {
	reflected := reflect.ValueOf(target)
	if reflected.Kind() != reflect.Pointer || reflected.IsNil() {
		return reflect.Value{}, false
	}
	reflected = reflected.Elem()
	if !walked(format, reflected.Type(), make(map[reflect.Type]bool)) {
		return reflect.Value{}, false
	}
	return reflected, true
}

// sortedKeys returns the keys of a string-keyed map in order.
func sortedKeys(container reflect.Value) ([]reflect.Value, error) {
	if container.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("map key type %s is not a string", container.Type().Key())
	}
	keys := container.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int { return strings.Compare(a.String(), b.String()) })
	return keys, nil
}

func writeJSONContainer(buffer *bytes.Buffer, container reflect.Value) error {
	if container.Kind() != reflect.Array && container.IsNil() {
		buffer.WriteString("null")
		return nil
	}
	if container.Kind() == reflect.Map {
		keys, err := sortedKeys(container)
		if err != nil {
			return err
		}
		buffer.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				buffer.WriteByte(',')
			}
			if err := writeJSONValue(buffer, key.String()); err != nil {
				return err
			}
			buffer.WriteByte(':')
			if err := writeJSONValue(buffer, container.MapIndex(key).Interface()); err != nil {
				return fmt.Errorf("key %q: %w", key.String(), err)
			}
		}
		buffer.WriteByte('}')
		return nil
	}
	buffer.WriteByte('[')
	for i := range container.Len() {
		if i > 0 {
			buffer.WriteByte(',')
		}
		if err := writeJSONValue(buffer, container.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	buffer.WriteByte(']')
	return nil
}

func readJSONContainer(data []byte, container reflect.Value) error {
	trimmed := bytes.TrimSpace(data)
	if string(trimmed) == "null" {
		if container.Kind() != reflect.Array {
			container.SetZero()
		}
		return nil
	}

	if container.Kind() == reflect.Map {
		if container.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("map key type %s is not a string", container.Type().Key())
		}
		members, err := jsonObject(trimmed)
		if err != nil {
			return err
		}
		decoded := reflect.MakeMapWithSize(container.Type(), len(members))
		for name, member := range members {
			element := reflect.New(container.Type().Elem())
			if err := readJSONElement(member, element); err != nil {
				return fmt.Errorf("key %q: %w", name, err)
			}
			key := reflect.New(container.Type().Key()).Elem()
			key.SetString(name)
			decoded.SetMapIndex(key, element.Elem())
		}
		container.Set(decoded)
		return nil
	}

	if len(trimmed) == 0 || trimmed[0] != '[' {
		return fmt.Errorf("expected JSON array, got %s", jsonKind(trimmed))
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return err
	}
	target := container
	if container.Kind() == reflect.Slice {
		target = reflect.MakeSlice(container.Type(), len(elements), len(elements))
	} else if len(elements) != container.Len() {
		return fmt.Errorf("expected array of %d elements, got %d", container.Len(), len(elements))
	}
	for i, element := range elements {
		if err := readJSONElement(element, target.Index(i).Addr()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	container.Set(target)
	return nil
}

// readJSONElement decodes data into the element slot points to,
// allocating pointer elements as needed.
func readJSONElement(data []byte, slot reflect.Value) error {
	element := slot.Elem()
	if element.Kind() != reflect.Pointer {
		return readJSONValue(data, slot.Interface())
	}
	if string(bytes.TrimSpace(data)) == "null" {
		element.SetZero()
		return nil
	}
	if element.IsNil() {
		element.Set(reflect.New(element.Type().Elem()))
	}
	return readJSONValue(data, element.Interface())
}

func writeMsgpackContainer(encoder *msgpack.Encoder, container reflect.Value) error {
	if container.Kind() != reflect.Array && container.IsNil() {
		return encoder.EncodeNil()
	}
	if container.Kind() == reflect.Map {
		keys, err := sortedKeys(container)
		if err != nil {
			return err
		}
		if err := encoder.EncodeMapLen(len(keys)); err != nil {
			return err
		}
		for _, key := range keys {
			if err := encoder.EncodeString(key.String()); err != nil {
				return err
			}
			if err := writeMsgpackValue(encoder, container.MapIndex(key).Interface()); err != nil {
				return fmt.Errorf("key %q: %w", key.String(), err)
			}
		}
		return nil
	}
	if err := encoder.EncodeArrayLen(container.Len()); err != nil {
		return err
	}
	for i := range container.Len() {
		if err := writeMsgpackValue(encoder, container.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func readMsgpackContainer(decoder *msgpack.Decoder, container reflect.Value) error {
	if container.Kind() == reflect.Map {
		if container.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("map key type %s is not a string", container.Type().Key())
		}
		length, err := decoder.DecodeMapLen()
		if err != nil {
			return err
		}
		if length < 0 {
			container.SetZero()
			return nil
		}
		decoded := reflect.MakeMapWithSize(container.Type(), length)
		for range length {
			name, err := decoder.DecodeString()
			if err != nil {
				return err
			}
			element := reflect.New(container.Type().Elem())
			if err := readMsgpackElement(decoder, element); err != nil {
				return fmt.Errorf("key %q: %w", name, err)
			}
			key := reflect.New(container.Type().Key()).Elem()
			key.SetString(name)
			decoded.SetMapIndex(key, element.Elem())
		}
		container.Set(decoded)
		return nil
	}

	length, err := decoder.DecodeArrayLen()
	if err != nil {
		return err
	}
	if length < 0 {
		if container.Kind() != reflect.Array {
			container.SetZero()
		}
		return nil
	}
	target := container
	if container.Kind() == reflect.Slice {
		target = reflect.MakeSlice(container.Type(), length, length)
	} else if length != container.Len() {
		return fmt.Errorf("expected array of %d elements, got %d", container.Len(), length)
	}
	for i := range length {
		if err := readMsgpackElement(decoder, target.Index(i).Addr()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	container.Set(target)
	return nil
}

func readMsgpackElement(decoder *msgpack.Decoder, slot reflect.Value) error {
	element := slot.Elem()
	if element.Kind() != reflect.Pointer {
		return readMsgpackValue(decoder, slot.Interface())
	}
	code, err := decoder.PeekCode()
	if err != nil {
		return err
	}
	if code == msgpcode.Nil {
		element.SetZero()
		return decoder.DecodeNil()
	}
	if element.IsNil() {
		element.Set(reflect.New(element.Type().Elem()))
	}
	return readMsgpackValue(decoder, element.Interface())
}
