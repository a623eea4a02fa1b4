// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"reflect"
	"sync"
)

// Field is one named member of a record. Value must be a non-nil
// pointer to the member's storage: the codec reads through it when
// encoding and writes through it when decoding.
type Field struct {
	Name  string
	Value any
}

// Record is implemented by types that declare their own field list.
// The order of the returned fields is the wire order for MessagePack
// and the member order for JSON. Fields is normally implemented on the
// pointer type so the returned pointers alias the receiver.
type Record interface {
	Fields() []Field
}

// Defaulter is implemented by types whose zero value is not their
// default. [Deserialize] calls SetDefaults on the fresh value before
// decoding into it, so JSON members absent from a message keep their
// declared defaults.
type Defaulter interface {
	SetDefaults()
}

// FieldsFunc returns the field list of a value of type T it does not
// own. See [RegisterAdapter].
type FieldsFunc[T any] func(value *T) []Field

type adapterKey struct {
	format Format
	target reflect.Type
}

var adapters = struct {
	sync.RWMutex
	entries map[adapterKey]func(pointer any) []Field
}{entries: make(map[adapterKey]func(pointer any) []Field)}

// RegisterAdapter makes T serializable as a record without modifying
// T. The adapter is registered for each listed format, or for every
// format when none are listed. Registering the same (format, type)
// pair twice replaces the earlier adapter.
//
// Register adapters from init functions: the registry is read on every
// encode and decode.
//
//	func init() {
//	    codec.RegisterAdapter(func(p *thirdparty.Point) []codec.Field {
//	        return []codec.Field{{Name: "x", Value: &p.X}, {Name: "y", Value: &p.Y}}
//	    })
//	}
func RegisterAdapter[T any](fields FieldsFunc[T], formats ...Format) {
	if fields == nil {
		panic("codec: RegisterAdapter called with nil FieldsFunc")
	}
	target := reflect.TypeFor[T]()
	if target.Kind() == reflect.Pointer {
		panic(fmt.Sprintf("codec: RegisterAdapter type %s must not be a pointer", target))
	}
	if len(formats) == 0 {
		formats = []Format{JSON, MsgPack}
	}
	erased := func(pointer any) []Field {
		return fields(pointer.(*T))
	}

	adapters.Lock()
	defer adapters.Unlock()
	for _, format := range formats {
		adapters.entries[adapterKey{format: format, target: target}] = erased
	}
}

// UnregisterAdapter removes the adapter for T in the listed formats,
// or in every format when none are listed.
func UnregisterAdapter[T any](formats ...Format) {
	target := reflect.TypeFor[T]()
	if len(formats) == 0 {
		formats = []Format{JSON, MsgPack}
	}
	adapters.Lock()
	defer adapters.Unlock()
	for _, format := range formats {
		delete(adapters.entries, adapterKey{format: format, target: target})
	}
}

func lookupAdapter(format Format, target reflect.Type) func(pointer any) []Field {
	adapters.RLock()
	defer adapters.RUnlock()
	return adapters.entries[adapterKey{format: format, target: target}]
}

// encodeFields returns the field list to encode value with, or false
// when value is not a record in format. value may be a record pointer,
// or a non-pointer value whose pointer type is a record (it is copied
// so the field pointers have something to point at; encoding only
// reads through them).
func encodeFields(format Format, value any) ([]Field, bool) {
	if value == nil {
		return nil, false
	}
	if record, ok := value.(Record); ok {
		if isNilPointer(value) {
			return nil, false
		}
		return record.Fields(), true
	}

	reflected := reflect.ValueOf(value)
	if reflected.Kind() == reflect.Pointer {
		if reflected.IsNil() {
			return nil, false
		}
		if adapter := lookupAdapter(format, reflected.Type().Elem()); adapter != nil {
			return adapter(value), true
		}
		return nil, false
	}

	pointerType := reflect.PointerTo(reflected.Type())
	adapter := lookupAdapter(format, reflected.Type())
	if adapter == nil && !pointerType.Implements(recordInterface) {
		return nil, false
	}
	copied := reflect.New(reflected.Type())
	copied.Elem().Set(reflected)
	if adapter != nil {
		return adapter(copied.Interface()), true
	}
	return copied.Interface().(Record).Fields(), true
}

// decodeFields returns the field list to decode into target, a
// pointer, or false when the pointee is not a record in format.
func decodeFields(format Format, target any) ([]Field, bool, error) {
	if record, ok := target.(Record); ok {
		fields, err := decodableFields(record)
		return fields, true, err
	}
	reflected := reflect.ValueOf(target)
	if reflected.Kind() != reflect.Pointer || reflected.IsNil() {
		return nil, false, nil
	}
	if adapter := lookupAdapter(format, reflected.Type().Elem()); adapter != nil {
		return adapter(target), true, nil
	}
	return nil, false, nil
}

// decodableFields returns record's fields if writing through them
// reaches record. A Fields method on a value receiver returns pointers
// into a copy, and decoding through them would silently drop every
// member.
func decodableFields(record Record) ([]Field, error) {
	targetType := reflect.TypeOf(record)
	if targetType.Kind() != reflect.Pointer {
		return nil, fmt.Errorf("cannot decode into %s: not a pointer", targetType)
	}
	if targetType.Elem().Implements(recordInterface) {
		return nil, fmt.Errorf("cannot decode into %s: Fields has a value receiver, "+
			"so its field pointers do not reach the value", targetType.Elem())
	}
	return record.Fields(), nil
}

var recordInterface = reflect.TypeFor[Record]()

func isNilPointer(value any) bool {
	reflected := reflect.ValueOf(value)
	return reflected.Kind() == reflect.Pointer && reflected.IsNil()
}

func checkField(field Field) error {
	if field.Value == nil || isNilPointer(field.Value) {
		return fmt.Errorf("field %q has no storage", field.Name)
	}
	if reflect.TypeOf(field.Value).Kind() != reflect.Pointer {
		return fmt.Errorf("field %q: value must be a pointer, got %T", field.Name, field.Value)
	}
	return nil
}
