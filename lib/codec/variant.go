// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"reflect"
)

// Alternative describes one arm of a closed variant.
type Alternative struct {
	// Name is a diagnostic label. It never appears on the wire.
	Name string

	// New returns a pointer to a fresh zero value of the
	// alternative's type. The decoder fills it in and hands it to
	// [MutableVariant.Assign].
	New func() any
}

// Variant is a closed sum type: a value holding exactly one of a fixed,
// ordered list of alternatives.
type Variant interface {
	// Alternatives returns the alternative list. The list and its
	// order are part of the wire contract: the encoded index selects
	// an entry of this list.
	Alternatives() []Alternative

	// Active returns the zero-based index of the held alternative and
	// the held value.
	Active() (int, any)
}

// MutableVariant is a Variant that can be decoded into.
type MutableVariant interface {
	Variant

	// Assign stores the alternative at index. value is the pointer
	// returned by that alternative's New, after decoding.
	Assign(index int, value any) error
}

const (
	variantIndexKey = "index"
	variantValueKey = "value"
)

var variantType = reflect.TypeFor[Variant]()

// encodeVariant returns value as a Variant, copying non-pointer values
// whose pointer type implements the interface.
func encodeVariant(value any) (Variant, bool) {
	if value == nil {
		return nil, false
	}
	if variant, ok := value.(Variant); ok {
		if isNilPointer(value) {
			return nil, false
		}
		return variant, true
	}
	reflected := reflect.ValueOf(value)
	if reflected.Kind() == reflect.Pointer || !reflect.PointerTo(reflected.Type()).Implements(variantType) {
		return nil, false
	}
	copied := reflect.New(reflected.Type())
	copied.Elem().Set(reflected)
	return copied.Interface().(Variant), true
}

// activeAlternative validates the index a variant reports for itself.
func activeAlternative(variant Variant) (int, any, error) {
	index, value := variant.Active()
	if count := len(variant.Alternatives()); index < 0 || index >= count {
		return 0, nil, &InvalidVariantIndexError{Index: int64(index), Alternatives: count}
	}
	return index, value, nil
}

// alternativeTarget returns the decode target for the alternative at
// index, or an [InvalidVariantIndexError] when no such alternative
// exists.
func alternativeTarget(variant MutableVariant, index int64) (any, error) {
	alternatives := variant.Alternatives()
	if index < 0 || index >= int64(len(alternatives)) {
		return nil, &InvalidVariantIndexError{Index: index, Alternatives: len(alternatives)}
	}
	alternative := alternatives[index]
	if alternative.New == nil {
		return nil, fmt.Errorf("variant alternative %d (%s) has no constructor", index, alternative.Name)
	}
	target := alternative.New()
	if target == nil || reflect.TypeOf(target).Kind() != reflect.Pointer || isNilPointer(target) {
		return nil, fmt.Errorf("variant alternative %d (%s): constructor must return a non-nil pointer, got %T",
			index, alternative.Name, target)
	}
	return target, nil
}
