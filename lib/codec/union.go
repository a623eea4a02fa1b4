// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// Either holds a value of type A (index 0) or of type B (index 1). The
// zero Either holds the zero A.
type Either[A, B any] struct {
	index int
	a     A
	b     B
}

// First returns an Either holding a.
func First[A, B any](a A) Either[A, B] {
	return Either[A, B]{index: 0, a: a}
}

// Second returns an Either holding b.
func Second[A, B any](b B) Either[A, B] {
	return Either[A, B]{index: 1, b: b}
}

// Index returns 0 when the Either holds an A and 1 when it holds a B.
func (e Either[A, B]) Index() int { return e.index }

// First returns the held A and whether the Either holds one.
func (e Either[A, B]) First() (A, bool) { return e.a, e.index == 0 }

// Second returns the held B and whether the Either holds one.
func (e Either[A, B]) Second() (B, bool) { return e.b, e.index == 1 }

func (e Either[A, B]) Alternatives() []Alternative {
	return []Alternative{
		alternativeOf[A](),
		alternativeOf[B](),
	}
}

func (e Either[A, B]) Active() (int, any) {
	if e.index == 1 {
		return 1, e.b
	}
	return 0, e.a
}

func (e *Either[A, B]) Assign(index int, value any) error {
	switch index {
	case 0:
		return assignAlternative(value, index, func(a A) { *e = First[A, B](a) })
	case 1:
		return assignAlternative(value, index, func(b B) { *e = Second[A](b) })
	default:
		return &InvalidVariantIndexError{Index: int64(index), Alternatives: 2}
	}
}

func (e Either[A, B]) String() string {
	index, value := e.Active()
	return fmt.Sprintf("Either[%d](%v)", index, value)
}

func (e Either[A, B]) MarshalJSON() ([]byte, error) {
	return MarshalVariantJSON(e)
}

func (e *Either[A, B]) UnmarshalJSON(data []byte) error {
	return UnmarshalVariantJSON(data, e)
}

func (e Either[A, B]) EncodeMsgpack(encoder *msgpack.Encoder) error {
	return EncodeVariantMsgpack(encoder, e)
}

func (e *Either[A, B]) DecodeMsgpack(decoder *msgpack.Decoder) error {
	return DecodeVariantMsgpack(decoder, e)
}

// OneOf3 holds a value of type A (index 0), B (index 1) or C (index
// 2). The zero OneOf3 holds the zero A.
type OneOf3[A, B, C any] struct {
	index int
	a     A
	b     B
	c     C
}

// Alt0 returns a OneOf3 holding a.
func Alt0[A, B, C any](a A) OneOf3[A, B, C] { return OneOf3[A, B, C]{index: 0, a: a} }

// Alt1 returns a OneOf3 holding b.
func Alt1[A, B, C any](b B) OneOf3[A, B, C] { return OneOf3[A, B, C]{index: 1, b: b} }

// Alt2 returns a OneOf3 holding c.
func Alt2[A, B, C any](c C) OneOf3[A, B, C] { return OneOf3[A, B, C]{index: 2, c: c} }

func (o OneOf3[A, B, C]) Index() int      { return o.index }
func (o OneOf3[A, B, C]) Alt0() (A, bool) { return o.a, o.index == 0 }
func (o OneOf3[A, B, C]) Alt1() (B, bool) { return o.b, o.index == 1 }
func (o OneOf3[A, B, C]) Alt2() (C, bool) { return o.c, o.index == 2 }

func (o OneOf3[A, B, C]) Alternatives() []Alternative {
	return []Alternative{
		alternativeOf[A](),
		alternativeOf[B](),
		alternativeOf[C](),
	}
}

func (o OneOf3[A, B, C]) Active() (int, any) {
	switch o.index {
	case 1:
		return 1, o.b
	case 2:
		return 2, o.c
	default:
		return 0, o.a
	}
}

func (o *OneOf3[A, B, C]) Assign(index int, value any) error {
	switch index {
	case 0:
		return assignAlternative(value, index, func(a A) { *o = Alt0[A, B, C](a) })
	case 1:
		return assignAlternative(value, index, func(b B) { *o = Alt1[A, B, C](b) })
	case 2:
		return assignAlternative(value, index, func(c C) { *o = Alt2[A, B](c) })
	default:
		return &InvalidVariantIndexError{Index: int64(index), Alternatives: 3}
	}
}

func (o OneOf3[A, B, C]) String() string {
	index, value := o.Active()
	return fmt.Sprintf("OneOf3[%d](%v)", index, value)
}

func (o OneOf3[A, B, C]) MarshalJSON() ([]byte, error) {
	return MarshalVariantJSON(o)
}

func (o *OneOf3[A, B, C]) UnmarshalJSON(data []byte) error {
	return UnmarshalVariantJSON(data, o)
}

func (o OneOf3[A, B, C]) EncodeMsgpack(encoder *msgpack.Encoder) error {
	return EncodeVariantMsgpack(encoder, o)
}

func (o *OneOf3[A, B, C]) DecodeMsgpack(decoder *msgpack.Decoder) error {
	return DecodeVariantMsgpack(decoder, o)
}

func alternativeOf[T any]() Alternative {
	return Alternative{
		Name: reflect.TypeFor[T]().String(),
		New:  func() any { return new(T) },
	}
}

// assignAlternative unwraps the *T produced by an alternative's New and
// passes the value to set.
func assignAlternative[T any](value any, index int, set func(T)) error {
	pointer, ok := value.(*T)
	if !ok || pointer == nil {
		return fmt.Errorf("variant alternative %d: expected *%s, got %T", index, reflect.TypeFor[T](), value)
	}
	set(*pointer)
	return nil
}
