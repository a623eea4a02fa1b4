// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec converts typed values to self-describing byte messages
// and back.
//
// Two wire formats are supported and either one can carry any value:
//
//   - JSON ([JSON], marker 'J'): human-readable and tolerant. Records
//     are objects keyed by field name; a decoder that does not find a
//     member leaves that field at its current (default) value.
//   - MessagePack ([MsgPack], marker 'M'): compact and strict. Records
//     are positional arrays whose length must match the field count.
//
// Every message starts with one marker byte naming its format, so a
// receiver never needs to know which format the sender chose:
//
//	data, err := codec.Serialize(value, codec.MsgPack)
//	decoded, err := codec.Deserialize[MyType](data)
//
// # Records
//
// A record exposes an ordered field list. The usual way is to implement
// [Record] on the type:
//
//	type Sample struct {
//	    Count  int
//	    Name   string
//	    Values []float64
//	}
//
//	func (s *Sample) Fields() []codec.Field {
//	    return []codec.Field{
//	        {Name: "count", Value: &s.Count},
//	        {Name: "name", Value: &s.Name},
//	        {Name: "values", Value: &s.Values},
//	    }
//	}
//
// Types from other packages are made serializable without touching them
// through [RegisterAdapter]. Records that appear inside slices or maps
// should also implement the format libraries' marshaler interfaces; the
// [MarshalRecordJSON] family of helpers makes each of those a one-line
// method.
//
// Values that are neither records nor variants are handed to the format
// library unchanged (encoding/json, vmihailenco/msgpack with json struct
// tags and array-encoded structs).
//
// # Variants
//
// A closed sum type implements [Variant] (and [MutableVariant] on its
// pointer for decoding). It is always encoded as the pair (index,
// payload): a two-element MessagePack array, or the JSON object
// {"index": i, "value": payload}. [Either] and [OneOf3] cover the
// common cases.
//
// # Errors
//
// Every failure is a distinct kind: [UnknownFormatNameError],
// [UnknownFormatError], [UnknownFormatByteError], [ErrEmptyMessage],
// [ErrMalformedVariantEnvelope], [InvalidVariantIndexError],
// [ArityError] and [DeserializeError]. Anything that goes wrong while
// parsing or converting a payload is reported as a [DeserializeError]
// wrapping the cause, so errors.Is(err, ErrCannotDeserialize) holds and
// errors.As still reaches the underlying kind.
//
// The package holds no mutable state apart from the adapter registry,
// which is meant to be filled from init functions. Serialize and
// Deserialize are safe for concurrent use.
package codec
