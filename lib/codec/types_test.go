// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "github.com/vmihailenco/msgpack/v5"

// sample is a record that declares its own fields.
type sample struct {
	Count  int
	Name   string
	Values []float64
}

func (s *sample) Fields() []Field {
	return []Field{
		{Name: "count", Value: &s.Count},
		{Name: "name", Value: &s.Name},
		{Name: "values", Value: &s.Values},
	}
}

// The marshaler hooks let a sample sit inside slices and maps.

func (s sample) MarshalJSON() ([]byte, error) { return MarshalRecordJSON(&s) }

func (s *sample) UnmarshalJSON(data []byte) error { return UnmarshalRecordJSON(data, s) }

func (s sample) EncodeMsgpack(encoder *msgpack.Encoder) error {
	return EncodeRecordMsgpack(encoder, &s)
}

func (s *sample) DecodeMsgpack(decoder *msgpack.Decoder) error {
	return DecodeRecordMsgpack(decoder, s)
}

// batch nests records and a variant inside a record.
type batch struct {
	Label   string
	Samples []sample
	Origin  Either[int64, string]
}

func (b *batch) Fields() []Field {
	return []Field{
		{Name: "label", Value: &b.Label},
		{Name: "samples", Value: &b.Samples},
		{Name: "origin", Value: &b.Origin},
	}
}

// settings has defaults that survive JSON messages omitting them.
type settings struct {
	Retries int
	Mode    string
}

func (s *settings) Fields() []Field {
	return []Field{
		{Name: "retries", Value: &s.Retries},
		{Name: "mode", Value: &s.Mode},
	}
}

func (s *settings) SetDefaults() {
	s.Retries = 3
	s.Mode = "fast"
}

// geoPoint stands in for a type from another package: it has no Fields
// method and is made serializable through an adapter.
type geoPoint struct {
	Latitude  float64
	Longitude float64
}

func geoPointFields(point *geoPoint) []Field {
	return []Field{
		{Name: "lat", Value: &point.Latitude},
		{Name: "lon", Value: &point.Longitude},
	}
}

// route holds adapted values both directly and inside containers.
type route struct {
	Stops   []geoPoint
	Home    geoPoint
	Named   map[string]*geoPoint
	Corners [2]geoPoint
}

func (r *route) Fields() []Field {
	return []Field{
		{Name: "stops", Value: &r.Stops},
		{Name: "home", Value: &r.Home},
		{Name: "named", Value: &r.Named},
		{Name: "corners", Value: &r.Corners},
	}
}

// valueFields declares Fields on the value receiver, so the pointers
// it hands out refer to a copy.
type valueFields struct {
	N int
}

func (v valueFields) Fields() []Field {
	return []Field{{Name: "n", Value: &v.N}}
}

// pointA and pointB are plain structs used as variant alternatives.
type pointA struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type pointB struct {
	Label string  `json:"label"`
	Scale float64 `json:"scale"`
}

// brokenVariant reports an active index outside its alternatives.
type brokenVariant struct{}

func (brokenVariant) Alternatives() []Alternative {
	return []Alternative{alternativeOf[int]()}
}

func (brokenVariant) Active() (int, any) { return 4, 0 }
