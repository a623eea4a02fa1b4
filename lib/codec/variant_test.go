// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"reflect"
	"testing"
)

func TestVariantRoundtrip(t *testing.T) {
	tests := []struct {
		name  string
		value Either[pointA, pointB]
		index int
	}{
		{"first", First[pointA, pointB](pointA{X: 1, Y: -2}), 0},
		{"second", Second[pointA](pointB{Label: "b", Scale: 0.25}), 1},
	}
	for _, test := range tests {
		for _, format := range Formats() {
			t.Run(test.name+"/"+format.String(), func(t *testing.T) {
				data, err := Serialize(test.value, format)
				if err != nil {
					t.Fatalf("Serialize: %v", err)
				}
				decoded, err := Deserialize[Either[pointA, pointB]](data)
				if err != nil {
					t.Fatalf("Deserialize: %v", err)
				}
				if decoded.Index() != test.index {
					t.Errorf("Index() = %d, want %d", decoded.Index(), test.index)
				}
				if decoded != test.value {
					t.Errorf("roundtrip mismatch: got %v, want %v", decoded, test.value)
				}
			})
		}
	}
}

func TestVariantAccessors(t *testing.T) {
	value := Second[pointA](pointB{Label: "z"})
	if _, ok := value.First(); ok {
		t.Error("First() reports a value on an Either holding its second alternative")
	}
	held, ok := value.Second()
	if !ok || held.Label != "z" {
		t.Errorf("Second() = %+v, %v", held, ok)
	}

	var zero Either[int, string]
	if index, active := zero.Active(); index != 0 || active != 0 {
		t.Errorf("zero Either Active() = %d, %v; want 0, 0", index, active)
	}
}

func TestVariantJSONLayout(t *testing.T) {
	data, err := Serialize(Second[pointA](pointB{Label: "b", Scale: 2}), JSON)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := `J{"index":1,"value":{"label":"b","scale":2}}`
	if string(data) != want {
		t.Errorf("Serialize = %s, want %s", data, want)
	}
}

func TestVariantMsgpackLayout(t *testing.T) {
	data, err := Serialize(First[pointA, pointB](pointA{X: 1, Y: 2}), MsgPack)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := []byte{'M', 0x92, 0x00, 0x92, 0x01, 0x02}
	if string(data) != string(want) {
		t.Errorf("Serialize = % x, want % x", data, want)
	}
}

func TestVariantInvalidIndex(t *testing.T) {
	messages := map[string][]byte{
		"json index 5":     []byte(`J{"index":5,"value":{"x":1,"y":2}}`),
		"json index -1":    []byte(`J{"index":-1,"value":0}`),
		"msgpack index 5":  {'M', 0x92, 0x05, 0x92, 0x01, 0x02},
		"msgpack index -1": {'M', 0x92, 0xff, 0xc0},
	}
	for name, data := range messages {
		t.Run(name, func(t *testing.T) {
			decoded, err := Deserialize[Either[pointA, pointB]](data)
			var indexError *InvalidVariantIndexError
			if !errors.As(err, &indexError) {
				t.Fatalf("Deserialize error = %v, want *InvalidVariantIndexError", err)
			}
			if indexError.Alternatives != 2 {
				t.Errorf("Alternatives = %d, want 2", indexError.Alternatives)
			}
			if !errors.Is(err, ErrCannotDeserialize) {
				t.Errorf("Deserialize error = %v, want it to match ErrCannotDeserialize", err)
			}
			if decoded != (Either[pointA, pointB]{}) {
				t.Errorf("failed Deserialize returned %v", decoded)
			}
		})
	}
}

func TestVariantMalformedEnvelope(t *testing.T) {
	messages := map[string][]byte{
		"json array":          []byte(`J[0,{"x":1}]`),
		"json missing value":  []byte(`J{"index":0}`),
		"json missing index":  []byte(`J{"value":{"x":1}}`),
		"json string index":   []byte(`J{"index":"0","value":{"x":1}}`),
		"json fraction index": []byte(`J{"index":0.5,"value":{"x":1}}`),
		"msgpack one element": {'M', 0x91, 0x00},
		"msgpack three":       {'M', 0x93, 0x00, 0x92, 0x01, 0x02, 0xc0},
		"msgpack scalar":      {'M', 0x05},
		"msgpack string index": {'M', 0x92, 0xa1, '0', 0x92, 0x01, 0x02},
	}
	for name, data := range messages {
		t.Run(name, func(t *testing.T) {
			_, err := Deserialize[Either[pointA, pointB]](data)
			if !errors.Is(err, ErrMalformedVariantEnvelope) {
				t.Fatalf("Deserialize error = %v, want ErrMalformedVariantEnvelope", err)
			}
			if !errors.Is(err, ErrCannotDeserialize) {
				t.Errorf("Deserialize error = %v, want it to match ErrCannotDeserialize", err)
			}
		})
	}
}

func TestVariantExtraMembersIgnored(t *testing.T) {
	data := []byte(`J{"value":{"x":4},"comment":"ignored","index":0}`)
	decoded, err := Deserialize[Either[pointA, pointB]](data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if held, ok := decoded.First(); !ok || held.X != 4 {
		t.Errorf("Deserialize = %v, want first alternative with X=4", decoded)
	}
}

func TestVariantPayloadMismatch(t *testing.T) {
	data := []byte(`J{"index":1,"value":[1,2]}`)
	_, err := Deserialize[Either[pointA, pointB]](data)
	if !errors.Is(err, ErrCannotDeserialize) {
		t.Fatalf("Deserialize error = %v, want ErrCannotDeserialize", err)
	}
	if errors.Is(err, ErrMalformedVariantEnvelope) {
		t.Error("a well-formed envelope with a bad payload is not a malformed envelope")
	}
}

func TestOneOf3Roundtrip(t *testing.T) {
	values := []OneOf3[int64, string, sample]{
		Alt0[int64, string, sample](-9),
		Alt1[int64, string, sample]("two"),
		Alt2[int64, string](sample{Count: 3, Name: "three", Values: []float64{3}}),
	}
	for _, format := range Formats() {
		for i, value := range values {
			data, err := Serialize(value, format)
			if err != nil {
				t.Fatalf("%v/%d Serialize: %v", format, i, err)
			}
			decoded, err := Deserialize[OneOf3[int64, string, sample]](data)
			if err != nil {
				t.Fatalf("%v/%d Deserialize: %v", format, i, err)
			}
			if decoded.Index() != i {
				t.Errorf("%v/%d: Index() = %d", format, i, decoded.Index())
			}
			if !reflect.DeepEqual(decoded, value) {
				t.Errorf("%v/%d: got %v, want %v", format, i, decoded, value)
			}
		}
	}
}

func TestOneOf3RecordPayloadIsPositional(t *testing.T) {
	value := Alt2[int64, string](sample{Count: 1, Name: "a"})
	data, err := Serialize(value, MsgPack)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := []byte{'M', 0x92, 0x02, 0x93, 0x01, 0xa1, 'a', 0xc0}
	if string(data) != string(want) {
		t.Errorf("Serialize = % x, want % x", data, want)
	}
}

func TestVariantSlices(t *testing.T) {
	original := []Either[int64, string]{
		First[int64, string](1),
		Second[int64]("two"),
	}

	data, err := Serialize(original, JSON)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := `J[{"index":0,"value":1},{"index":1,"value":"two"}]`
	if string(data) != want {
		t.Errorf("Serialize = %s, want %s", data, want)
	}

	for _, format := range Formats() {
		data, err := Serialize(original, format)
		if err != nil {
			t.Fatalf("Serialize(%v): %v", format, err)
		}
		decoded, err := Deserialize[[]Either[int64, string]](data)
		if err != nil {
			t.Fatalf("Deserialize(%v): %v", format, err)
		}
		if !reflect.DeepEqual(decoded, original) {
			t.Errorf("%v: got %v, want %v", format, decoded, original)
		}
	}

	// An out-of-range index deep inside a slice is still reported.
	_, err = Deserialize[[]Either[int64, string]]([]byte(`J[{"index":0,"value":1},{"index":2,"value":0}]`))
	var indexError *InvalidVariantIndexError
	if !errors.As(err, &indexError) || indexError.Index != 2 {
		t.Errorf("Deserialize error = %v, want *InvalidVariantIndexError for index 2", err)
	}
}

func TestSerializeVariantWithBadActiveIndex(t *testing.T) {
	for _, format := range Formats() {
		_, err := Serialize(brokenVariant{}, format)
		var indexError *InvalidVariantIndexError
		if !errors.As(err, &indexError) {
			t.Errorf("%v: Serialize error = %v, want *InvalidVariantIndexError", format, err)
		}
	}
}
