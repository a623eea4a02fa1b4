// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"reflect"
	"testing"
)

func TestJSONMissingFieldsKeepDefaults(t *testing.T) {
	decoded, err := Deserialize[settings]([]byte(`J{"mode":"slow"}`))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	want := settings{Retries: 3, Mode: "slow"}
	if decoded != want {
		t.Errorf("Deserialize = %+v, want %+v", decoded, want)
	}
}

func TestJSONMissingFieldsWithoutDefaulter(t *testing.T) {
	decoded, err := Deserialize[sample]([]byte(`J{"name":"only"}`))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !reflect.DeepEqual(decoded, sample{Name: "only"}) {
		t.Errorf("Deserialize = %+v, want only the name set", decoded)
	}
}

func TestJSONIgnoresUnknownMembers(t *testing.T) {
	decoded, err := Deserialize[sample]([]byte(`J{"count":2,"colour":"blue","nested":{"a":[1]}}`))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if decoded.Count != 2 {
		t.Errorf("Count = %d, want 2", decoded.Count)
	}
}

func TestJSONRecordRequiresObject(t *testing.T) {
	for _, payload := range []string{`[1,"a",[]]`, `"text"`, `12`, `null`} {
		if _, err := Deserialize[sample]([]byte("J" + payload)); !errors.Is(err, ErrCannotDeserialize) {
			t.Errorf("Deserialize(%s) error = %v, want ErrCannotDeserialize", payload, err)
		}
	}
}

func TestMsgpackArityMismatch(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		got  int
	}{
		{"too few", []byte{'M', 0x92, 0x03, 0xa3, 'a', 'b', 'c'}, 2},
		{"too many", []byte{'M', 0x94, 0x03, 0xa0, 0xc0, 0x01}, 4},
		{"empty", []byte{'M', 0x90}, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Deserialize[sample](test.data)
			if !errors.Is(err, ErrCannotDeserialize) {
				t.Fatalf("Deserialize error = %v, want ErrCannotDeserialize", err)
			}
			var arityError *ArityError
			if !errors.As(err, &arityError) {
				t.Fatalf("Deserialize error = %v, want *ArityError", err)
			}
			if arityError.Want != 3 || arityError.Got != test.got {
				t.Errorf("ArityError = %+v, want {Want:3 Got:%d}", *arityError, test.got)
			}
		})
	}
}

func TestMsgpackRecordFromMapRejected(t *testing.T) {
	// {"count": 1}: a map where a positional array is required.
	data := []byte{'M', 0x81, 0xa5, 'c', 'o', 'u', 'n', 't', 0x01}
	if _, err := Deserialize[sample](data); !errors.Is(err, ErrCannotDeserialize) {
		t.Errorf("Deserialize error = %v, want ErrCannotDeserialize", err)
	}
}

func TestMsgpackDefaultsOverwritten(t *testing.T) {
	data, err := Serialize(settings{Retries: 0, Mode: ""}, MsgPack)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	decoded, err := Deserialize[settings](data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if decoded != (settings{}) {
		t.Errorf("Deserialize = %+v, want every field taken from the message", decoded)
	}
}

func TestNestedRecordsAndVariants(t *testing.T) {
	original := batch{
		Label: "calibration",
		Samples: []sample{
			{Count: 1, Name: "a", Values: []float64{0.5}},
			{Count: 2, Name: "b"},
		},
		Origin: Second[int64]("lab-3"),
	}
	for _, format := range Formats() {
		t.Run(format.String(), func(t *testing.T) {
			data, err := Serialize(&original, format)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			decoded, err := Deserialize[batch](data)
			if err != nil {
				t.Fatalf("Deserialize: %v", err)
			}
			if !reflect.DeepEqual(decoded, original) {
				t.Errorf("roundtrip mismatch:\n got %+v\nwant %+v", decoded, original)
			}
		})
	}
}

func TestNestedJSONLayout(t *testing.T) {
	original := batch{
		Label:   "x",
		Samples: []sample{{Count: 1, Name: "a", Values: []float64{0.5}}},
		Origin:  First[int64, string](7),
	}
	data, err := Serialize(original, JSON)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := `J{"label":"x","samples":[{"count":1,"name":"a","values":[0.5]}],"origin":{"index":0,"value":7}}`
	if string(data) != want {
		t.Errorf("Serialize =\n%s\nwant\n%s", data, want)
	}
}

func TestNestedRecordTolerance(t *testing.T) {
	// Records inside slices decode with the same tolerant semantics.
	data := []byte(`J{"samples":[{"name":"a"},{"count":4}]}`)
	decoded, err := Deserialize[batch](data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	want := []sample{{Name: "a"}, {Count: 4}}
	if !reflect.DeepEqual(decoded.Samples, want) {
		t.Errorf("Samples = %+v, want %+v", decoded.Samples, want)
	}
	if index := decoded.Origin.Index(); index != 0 {
		t.Errorf("absent variant has index %d, want 0", index)
	}
}

func TestNestedArityMismatch(t *testing.T) {
	// One sample with two elements instead of three.
	data := []byte{
		'M', 0x93,
		0xa1, 'x', // label
		0x91, 0x92, 0x01, 0xa1, 'a', // samples
		0x92, 0x00, 0x07, // origin
	}
	_, err := Deserialize[batch](data)
	var arityError *ArityError
	if !errors.As(err, &arityError) {
		t.Fatalf("Deserialize error = %v, want *ArityError", err)
	}
	if arityError.Want != 3 || arityError.Got != 2 {
		t.Errorf("ArityError = %+v, want {Want:3 Got:2}", *arityError)
	}
}

func TestAdapter(t *testing.T) {
	RegisterAdapter(geoPointFields)
	t.Cleanup(func() { UnregisterAdapter[geoPoint]() })

	original := geoPoint{Latitude: 52.5, Longitude: 13.25}

	data, err := Serialize(original, JSON)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if want := `J{"lat":52.5,"lon":13.25}`; string(data) != want {
		t.Errorf("Serialize = %s, want %s", data, want)
	}

	for _, format := range Formats() {
		data, err := Serialize(&original, format)
		if err != nil {
			t.Fatalf("Serialize(%v): %v", format, err)
		}
		decoded, err := Deserialize[geoPoint](data)
		if err != nil {
			t.Fatalf("Deserialize(%v): %v", format, err)
		}
		if decoded != original {
			t.Errorf("%v: got %+v, want %+v", format, decoded, original)
		}
	}

	// Adapter records are arity-checked like intrusive ones.
	if _, err := Deserialize[geoPoint]([]byte{'M', 0x91, 0x01}); !errors.Is(err, ErrCannotDeserialize) {
		t.Errorf("Deserialize error = %v, want ErrCannotDeserialize", err)
	}
}

func TestAdapterPerFormat(t *testing.T) {
	RegisterAdapter(geoPointFields, JSON)
	t.Cleanup(func() { UnregisterAdapter[geoPoint]() })

	data, err := Serialize(geoPoint{Latitude: 1, Longitude: 2}, JSON)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if want := `J{"lat":1,"lon":2}`; string(data) != want {
		t.Errorf("JSON = %s, want %s", data, want)
	}

	// Without a MessagePack adapter the struct goes to the library.
	data, err = Serialize(geoPoint{Latitude: 1, Longitude: 2}, MsgPack)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	decoded, err := Deserialize[geoPoint](data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if decoded != (geoPoint{Latitude: 1, Longitude: 2}) {
		t.Errorf("Deserialize = %+v", decoded)
	}
}

func TestUnregisterAdapter(t *testing.T) {
	RegisterAdapter(geoPointFields)
	UnregisterAdapter[geoPoint]()

	data, err := Serialize(geoPoint{Latitude: 1}, JSON)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if want := `J{"Latitude":1,"Longitude":0}`; string(data) != want {
		t.Errorf("Serialize = %s, want %s", data, want)
	}
}

func TestRegisterAdapterRejectsPointerType(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("RegisterAdapter with a pointer type should panic")
		}
	}()
	RegisterAdapter(func(point **geoPoint) []Field { return nil })
}

func TestFieldWithoutStorage(t *testing.T) {
	_, err := Serialize(&missingStorage{}, JSON)
	var serializeError *SerializeError
	if !errors.As(err, &serializeError) {
		t.Errorf("Serialize error = %v, want *SerializeError", err)
	}
}

type missingStorage struct{}

func (*missingStorage) Fields() []Field {
	return []Field{{Name: "ghost"}}
}

func TestAdapterInsideContainers(t *testing.T) {
	RegisterAdapter(geoPointFields)
	t.Cleanup(func() { UnregisterAdapter[geoPoint]() })

	original := route{
		Stops:   []geoPoint{{Latitude: 1, Longitude: 2}},
		Home:    geoPoint{Latitude: 3, Longitude: 4},
		Named:   map[string]*geoPoint{"work": {Latitude: 5, Longitude: 6}, "none": nil},
		Corners: [2]geoPoint{{Latitude: 7}, {Longitude: 8}},
	}

	data, err := Serialize(&original, JSON)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := `J{"stops":[{"lat":1,"lon":2}],"home":{"lat":3,"lon":4},` +
		`"named":{"none":null,"work":{"lat":5,"lon":6}},` +
		`"corners":[{"lat":7,"lon":0},{"lat":0,"lon":8}]}`
	if string(data) != want {
		t.Errorf("Serialize = %s, want %s", data, want)
	}

	for _, format := range []Format{JSON, MsgPack} {
		t.Run(format.String(), func(t *testing.T) {
			data, err := Serialize(&original, format)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			decoded, err := Deserialize[route](data)
			if err != nil {
				t.Fatalf("Deserialize: %v", err)
			}
			if !reflect.DeepEqual(decoded, original) {
				t.Errorf("round trip = %+v, want %+v", decoded, original)
			}
		})
	}
}

func TestAdapterInsideTopLevelSlice(t *testing.T) {
	RegisterAdapter(geoPointFields)
	t.Cleanup(func() { UnregisterAdapter[geoPoint]() })

	decoded, err := Deserialize[[]geoPoint]([]byte(`J[{"lat":1,"lon":2},{"lat":3}]`))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	want := []geoPoint{{Latitude: 1, Longitude: 2}, {Latitude: 3}}
	if !reflect.DeepEqual(decoded, want) {
		t.Errorf("Deserialize = %+v, want %+v", decoded, want)
	}

	if _, err := Deserialize[[]geoPoint]([]byte(`J{"lat":1}`)); !errors.Is(err, ErrCannotDeserialize) {
		t.Errorf("object into slice error = %v, want ErrCannotDeserialize", err)
	}

	empty, err := Deserialize[[]geoPoint]([]byte(`Jnull`))
	if err != nil || empty != nil {
		t.Errorf("Deserialize(null) = %v, %v, want nil slice", empty, err)
	}
}

func TestValueReceiverFieldsRejectedOnDecode(t *testing.T) {
	data, err := Serialize(valueFields{N: 7}, JSON)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if want := `J{"n":7}`; string(data) != want {
		t.Errorf("Serialize = %s, want %s", data, want)
	}

	for _, message := range [][]byte{[]byte(`J{"n":7}`), {'M', 0x91, 0x07}} {
		decoded, err := Deserialize[valueFields](message)
		if !errors.Is(err, ErrCannotDeserialize) {
			t.Errorf("Deserialize(%q) = %+v, %v, want ErrCannotDeserialize", message, decoded, err)
		}
	}
}
