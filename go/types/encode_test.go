// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func roundTrip(t *testing.T, v Value) Value {
	c := EncodeValue(v)
	got := DecodeValue(c)
	assert.True(t, v.Equals(got), "expected %v to round-trip, got %v", v, got)
	return got
}

func TestEncodeDecodePrimitives(t *testing.T) {
	roundTrip(t, Bool(true))
	roundTrip(t, Number(3.5))
	roundTrip(t, Number(-42))
	roundTrip(t, String("hello"))
	roundTrip(t, NewBlob([]byte("data")))
}

func TestEncodeDecodeList(t *testing.T) {
	roundTrip(t, NewList(Number(1), String("two"), Bool(true)))
}

func TestEncodeDecodeSet(t *testing.T) {
	roundTrip(t, NewSet(Number(1), Number(2), Number(3)))
}

func TestEncodeDecodeMap(t *testing.T) {
	roundTrip(t, NewMap(String("a"), Number(1), String("b"), Number(2)))
}

func TestEncodeDecodeStruct(t *testing.T) {
	roundTrip(t, NewStruct("Point", StructData{"x": Number(1), "y": Number(2)}))
}

func TestEncodeDecodeRef(t *testing.T) {
	target := String("target")
	r := NewRef(target)
	got := roundTrip(t, r)
	gotRef := got.(Ref)
	assert.Equal(t, target.Hash(), gotRef.TargetHash())
	assert.Equal(t, r.Height(), gotRef.Height())
}

func TestEncodeDecodeNestedType(t *testing.T) {
	ty := MakeStructType("Commit",
		StructField{Name: "value", Type: ValueType},
		StructField{Name: "parents", Type: MakeSetType(MakeRefType(MakeCycleType(0)))},
	)
	got := roundTrip(t, ty)
	gotTy := got.(*Type)
	assert.Equal(t, ty.Describe(), gotTy.Describe())
}

func TestEncodeValueAddressedByHash(t *testing.T) {
	v := String("addressed")
	c := EncodeValue(v)
	assert.Equal(t, v.Hash(), c.Hash())
}
