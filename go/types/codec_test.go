// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinaryNomsWriterReaderUint32(t *testing.T) {
	w := newBinaryNomsWriter()
	w.writeUint32(0xdeadbeef)
	r := newBinaryNomsReader(w.data())
	assert.Equal(t, uint32(0xdeadbeef), r.readUint32())
	assert.True(t, r.atEnd())
}

func TestBinaryNomsWriterReaderUint64(t *testing.T) {
	w := newBinaryNomsWriter()
	w.writeUint64(0x0102030405060708)
	r := newBinaryNomsReader(w.data())
	assert.Equal(t, uint64(0x0102030405060708), r.readUint64())
}

func TestBinaryNomsWriterGrows(t *testing.T) {
	w := newBinaryNomsWriter()
	big := make([]byte, initialBufferSize*3)
	for i := range big {
		big[i] = byte(i)
	}
	w.writeBytes(big)
	assert.Equal(t, big, w.data())
}

func TestNumberRoundTrip(t *testing.T) {
	for _, n := range []float64{0, 1, -1, 63, 64, -64, -65, 1 << 20, -(1 << 20), 1 << 40} {
		w := newBinaryNomsWriter()
		w.writeNumber(n)
		r := newBinaryNomsReader(w.data())
		assert.Equal(t, n, r.readNumber(), "round-trip %v", n)
	}
}

func TestNumberEncodingBoundaryVectors(t *testing.T) {
	cases := []struct {
		n    float64
		want []byte
	}{
		{0, []byte{0}},
		{1, []byte{2}},
		{-1, []byte{1}},
		{63, []byte{126}},
		{127, []byte{254, 1}},
	}
	for _, c := range cases {
		w := newBinaryNomsWriter()
		w.writeNumber(c.n)
		assert.Equal(t, c.want, w.data(), "encode(%v)", c.n)

		r := newBinaryNomsReader(w.data())
		assert.Equal(t, c.n, r.readNumber(), "decode(encode(%v))", c.n)
	}
}

func TestEncodingLengthMatchesWriter(t *testing.T) {
	for _, n := range []float64{0, 1, -1, 100, -100, 1 << 20, -(1 << 30)} {
		w := newBinaryNomsWriter()
		w.writeNumber(n)
		assert.Equal(t, encodingLength(n), len(w.data()), "n=%v", n)
	}
}

func TestStringRoundTrip(t *testing.T) {
	w := newBinaryNomsWriter()
	w.writeString("hello, world")
	r := newBinaryNomsReader(w.data())
	assert.Equal(t, "hello, world", r.readString())
}
