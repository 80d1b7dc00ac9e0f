// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"encoding/binary"

	"github.com/nomsdb/noms/go/d"
)

const initialBufferSize = 2048

// binaryNomsWriter accumulates an encoded Value's bytes. It grows its
// buffer geometrically and is never safe for concurrent use -- encoding
// happens on the single cooperative-scheduler goroutine per spec §5.
type binaryNomsWriter struct {
	buff   []byte
	offset int
}

func newBinaryNomsWriter() *binaryNomsWriter {
	return &binaryNomsWriter{make([]byte, initialBufferSize), 0}
}

func (w *binaryNomsWriter) data() []byte {
	return w.buff[:w.offset]
}

func (w *binaryNomsWriter) ensureCapacity(n int) {
	length := len(w.buff)
	if w.offset+n <= length {
		return
	}
	for length < w.offset+n {
		length *= 2
	}
	old := w.buff
	w.buff = make([]byte, length)
	copy(w.buff, old[:w.offset])
}

func (w *binaryNomsWriter) writeBytes(v []byte) {
	w.ensureCapacity(len(v))
	copy(w.buff[w.offset:], v)
	w.offset += len(v)
}

func (w *binaryNomsWriter) writeUint8(v uint8) {
	w.ensureCapacity(1)
	w.buff[w.offset] = v
	w.offset++
}

func (w *binaryNomsWriter) writeUint32(v uint32) {
	w.ensureCapacity(4)
	binary.BigEndian.PutUint32(w.buff[w.offset:], v)
	w.offset += 4
}

func (w *binaryNomsWriter) writeUint64(v uint64) {
	w.ensureCapacity(8)
	binary.BigEndian.PutUint64(w.buff[w.offset:], v)
	w.offset += 8
}

// writeString writes a length-prefixed (uint32 BE) UTF-8 string.
func (w *binaryNomsWriter) writeString(v string) {
	w.writeUint32(uint32(len(v)))
	w.writeBytes([]byte(v))
}

// writeBool writes a single 0/1 byte.
func (w *binaryNomsWriter) writeBool(v bool) {
	if v {
		w.writeUint8(1)
	} else {
		w.writeUint8(0)
	}
}

// zigzagFold folds a signed magnitude into a single unsigned value whose
// low bit carries the sign (spec §6: even = non-negative, odd = negative,
// magnitude = shift-right-by-one): non-negative n folds to 2n; negative n
// folds to 2|n|-1, so the folded sequence for ...,-2,-1,0,1,2,... is
// ...,3,1,0,2,4,... with no gaps.
func zigzagFold(i int64) uint64 {
	if i >= 0 {
		return uint64(i) << 1
	}
	return uint64(-i)<<1 - 1
}

func zigzagUnfold(u uint64) int64 {
	if u&1 == 0 {
		return int64(u >> 1)
	}
	return -int64((u + 1) >> 1)
}

// writeNumber writes n using the signed varint scheme (spec §6): the
// zigzag-folded magnitude is split into 7-bit little-endian groups, high
// bit of each byte set iff another group follows.
func (w *binaryNomsWriter) writeNumber(n float64) {
	u := zigzagFold(int64(n))
	for {
		b := byte(u & 0x7f)
		u >>= 7
		if u > 0 {
			b |= 0x80
		}
		w.writeUint8(b)
		if u == 0 {
			break
		}
	}
}

// binaryNomsReader reads back what binaryNomsWriter wrote. buff is a
// borrowed slice -- the reader never copies or mutates it.
type binaryNomsReader struct {
	buff   []byte
	offset int
}

func newBinaryNomsReader(buff []byte) *binaryNomsReader {
	return &binaryNomsReader{buff, 0}
}

func (r *binaryNomsReader) atEnd() bool {
	return r.offset >= len(r.buff)
}

func (r *binaryNomsReader) readBytes(n int) []byte {
	d.PanicIfTrue(r.offset+n > len(r.buff), "read past end of buffer")
	v := r.buff[r.offset : r.offset+n]
	r.offset += n
	return v
}

func (r *binaryNomsReader) readUint8() uint8 {
	v := r.buff[r.offset]
	r.offset++
	return v
}

func (r *binaryNomsReader) readUint32() uint32 {
	v := binary.BigEndian.Uint32(r.readBytes(4))
	return v
}

func (r *binaryNomsReader) readUint64() uint64 {
	v := binary.BigEndian.Uint64(r.readBytes(8))
	return v
}

func (r *binaryNomsReader) readString() string {
	n := r.readUint32()
	return string(r.readBytes(int(n)))
}

func (r *binaryNomsReader) readBool() bool {
	return r.readUint8() != 0
}

func (r *binaryNomsReader) readNumber() float64 {
	var u uint64
	var shift uint
	for {
		b := r.readUint8()
		u |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return float64(zigzagUnfold(u))
}

// encodingLength returns the number of bytes writeNumber would emit for n,
// per spec §6: 1 + floor(log128(folded magnitude)).
func encodingLength(n float64) int {
	u := zigzagFold(int64(n))
	length := 1
	u >>= 7
	for u > 0 {
		length++
		u >>= 7
	}
	return length
}
