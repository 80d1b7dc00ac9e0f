// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"github.com/nomsdb/noms/go/chunks"
	"github.com/nomsdb/noms/go/d"
	"github.com/nomsdb/noms/go/hash"
)

// EncodeValue serializes v into a Chunk addressed by v's own Hash -- the
// single place where a Value becomes the bytes that ChunkStore deals in.
func EncodeValue(v Value) chunks.Chunk {
	w := newBinaryNomsWriter()
	encodeValue(w, v)
	return chunks.NewChunkWithHash(v.Hash(), w.data())
}

// DecodeValue deserializes the payload of c back into a Value. Every kind
// is self-describing: a Ref's target type is decoded from the chunk
// itself, with no store consulted.
func DecodeValue(c chunks.Chunk) Value {
	r := newBinaryNomsReader(c.Data())
	return decodeValue(r)
}

// hashOf returns the content hash of v's encoding, used by the primitive
// kinds (Bool, Number, String) to compute Hash() on demand rather than
// memoizing it.
func hashOf(v Value) hash.Hash {
	w := newBinaryNomsWriter()
	encodeValue(w, v)
	return hash.Of(w.data())
}

func encodeValue(w *binaryNomsWriter, v Value) {
	w.writeUint8(uint8(v.Kind()))
	switch t := v.(type) {
	case Bool:
		w.writeBool(bool(t))
	case Number:
		w.writeNumber(float64(t))
	case String:
		w.writeString(string(t))
	case Blob:
		w.writeUint32(uint32(len(t.buff)))
		w.writeBytes(t.buff)
	case Ref:
		w.writeBytes(t.TargetHash()[:])
		encodeType(w, t.TargetType())
		w.writeUint64(t.Height())
	case List:
		w.writeUint32(uint32(len(t.values)))
		for _, e := range t.values {
			encodeValue(w, e)
		}
	case Set:
		w.writeUint32(uint32(len(t.values)))
		for _, e := range t.values {
			encodeValue(w, e)
		}
	case Map:
		w.writeUint32(uint32(len(t.keys)))
		for i, k := range t.keys {
			encodeValue(w, k)
			encodeValue(w, t.values[i])
		}
	case Struct:
		w.writeString(t.name)
		w.writeUint32(uint32(len(t.fieldNames)))
		for i, name := range t.fieldNames {
			w.writeString(name)
			encodeValue(w, t.values[i])
		}
	case *Type:
		encodeType(w, t)
	default:
		d.Panic("cannot encode value of kind %s", v.Kind())
	}
}

func decodeValue(r *binaryNomsReader) Value {
	k := NomsKind(r.readUint8())
	switch k {
	case BoolKind:
		return Bool(r.readBool())
	case NumberKind:
		return Number(r.readNumber())
	case StringKind:
		return String(r.readString())
	case BlobKind:
		n := r.readUint32()
		buff := make([]byte, n)
		copy(buff, r.readBytes(int(n)))
		return NewBlob(buff)
	case RefKind:
		var h hash.Hash
		copy(h[:], r.readBytes(hash.ByteLen))
		t := decodeType(r)
		height := r.readUint64()
		return constructRef(h, t, height)
	case ListKind:
		n := r.readUint32()
		vs := make([]Value, n)
		for i := range vs {
			vs[i] = decodeValue(r)
		}
		return NewList(vs...)
	case SetKind:
		n := r.readUint32()
		vs := make([]Value, n)
		for i := range vs {
			vs[i] = decodeValue(r)
		}
		return NewSet(vs...)
	case MapKind:
		n := r.readUint32()
		kvs := make([]Value, 0, n*2)
		for i := uint32(0); i < n; i++ {
			kvs = append(kvs, decodeValue(r), decodeValue(r))
		}
		return NewMap(kvs...)
	case StructKind:
		name := r.readString()
		n := r.readUint32()
		data := make(StructData, n)
		for i := uint32(0); i < n; i++ {
			fname := r.readString()
			data[fname] = decodeValue(r)
		}
		return newStruct(name, data)
	case TypeKind:
		return decodeType(r)
	default:
		d.Panic("cannot decode value of kind %d", k)
		panic("unreachable")
	}
}

func encodeType(w *binaryNomsWriter, t *Type) {
	w.writeUint8(uint8(t.kind))
	switch t.kind {
	case ListKind, SetKind, RefKind:
		encodeType(w, t.elemTypes[0])
	case MapKind:
		encodeType(w, t.elemTypes[0])
		encodeType(w, t.elemTypes[1])
	case UnionKind:
		w.writeUint32(uint32(len(t.elemTypes)))
		for _, e := range t.elemTypes {
			encodeType(w, e)
		}
	case CycleKind:
		w.writeUint32(t.level)
	case StructKind:
		w.writeString(t.name)
		w.writeUint32(uint32(len(t.fields)))
		for _, f := range t.fields {
			w.writeString(f.Name)
			w.writeBool(f.Optional)
			encodeType(w, f.Type)
		}
	}
}

func decodeType(r *binaryNomsReader) *Type {
	k := NomsKind(r.readUint8())
	switch k {
	case ListKind:
		return MakeListType(decodeType(r))
	case SetKind:
		return MakeSetType(decodeType(r))
	case RefKind:
		return MakeRefType(decodeType(r))
	case MapKind:
		key := decodeType(r)
		val := decodeType(r)
		return MakeMapType(key, val)
	case UnionKind:
		n := r.readUint32()
		ts := make([]*Type, n)
		for i := range ts {
			ts[i] = decodeType(r)
		}
		return MakeUnionType(ts...)
	case CycleKind:
		return MakeCycleType(r.readUint32())
	case StructKind:
		name := r.readString()
		n := r.readUint32()
		fields := make([]StructField, n)
		for i := range fields {
			fname := r.readString()
			opt := r.readBool()
			ftype := decodeType(r)
			fields[i] = StructField{Name: fname, Type: ftype, Optional: opt}
		}
		return MakeStructType(name, fields...)
	default:
		return internNoElems(k)
	}
}
