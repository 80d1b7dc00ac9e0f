// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/nomsdb/noms/go/hash"

// Blob is an opaque byte sequence. Non-goals (spec) exclude prolly-tree
// chunked Blobs; this is a single in-memory byte slice, addressed as one
// Value like any other -- fine for the sizes this system is scoped to.
type Blob struct {
	buff []byte
	h    hash.Hash
	hSet bool
}

// NewBlob constructs a Blob wrapping data directly (no copy).
func NewBlob(data []byte) Blob {
	return Blob{buff: data}
}

func (b Blob) Kind() NomsKind { return BlobKind }
func (b Blob) Type() *Type    { return BlobType }

func (b Blob) Hash() hash.Hash {
	// Blob's hash is cheap to memoize but callers hold Blob by value, so
	// memoization here would be lost across copies; re-encoding an
	// already-built byte slice is just a copy + hash, not worth a pointer
	// receiver purely for this.
	return hashOf(b)
}

func (b Blob) Equals(other Value) bool {
	o, ok := other.(Blob)
	if !ok || len(b.buff) != len(o.buff) {
		return false
	}
	for i := range b.buff {
		if b.buff[i] != o.buff[i] {
			return false
		}
	}
	return true
}

func (b Blob) WalkRefs(cb func(Ref)) {}

// Len returns the number of bytes in b.
func (b Blob) Len() int { return len(b.buff) }

// Bytes returns b's underlying data. Callers must not mutate it.
func (b Blob) Bytes() []byte { return b.buff }
