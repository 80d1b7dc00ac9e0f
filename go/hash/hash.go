// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package hash defines the content-address used throughout noms: the
// first 20 bytes of a chunk's SHA-512 digest, rendered as a 32-character
// base32 string when it needs to leave memory.
package hash

import (
	"crypto/sha512"
)

// ByteLen is the number of bytes in a Hash.
const ByteLen = 20

// StringLen is the length of a Hash rendered via String().
const StringLen = 32

// Hash is a 20-byte content-address, almost always produced by hashing a
// Chunk's bytes. The zero Hash is the "empty" sentinel used throughout the
// core to mean "no value"/"fresh store".
type Hash [ByteLen]byte

var emptyHash = Hash{}

// Of computes the Hash of data: the first ByteLen bytes of SHA-512(data).
func Of(data []byte) Hash {
	r := sha512.Sum512(data)
	h := Hash{}
	copy(h[:], r[:ByteLen])
	return h
}

// IsEmpty returns true if h is the zero Hash.
func (h Hash) IsEmpty() bool {
	return h == emptyHash
}

// String renders h as a 32-character base32 string.
func (h Hash) String() string {
	return encode(h[:])
}

// Equal reports whether h and other represent the same digest.
func (h Hash) Equal(other Hash) bool {
	return h == other
}

// Less orders Hashes lexicographically over their raw bytes; the empty
// Hash sorts first.
func (h Hash) Less(other Hash) bool {
	return h.Compare(other) < 0
}

// Compare returns -1, 0 or 1 as h is less than, equal to, or greater than
// other, comparing raw bytes lexicographically.
func (h Hash) Compare(other Hash) int {
	for i := range h {
		if h[i] != other[i] {
			if h[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Parse decodes s, a 32-character base32 string, into a Hash. It panics if
// s is malformed; callers that need a non-panicking variant should use
// MaybeParse.
func Parse(s string) Hash {
	h, ok := MaybeParse(s)
	if !ok {
		panic("invalid hash: " + s)
	}
	return h
}

// MaybeParse decodes s into a Hash, returning ok=false rather than panicking
// if s isn't a well-formed 32-character base32 string.
func MaybeParse(s string) (Hash, bool) {
	if len(s) != StringLen {
		return emptyHash, false
	}
	data, ok := maybeDecode(s)
	if !ok {
		return emptyHash, false
	}
	h := Hash{}
	copy(h[:], data)
	return h, true
}
