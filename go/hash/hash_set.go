// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package hash

// HashSet is a set of Hashes, used throughout the core for "hints" sets and
// for batching reads/writes.
type HashSet map[Hash]struct{}

// NewHashSet builds a HashSet from hs.
func NewHashSet(hs ...Hash) HashSet {
	s := make(HashSet, len(hs))
	for _, h := range hs {
		s[h] = struct{}{}
	}
	return s
}

// Insert adds h to s.
func (s HashSet) Insert(h Hash) {
	s[h] = struct{}{}
}

// Remove removes h from s, if present.
func (s HashSet) Remove(h Hash) {
	delete(s, h)
}

// Has reports whether h is in s.
func (s HashSet) Has(h Hash) bool {
	_, ok := s[h]
	return ok
}

// InsertAll adds the contents of other into s.
func (s HashSet) InsertAll(other HashSet) {
	for h := range other {
		s[h] = struct{}{}
	}
}

// ToSlice returns the Hashes in s in unspecified order.
func (s HashSet) ToSlice() HashSlice {
	out := make(HashSlice, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	return out
}
