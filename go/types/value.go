// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/nomsdb/noms/go/hash"

// Value is anything that can be stored in and retrieved from the store:
// the primitives (Bool, Number, String, Blob), the collections (List,
// Map, Set), Ref, Struct, and Type itself.
//
// Hash is a pure function of a Value's encoding, computed on demand by
// re-encoding the Value on every call. No kind memoizes it, compound
// kinds included: their h/hSet fields are never set, so each Hash call on
// a List, Map, Set or Struct re-encodes the whole value.
type Value interface {
	Kind() NomsKind
	Type() *Type
	Hash() hash.Hash
	Equals(other Value) bool

	// WalkRefs invokes cb once for every Ref reachable as an immediate
	// child of this Value (not transitively) -- the building block for
	// both hint computation (spec §4.4) and chunk dependency walks.
	WalkRefs(cb func(Ref))
}

// ValueSlice is a convenience type implementing sort.Interface by
// valueLess, used to produce a canonical order for Set/Map chunking-free
// storage.
type ValueSlice []Value

func (vs ValueSlice) Len() int      { return len(vs) }
func (vs ValueSlice) Swap(i, j int) { vs[i], vs[j] = vs[j], vs[i] }
func (vs ValueSlice) Less(i, j int) bool {
	return valueLess(vs[i], vs[j])
}

// valueLess orders two Values first by Kind, then Numbers and Strings by
// their own value and every other kind by encoded Hash -- used to give Set
// and Map's backing slices a deterministic order independent of insertion
// order.
func valueLess(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return a.Kind() < b.Kind()
	}
	if n, ok := a.(Number); ok {
		return n < b.(Number)
	}
	if s, ok := a.(String); ok {
		return s < b.(String)
	}
	return a.Hash().Less(b.Hash())
}
