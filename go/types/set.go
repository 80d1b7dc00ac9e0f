// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"sort"

	"github.com/nomsdb/noms/go/hash"
)

// Set is an unordered collection of distinct Values, stored internally in
// the canonical order valueLess defines so that two Sets with the same members always
// encode identically. As with List, Non-goals exclude the prolly-tree
// representation of the original system.
type Set struct {
	values []Value
	h      hash.Hash
	hSet   bool
}

// NewSet constructs a Set from vs, de-duplicating by Equals.
func NewSet(vs ...Value) Set {
	sorted := make([]Value, len(vs))
	copy(sorted, vs)
	sort.Sort(ValueSlice(sorted))
	out := sorted[:0]
	for i, v := range sorted {
		if i > 0 && v.Equals(out[len(out)-1]) {
			continue
		}
		out = append(out, v)
	}
	return Set{values: out}
}

func (s Set) Kind() NomsKind { return SetKind }

func (s Set) Type() *Type {
	if len(s.values) == 0 {
		return MakeSetType(ValueType)
	}
	ts := make([]*Type, len(s.values))
	for i, v := range s.values {
		ts[i] = v.Type()
	}
	return MakeSetType(MakeUnionType(ts...))
}

func (s Set) Hash() hash.Hash {
	if !s.hSet {
		return hashOf(s)
	}
	return s.h
}

func (s Set) Equals(other Value) bool {
	o, ok := other.(Set)
	if !ok || len(s.values) != len(o.values) {
		return false
	}
	for i := range s.values {
		if !s.values[i].Equals(o.values[i]) {
			return false
		}
	}
	return true
}

func (s Set) WalkRefs(cb func(Ref)) {
	for _, v := range s.values {
		v.WalkRefs(cb)
	}
}

// Len returns the number of elements in s.
func (s Set) Len() int { return len(s.values) }

// Has reports whether v is a member of s.
func (s Set) Has(v Value) bool {
	i := sort.Search(len(s.values), func(i int) bool { return !valueLess(s.values[i], v) })
	return i < len(s.values) && s.values[i].Equals(v)
}

// Iter calls cb for every element in canonical order, stopping early if
// cb returns true.
func (s Set) Iter(cb func(v Value) bool) {
	for _, v := range s.values {
		if cb(v) {
			return
		}
	}
}

// Insert returns a new Set with v added (a no-op, returning s itself
// unchanged, if v is already present).
func (s Set) Insert(v Value) Set {
	if s.Has(v) {
		return s
	}
	cp := make([]Value, len(s.values)+1)
	copy(cp, s.values)
	cp[len(s.values)] = v
	return NewSet(cp...)
}
