// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/nomsdb/noms/go/hash"

// List is an ordered sequence of Values. Non-goals exclude the
// prolly-tree chunked sequence representation of the original system;
// a List here is a single chunk holding a plain slice, which is within
// scope for the sizes this system targets.
type List struct {
	values []Value
	h      hash.Hash
	hSet   bool
}

// NewList constructs a List containing vs, in order.
func NewList(vs ...Value) List {
	cp := make([]Value, len(vs))
	copy(cp, vs)
	return List{values: cp}
}

func (l List) Kind() NomsKind { return ListKind }

func (l List) Type() *Type {
	if len(l.values) == 0 {
		return MakeListType(ValueType)
	}
	ts := make([]*Type, len(l.values))
	for i, v := range l.values {
		ts[i] = v.Type()
	}
	return MakeListType(MakeUnionType(ts...))
}

func (l List) Hash() hash.Hash {
	if !l.hSet {
		return hashOf(l)
	}
	return l.h
}

func (l List) Equals(other Value) bool {
	o, ok := other.(List)
	if !ok || len(l.values) != len(o.values) {
		return false
	}
	for i := range l.values {
		if !l.values[i].Equals(o.values[i]) {
			return false
		}
	}
	return true
}

func (l List) WalkRefs(cb func(Ref)) {
	for _, v := range l.values {
		v.WalkRefs(cb)
	}
}

// Len returns the number of elements in l.
func (l List) Len() int { return len(l.values) }

// Get returns the element at idx. Panics if idx is out of range.
func (l List) Get(idx uint64) Value { return l.values[idx] }

// Iter calls cb for every element in order, stopping early if cb returns
// true.
func (l List) Iter(cb func(v Value, idx uint64) bool) {
	for i, v := range l.values {
		if cb(v, uint64(i)) {
			return
		}
	}
}

// Append returns a new List with v added to the end.
func (l List) Append(v Value) List {
	cp := make([]Value, len(l.values)+1)
	copy(cp, l.values)
	cp[len(l.values)] = v
	return List{values: cp}
}
