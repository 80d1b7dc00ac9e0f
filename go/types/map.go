// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"sort"

	"github.com/nomsdb/noms/go/hash"
)

// Map is an unordered key/value association, stored in canonical key
// order for the same reason Set is: identical content always encodes
// identically. As with List and Set, Non-goals exclude the prolly-tree
// representation of the original system.
type Map struct {
	keys   []Value
	values []Value
	h      hash.Hash
	hSet   bool
}

// NewMap constructs a Map from alternating key, value, key, value, ...
// arguments. A later occurrence of a key overrides an earlier one.
func NewMap(kv ...Value) Map {
	if len(kv)%2 != 0 {
		panic("NewMap: odd number of arguments")
	}
	type entry struct{ k, v Value }
	entries := make([]entry, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		entries = append(entries, entry{kv[i], kv[i+1]})
	}
	sort.SliceStable(entries, func(i, j int) bool { return valueLess(entries[i].k, entries[j].k) })
	deduped := entries[:0]
	for i, e := range entries {
		if i > 0 && e.k.Equals(deduped[len(deduped)-1].k) {
			deduped[len(deduped)-1] = e
			continue
		}
		deduped = append(deduped, e)
	}
	keys := make([]Value, len(deduped))
	values := make([]Value, len(deduped))
	for i, e := range deduped {
		keys[i] = e.k
		values[i] = e.v
	}
	return Map{keys: keys, values: values}
}

func (m Map) Kind() NomsKind { return MapKind }

func (m Map) Type() *Type {
	if len(m.keys) == 0 {
		return MakeMapType(ValueType, ValueType)
	}
	kts := make([]*Type, len(m.keys))
	vts := make([]*Type, len(m.values))
	for i := range m.keys {
		kts[i] = m.keys[i].Type()
		vts[i] = m.values[i].Type()
	}
	return MakeMapType(MakeUnionType(kts...), MakeUnionType(vts...))
}

func (m Map) Hash() hash.Hash {
	if !m.hSet {
		return hashOf(m)
	}
	return m.h
}

func (m Map) Equals(other Value) bool {
	o, ok := other.(Map)
	if !ok || len(m.keys) != len(o.keys) {
		return false
	}
	for i := range m.keys {
		if !m.keys[i].Equals(o.keys[i]) || !m.values[i].Equals(o.values[i]) {
			return false
		}
	}
	return true
}

func (m Map) WalkRefs(cb func(Ref)) {
	for i := range m.keys {
		m.keys[i].WalkRefs(cb)
		m.values[i].WalkRefs(cb)
	}
}

// Len returns the number of entries in m.
func (m Map) Len() int { return len(m.keys) }

func (m Map) find(k Value) (int, bool) {
	i := sort.Search(len(m.keys), func(i int) bool { return !valueLess(m.keys[i], k) })
	if i < len(m.keys) && m.keys[i].Equals(k) {
		return i, true
	}
	return i, false
}

// Get returns the value for k and true, or (nil, false) if absent.
func (m Map) Get(k Value) (Value, bool) {
	if i, ok := m.find(k); ok {
		return m.values[i], true
	}
	return nil, false
}

// Has reports whether k is present in m.
func (m Map) Has(k Value) bool {
	_, ok := m.find(k)
	return ok
}

// Iter calls cb for every entry in canonical key order, stopping early if
// cb returns true.
func (m Map) Iter(cb func(k, v Value) bool) {
	for i := range m.keys {
		if cb(m.keys[i], m.values[i]) {
			return
		}
	}
}

// Set returns a new Map with k bound to v (overwriting any previous
// binding for k).
func (m Map) Set(k, v Value) Map {
	kv := make([]Value, 0, (len(m.keys)+1)*2)
	for i := range m.keys {
		kv = append(kv, m.keys[i], m.values[i])
	}
	kv = append(kv, k, v)
	return NewMap(kv...)
}
