// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"sort"

	"github.com/nomsdb/noms/go/hash"
)

// StructData is the unordered field-name -> Value map used to build a
// Struct. NewStruct sorts and fixes the field order canonically.
type StructData map[string]Value

// Struct is a named, fixed-shape record -- the representation of Commit
// (spec §4.6) and of any other user-defined record type.
type Struct struct {
	name       string
	fieldNames []string // sorted
	values     []Value
	h          hash.Hash
	hSet       bool
}

// NewStruct builds a Struct named name from data.
func NewStruct(name string, data StructData) Struct {
	return newStruct(name, data)
}

func newStruct(name string, data StructData) Struct {
	names := make([]string, 0, len(data))
	for n := range data {
		names = append(names, n)
	}
	sort.Strings(names)
	values := make([]Value, len(names))
	for i, n := range names {
		values[i] = data[n]
	}
	return Struct{name: name, fieldNames: names, values: values}
}

func (s Struct) Kind() NomsKind { return StructKind }

// CommitTypeName is special-cased below so that a Commit's "parents"
// field reports as Set<Ref<Cycle<0>>> whenever its ancestry is
// homogeneous (and as one widened ancestor struct otherwise, see
// commitStructType), rather than the literal (ever-deeper, generation
// over generation) type its stored parent Refs would otherwise derive
// to -- see go/datas/commit.go, which is the only code that constructs a
// Struct by this name.
const CommitTypeName = commitTypeName
const commitTypeName = "Commit"

// canonicalCommitType is the spec §4.6 template every valid Commit Type
// must be a structural subtype of: any meta Struct, any value, and a
// parents Set of Refs to something Commit-shaped (Cycle<0> resolves
// against whichever concrete encoding the commit in hand actually uses --
// see IsSubtype).
var canonicalCommitType = MakeStructType(commitTypeName,
	StructField{Name: "meta", Type: EmptyStructType},
	StructField{Name: "parents", Type: MakeSetType(MakeRefType(MakeCycleType(0)))},
	StructField{Name: "value", Type: ValueType},
)

// CommitType returns the canonical Type of a rootless Commit (no
// parents) whose "value" and "meta" fields have the given types -- the
// exported entry point go/datas uses to declare or validate a Commit's
// shape without constructing one.
func CommitType(valueType, metaType *Type) *Type {
	return commitStructType(valueType, metaType, NewSet())
}

// IsCommitType reports whether t is structurally a Commit type (spec
// §4.6): named Commit and a subtype of canonicalCommitType. This covers
// both the self-referential Set<Ref<Cycle<0>>> parents encoding
// commitStructType emits for a homogeneous ancestry, and the non-cyclic,
// union-widened encoding it falls back to otherwise.
func IsCommitType(t *Type) bool {
	return t.TargetKind() == StructKind && t.Name() == commitTypeName && IsSubtype(canonicalCommitType, t)
}

func (s Struct) Type() *Type {
	if s.name == commitTypeName {
		if i, ok := s.find("value"); ok {
			metaType := EmptyStructType
			if mi, ok := s.find("meta"); ok {
				metaType = s.values[mi].Type()
			}
			parents := NewSet()
			if pi, ok := s.find("parents"); ok {
				if p, ok := s.values[pi].(Set); ok {
					parents = p
				}
			}
			return commitStructType(s.values[i].Type(), metaType, parents)
		}
	}
	fields := make([]StructField, len(s.fieldNames))
	for i, n := range s.fieldNames {
		fields[i] = StructField{Name: n, Type: s.values[i].Type()}
	}
	return MakeStructType(s.name, fields...)
}

// commitStructType implements spec §4.6's cycle-aware Commit type
// construction: parentsValueUnion/parentsMetaUnion are the union of
// valueType/metaType with every entry of parents' own "value"/"meta"
// field types (read off each parent Ref's TargetType, never requiring a
// chunk fetch). When both unions equal this commit's own valueType and
// metaType -- the common case of a homogeneous ancestry -- parents folds
// to the finite Set<Ref<Cycle<0>>> self-reference; otherwise it widens to
// a literal, non-cyclic ancestor struct capturing the broader unions, so
// a commit whose lineage actually varies in shape still has an accurate,
// finite Type.
func commitStructType(valueType, metaType *Type, parents Set) *Type {
	parentValueTypes := []*Type{valueType}
	parentMetaTypes := []*Type{metaType}
	parents.Iter(func(v Value) bool {
		r, ok := v.(Ref)
		if !ok {
			return false
		}
		pt := r.TargetType()
		if pt.TargetKind() != StructKind {
			return false
		}
		for _, f := range pt.Fields() {
			switch f.Name {
			case "value":
				parentValueTypes = append(parentValueTypes, f.Type)
			case "meta":
				parentMetaTypes = append(parentMetaTypes, f.Type)
			}
		}
		return false
	})

	valueUnion := MakeUnionType(parentValueTypes...)
	metaUnion := MakeUnionType(parentMetaTypes...)

	parentsType := MakeSetType(MakeRefType(MakeCycleType(0)))
	if !valueUnion.Equals(valueType) || !metaUnion.Equals(metaType) {
		parentsType = MakeSetType(MakeRefType(MakeStructType(commitTypeName,
			StructField{Name: "meta", Type: metaUnion},
			StructField{Name: "parents", Type: MakeSetType(MakeRefType(MakeCycleType(0)))},
			StructField{Name: "value", Type: valueUnion},
		)))
	}

	return MakeStructType(commitTypeName,
		StructField{Name: "meta", Type: metaType},
		StructField{Name: "parents", Type: parentsType},
		StructField{Name: "value", Type: valueType},
	)
}

func (s Struct) Hash() hash.Hash {
	if !s.hSet {
		return hashOf(s)
	}
	return s.h
}

func (s Struct) Equals(other Value) bool {
	o, ok := other.(Struct)
	if !ok || s.name != o.name || len(s.fieldNames) != len(o.fieldNames) {
		return false
	}
	for i := range s.fieldNames {
		if s.fieldNames[i] != o.fieldNames[i] || !s.values[i].Equals(o.values[i]) {
			return false
		}
	}
	return true
}

func (s Struct) WalkRefs(cb func(Ref)) {
	for _, v := range s.values {
		v.WalkRefs(cb)
	}
}

// Name returns s's struct-type name.
func (s Struct) Name() string { return s.name }

func (s Struct) find(name string) (int, bool) {
	i := sort.SearchStrings(s.fieldNames, name)
	if i < len(s.fieldNames) && s.fieldNames[i] == name {
		return i, true
	}
	return i, false
}

// MaybeGet returns the value of field name and true, or (nil, false) if
// s has no such field.
func (s Struct) MaybeGet(name string) (Value, bool) {
	if i, ok := s.find(name); ok {
		return s.values[i], true
	}
	return nil, false
}

// Get returns the value of field name. Panics if absent.
func (s Struct) Get(name string) Value {
	v, ok := s.MaybeGet(name)
	if !ok {
		panic("no such field: " + name)
	}
	return v
}

// Set returns a new Struct with field name bound to v.
func (s Struct) Set(name string, v Value) Struct {
	data := make(StructData, len(s.fieldNames)+1)
	for i, n := range s.fieldNames {
		data[n] = s.values[i]
	}
	data[name] = v
	return newStruct(s.name, data)
}

// Delete returns a new Struct with field name removed, if present.
func (s Struct) Delete(name string) Struct {
	if _, ok := s.find(name); !ok {
		return s
	}
	data := make(StructData, len(s.fieldNames)-1)
	for i, n := range s.fieldNames {
		if n != name {
			data[n] = s.values[i]
		}
	}
	return newStruct(s.name, data)
}

// IterFields calls cb for every field in sorted-name order.
func (s Struct) IterFields(cb func(name string, v Value)) {
	for i, n := range s.fieldNames {
		cb(n, s.values[i])
	}
}
