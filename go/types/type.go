// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nomsdb/noms/go/d"
	"github.com/nomsdb/noms/go/hash"
)

// StructField is one (name, type, optional) entry of a Struct Type.
type StructField struct {
	Name     string
	Type     *Type
	Optional bool
}

// FieldMap is a convenience constructor input for MakeStructTypeFromFields:
// unordered fields, none optional.
type FieldMap map[string]*Type

// Type is a tagged, structurally-interned description of a Value's shape.
// Compound kinds carry ElemTypes; Struct carries Name and Fields; Cycle
// carries Level, a de Bruijn index into the chain of enclosing Structs
// being constructed (see §4.6) -- never a pointer, so a Type tree that
// describes a recursive Struct (like Commit) is still a plain finite tree.
//
// Types are interned by structural identity through a process-wide cache
// (typeCache): two independently-constructed Types with the same shape
// share the same *Type, so Equals is a pointer-or-description compare.
type Type struct {
	kind      NomsKind
	elemTypes []*Type // List/Set/Ref: len 1. Map: len 2 (key, value). Union: len N.
	name      string
	fields    []StructField // sorted by Name
	level     uint32        // Cycle only
	desc      string        // canonical structural description, used as cache key
}

// Kind returns TypeKind: every *Type, regardless of what it describes, is
// a Value of kind TypeKind. Use TargetKind for the kind it describes.
func (t *Type) Kind() NomsKind { return TypeKind }

// TargetKind returns the tag of the shape t describes (e.g. ListKind for
// a List<Number>, StructKind for a Struct type). This is distinct from
// Kind, which always reports TypeKind since a Type is itself a Value.
func (t *Type) TargetKind() NomsKind { return t.kind }

// Type returns the Type of a Type Value: TypeType, always.
func (t *Type) Type() *Type { return TypeType }

// Desc is the canonical structural description used to intern t. Exposed
// so Type itself can be hashed/encoded as a Value (a Type is a Value).
func (t *Type) Desc() string { return t.desc }

// Hash returns t's content hash, computed by encoding t like any other
// Value -- a Type is itself a first-class Value (spec §4.8).
func (t *Type) Hash() hash.Hash { return hashOf(t) }

// Equals reports whether t and other describe the same shape. other need
// not be a *Type; any non-*Type Value compares unequal.
func (t *Type) Equals(other Value) bool {
	o, ok := other.(*Type)
	if !ok {
		return false
	}
	if t == o {
		return true
	}
	return t.desc == o.desc
}

// WalkRefs is a no-op: a Type tree never directly contains a Ref (Cycle
// markers stand in for recursive Struct references instead).
func (t *Type) WalkRefs(cb func(Ref)) {}

// ElemTypes returns the element types of a compound Type (List/Set/Ref:
// 1 entry; Map: 2; Union: N). Returns nil for a non-compound kind.
func (t *Type) ElemTypes() []*Type {
	return t.elemTypes
}

// Name returns a Struct Type's name.
func (t *Type) Name() string { return t.name }

// Fields returns a Struct Type's fields, sorted by name.
func (t *Type) Fields() []StructField { return t.fields }

// Level returns a Cycle Type's de Bruijn level.
func (t *Type) Level() uint32 { return t.level }

// Describe renders a human-readable rendition of t, in the teacher's
// "Struct Foo { ... }" style, used in panic messages and the CLI.
func (t *Type) Describe() string {
	switch t.kind {
	case StructKind:
		parts := make([]string, len(t.fields))
		for i, f := range t.fields {
			opt := ""
			if f.Optional {
				opt = "?"
			}
			parts[i] = fmt.Sprintf("%s%s: %s", f.Name, opt, f.Type.Describe())
		}
		name := t.name
		if name == "" {
			name = "_"
		}
		return fmt.Sprintf("Struct %s { %s }", name, strings.Join(parts, ", "))
	case CycleKind:
		return fmt.Sprintf("Cycle<%d>", t.level)
	case UnionKind:
		parts := make([]string, len(t.elemTypes))
		for i, e := range t.elemTypes {
			parts[i] = e.Describe()
		}
		return strings.Join(parts, " | ")
	case ListKind, SetKind, RefKind:
		return fmt.Sprintf("%s<%s>", t.kind, t.elemTypes[0].Describe())
	case MapKind:
		return fmt.Sprintf("Map<%s, %s>", t.elemTypes[0].Describe(), t.elemTypes[1].Describe())
	default:
		return t.kind.String()
	}
}

var (
	BoolType   = internNoElems(BoolKind)
	NumberType = internNoElems(NumberKind)
	StringType = internNoElems(StringKind)
	BlobType   = internNoElems(BlobKind)
	ValueType  = internNoElems(ValueKind)
	TypeType   = internNoElems(TypeKind)

	// EmptyStructType is the canonical Struct{} -- the type of a Commit's
	// default (omitted) meta field.
	EmptyStructType = MakeStructType("")
)

func internNoElems(k NomsKind) *Type {
	return intern(&Type{kind: k, desc: k.String()})
}

// MakeListType returns the interned List<elem> Type.
func MakeListType(elem *Type) *Type {
	return intern(&Type{kind: ListKind, elemTypes: []*Type{elem}, desc: "List<" + elem.desc + ">"})
}

// MakeSetType returns the interned Set<elem> Type.
func MakeSetType(elem *Type) *Type {
	return intern(&Type{kind: SetKind, elemTypes: []*Type{elem}, desc: "Set<" + elem.desc + ">"})
}

// MakeMapType returns the interned Map<key, value> Type.
func MakeMapType(key, value *Type) *Type {
	return intern(&Type{kind: MapKind, elemTypes: []*Type{key, value}, desc: "Map<" + key.desc + "," + value.desc + ">"})
}

// MakeRefType returns the interned Ref<elem> Type.
func MakeRefType(elem *Type) *Type {
	return intern(&Type{kind: RefKind, elemTypes: []*Type{elem}, desc: "Ref<" + elem.desc + ">"})
}

// MakeCycleType returns the interned Cycle<level> marker Type.
func MakeCycleType(level uint32) *Type {
	return intern(&Type{kind: CycleKind, level: level, desc: fmt.Sprintf("Cycle<%d>", level)})
}

// MakeUnionType returns the interned Type representing the union of ts:
// duplicates (by structural identity) are removed and members are sorted
// by description so that construction order never affects identity. A
// union of exactly one distinct member collapses to that member, and an
// empty input collapses to ValueType (the top type) since "union of
// nothing" has no useful narrower meaning here.
func MakeUnionType(ts ...*Type) *Type {
	seen := map[string]*Type{}
	for _, t := range ts {
		if t.kind == UnionKind {
			for _, e := range t.elemTypes {
				seen[e.desc] = e
			}
			continue
		}
		seen[t.desc] = t
	}
	if len(seen) == 0 {
		return ValueType
	}
	if len(seen) == 1 {
		for _, t := range seen {
			return t
		}
	}
	descs := make([]string, 0, len(seen))
	for desc := range seen {
		descs = append(descs, desc)
	}
	sort.Strings(descs)
	elems := make([]*Type, len(descs))
	parts := make([]string, len(descs))
	for i, desc := range descs {
		elems[i] = seen[desc]
		parts[i] = desc
	}
	return intern(&Type{kind: UnionKind, elemTypes: elems, desc: strings.Join(parts, "|")})
}

// MakeStructType returns the interned Struct Type named name with the
// given fields (order doesn't matter; fields are sorted by name).
func MakeStructType(name string, fields ...StructField) *Type {
	sorted := make([]StructField, len(fields))
	copy(sorted, fields)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for i := 1; i < len(sorted); i++ {
		d.PanicIfTrue(sorted[i].Name == sorted[i-1].Name, "duplicate struct field name %q", sorted[i].Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Struct %s{", name)
	for _, f := range sorted {
		opt := ""
		if f.Optional {
			opt = "?"
		}
		fmt.Fprintf(&b, "%s%s:%s,", f.Name, opt, f.Type.desc)
	}
	b.WriteByte('}')
	return intern(&Type{kind: StructKind, name: name, fields: sorted, desc: b.String()})
}

// MakeStructTypeFromFields is a convenience wrapper over MakeStructType for
// callers that have an unordered, all-required field map.
func MakeStructTypeFromFields(name string, fm FieldMap) *Type {
	fields := make([]StructField, 0, len(fm))
	for name, t := range fm {
		fields = append(fields, StructField{Name: name, Type: t})
	}
	return MakeStructType(name, fields...)
}
