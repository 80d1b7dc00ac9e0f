// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/nomsdb/noms/go/d"

// assertSubtype panics with a TypeMismatch if v's Type isn't a subtype of
// required. This is the synchronous half of spec §7's TypeMismatch: a
// check like this never returns as an error, it panics, exactly like the
// teacher's own assertSubtype(t, v) test helper.
func assertSubtype(required *Type, v Value) {
	if concrete := v.Type(); !IsSubtype(required, concrete) {
		d.Panic("TypeMismatch: value of type %s is not a subtype of %s", concrete.Describe(), required.Describe())
	}
}

// IsSubtype reports whether a Value described by concrete may always be
// used where a Value described by required is expected -- ValueType is
// the universal supertype, compound types are covariant in their element
// types, and Struct is subtyped field-by-field (concrete must provide at
// least every non-optional field required names, with a subtype of the
// required field's type; concrete may have extra fields required doesn't
// mention).
//
// A Cycle<n> marker is resolved against the chain of enclosing Struct
// Types on its own side before comparing (n counts outward from the
// innermost), so a canonical cyclic template like Commit's
// `parents: Set<Ref<Cycle<0>>>` can be checked against a concrete type
// that encodes the same recursion differently -- e.g. the non-cyclic,
// union-widened Commit struct types of spec §4.6's ancestor-widening
// branch. Resolving a Cycle can re-expand the very struct pair already
// being compared, so struct comparisons are memoized by (required,
// concrete) pointer identity (Types are interned, so pointer equality is
// structural equality) and optimistically assumed true on revisit -- the
// standard coinductive technique for equirecursive subtyping.
func IsSubtype(required, concrete *Type) bool {
	return isSubtype(required, concrete, nil, nil, map[[2]*Type]bool{})
}

func isSubtype(required, concrete *Type, reqPath, concPath []*Type, seen map[[2]*Type]bool) bool {
	if required.kind == CycleKind {
		if i := len(reqPath) - 1 - int(required.level); i >= 0 {
			required = reqPath[i]
		}
	}
	if concrete.kind == CycleKind {
		if i := len(concPath) - 1 - int(concrete.level); i >= 0 {
			concrete = concPath[i]
		}
	}
	if required.Equals(concrete) {
		return true
	}
	if required.kind == ValueKind {
		return true
	}
	if concrete.kind == UnionKind && required.kind != UnionKind {
		// concrete is a union but required isn't (e.g. a commit's widened
		// ancestor-struct "meta" field, unioned across heterogeneous
		// ancestry, checked against a required struct/ValueType field that
		// never itself varies) -- concrete is only ever safe to use where
		// required is expected if EVERY member of concrete satisfies
		// required, mirroring isSubtypeOfUnion's required-is-union case.
		for _, c := range concrete.elemTypes {
			if !isSubtype(required, c, reqPath, concPath, seen) {
				return false
			}
		}
		return true
	}
	if required.kind != concrete.kind {
		return false
	}
	switch required.kind {
	case CycleKind:
		return required.level == concrete.level
	case ListKind, SetKind, RefKind:
		return isSubtype(required.elemTypes[0], concrete.elemTypes[0], reqPath, concPath, seen)
	case MapKind:
		return isSubtype(required.elemTypes[0], concrete.elemTypes[0], reqPath, concPath, seen) &&
			isSubtype(required.elemTypes[1], concrete.elemTypes[1], reqPath, concPath, seen)
	case UnionKind:
		for _, r := range required.elemTypes {
			if !isSubtypeOfUnion(r, concrete, reqPath, concPath, seen) {
				return false
			}
		}
		return true
	case StructKind:
		if required.name != "" && required.name != concrete.name {
			return false
		}
		key := [2]*Type{required, concrete}
		if seen[key] {
			return true
		}
		seen[key] = true

		concreteFields := make(map[string]StructField, len(concrete.fields))
		for _, f := range concrete.fields {
			concreteFields[f.Name] = f
		}
		reqPath = append(append([]*Type{}, reqPath...), required)
		concPath = append(append([]*Type{}, concPath...), concrete)
		for _, rf := range required.fields {
			cf, ok := concreteFields[rf.Name]
			if !ok {
				if rf.Optional {
					continue
				}
				return false
			}
			if !isSubtype(rf.Type, cf.Type, reqPath, concPath, seen) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// isSubtypeOfUnion reports whether every value described by r is also
// described by some member of the union concrete.
func isSubtypeOfUnion(r *Type, concrete *Type, reqPath, concPath []*Type, seen map[[2]*Type]bool) bool {
	for _, c := range concrete.elemTypes {
		if isSubtype(r, c, reqPath, concPath, seen) {
			return true
		}
	}
	return false
}
