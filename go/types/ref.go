// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/nomsdb/noms/go/hash"

// Ref is a content-addressed pointer to another Value, carrying the
// pointee's Type (so a reader needn't fetch the chunk just to validate
// subtyping) and its Height -- one more than the max height of any Ref
// reachable from the target, or 1 for a leaf target with no Refs of its
// own (spec §3). Height lets Database order commits and bound ancestor
// walks without fetching every intervening chunk (spec §4.6).
type Ref struct {
	targetHash hash.Hash
	targetType *Type
	height     uint64
	h          hash.Hash
	hSet       bool
}

// NewRef builds a Ref pointing at target, computing height by walking
// target's immediate child Refs.
func NewRef(target Value) Ref {
	maxChildHeight := uint64(0)
	target.WalkRefs(func(r Ref) {
		if h := r.Height(); h > maxChildHeight {
			maxChildHeight = h
		}
	})
	return constructRef(target.Hash(), target.Type(), maxChildHeight+1)
}

func constructRef(targetHash hash.Hash, targetType *Type, height uint64) Ref {
	return Ref{targetHash: targetHash, targetType: targetType, height: height}
}

func (r Ref) Kind() NomsKind { return RefKind }
func (r Ref) Type() *Type    { return MakeRefType(r.targetType) }

func (r Ref) Hash() hash.Hash {
	if !r.hSet {
		// Ref is small and cheap to recompute; memoizing would need a
		// pointer receiver, which would make Ref un-comparable with ==.
		return hashOf(r)
	}
	return r.h
}

func (r Ref) Equals(other Value) bool {
	o, ok := other.(Ref)
	return ok && r.targetHash == o.targetHash && r.height == o.height
}

func (r Ref) WalkRefs(cb func(Ref)) { cb(r) }

// TargetHash returns the hash of the Value r points at.
func (r Ref) TargetHash() hash.Hash { return r.targetHash }

// TargetType returns the declared Type of the Value r points at.
func (r Ref) TargetType() *Type { return r.targetType }

// Height returns r's height, per the type doc above.
func (r Ref) Height() uint64 { return r.height }
