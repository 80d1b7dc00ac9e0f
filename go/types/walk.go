// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

// WalkRefs invokes cb once for every Ref immediately reachable from v --
// a package-level wrapper over Value.WalkRefs for call sites that don't
// otherwise have a concrete Value in hand.
func WalkRefs(v Value, cb func(Ref)) {
	v.WalkRefs(cb)
}

// RefHashes collects every Ref cb would visit via WalkRefs(v, cb); callers
// take each Ref's TargetHash to build hint sets (spec §4.4) or to check a
// Ref's declared type against its target.
func RefHashes(v Value) []Ref {
	var out []Ref
	v.WalkRefs(func(r Ref) { out = append(out, r) })
	return out
}
