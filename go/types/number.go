// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/nomsdb/noms/go/hash"

// Number is a Value holding an IEEE-754 double -- noms has no separate
// integer kind, per spec §3.
type Number float64

func (n Number) Kind() NomsKind  { return NumberKind }
func (n Number) Type() *Type     { return NumberType }
func (n Number) Hash() hash.Hash { return hashOf(n) }

func (n Number) Equals(other Value) bool {
	o, ok := other.(Number)
	return ok && n == o
}

func (n Number) WalkRefs(cb func(Ref)) {}
