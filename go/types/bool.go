// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/nomsdb/noms/go/hash"

// Bool is a boolean Value.
type Bool bool

func (b Bool) Kind() NomsKind { return BoolKind }
func (b Bool) Type() *Type    { return BoolType }
func (b Bool) Hash() hash.Hash { return hashOf(b) }

func (b Bool) Equals(other Value) bool {
	o, ok := other.(Bool)
	return ok && b == o
}

func (b Bool) WalkRefs(cb func(Ref)) {}
