// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/nomsdb/noms/go/hash"

// String is a UTF-8 Value.
type String string

func (s String) Kind() NomsKind  { return StringKind }
func (s String) Type() *Type     { return StringType }
func (s String) Hash() hash.Hash { return hashOf(s) }

func (s String) Equals(other Value) bool {
	o, ok := other.(String)
	return ok && s == o
}

func (s String) WalkRefs(cb func(Ref)) {}
