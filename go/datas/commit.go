// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"context"

	"github.com/nomsdb/noms/go/d"
	"github.com/nomsdb/noms/go/types"
)

const (
	valueField   = "value"
	parentsField = "parents"
	metaField    = "meta"
)

// NewCommit builds the Struct representation of a commit (spec §4.6):
// value is the committed Value, parents is a Set of Ref<Commit> pointing
// at the commit's immediate predecessors (empty for a root commit), and
// meta is an arbitrary, optional Struct of caller-supplied metadata.
//
// The type this Struct reports via Type() is computed by the special
// case in go/types/struct.go, not derived generically here: every commit
// over the same value type shares one canonical, generation-independent
// Type regardless of how deep its ancestry runs.
func NewCommit(value types.Value, parents types.Set, meta types.Struct) types.Struct {
	d.PanicIfTrue(value == nil, "commit value cannot be nil")
	if meta.Name() == "" && len(meta.Type().Fields()) == 0 {
		meta = types.NewStruct("", types.StructData{})
	}
	return types.NewStruct(types.CommitTypeName, types.StructData{
		valueField:   value,
		parentsField: parents,
		metaField:    meta,
	})
}

// Parents returns c's "parents" Set, or an empty Set if c has no
// such field (not itself a commit).
func Parents(c types.Struct) types.Set {
	if v, ok := c.MaybeGet(parentsField); ok {
		if s, ok := v.(types.Set); ok {
			return s
		}
	}
	return types.NewSet()
}

// CommitValue returns c's committed "value" field.
func CommitValue(c types.Struct) types.Value {
	return c.Get(valueField)
}

// CommitMeta returns c's "meta" Struct, or an empty Struct if absent.
func CommitMeta(c types.Struct) types.Struct {
	if v, ok := c.MaybeGet(metaField); ok {
		if s, ok := v.(types.Struct); ok {
			return s
		}
	}
	return types.NewStruct("", types.StructData{})
}

// IsCommit reports whether v is a commit Struct.
func IsCommit(v types.Value) bool {
	s, ok := v.(types.Struct)
	return ok && types.IsCommitType(s.Type())
}

// CommitDescendsFrom reports whether commit is equal to, or a transitive
// descendant of, ancestor -- found by a BFS over Parents that never
// crosses below ancestor's own height, per spec §4.6's Height-bounded
// ancestor walk. vr resolves parent Refs to their pointee commits.
func CommitDescendsFrom(ctx context.Context, vr *types.ValueStore, commit, ancestor types.Struct) bool {
	if commit.Equals(ancestor) {
		return true
	}
	ancestorRef := types.NewRef(ancestor)

	frontier := []types.Ref{types.NewRef(commit)}
	seen := map[string]bool{}
	for len(frontier) > 0 {
		next := frontier[0]
		frontier = frontier[1:]
		if next.Height() < ancestorRef.Height() {
			continue
		}
		if next.TargetHash() == ancestorRef.TargetHash() {
			return true
		}
		key := next.TargetHash().String()
		if seen[key] {
			continue
		}
		seen[key] = true

		v, err := vr.ReadValue(ctx, next.TargetHash())
		if err != nil || v == nil {
			continue
		}
		c, ok := v.(types.Struct)
		if !ok {
			continue
		}
		Parents(c).Iter(func(p types.Value) bool {
			if r, ok := p.(types.Ref); ok && r.Height() >= ancestorRef.Height() {
				frontier = append(frontier, r)
			}
			return false
		})
	}
	return false
}
