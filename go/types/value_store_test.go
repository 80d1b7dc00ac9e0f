// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"context"
	"testing"

	"github.com/nomsdb/noms/go/chunks"
	"github.com/nomsdb/noms/go/hash"
	"github.com/stretchr/testify/assert"
)

// testBatchStore is the minimal synchronous BatchStore fake used to
// exercise ValueStore in isolation from the real transport in go/datas.
type testBatchStore struct {
	cs    chunks.ChunkStore
	hints []hash.HashSet
}

func newTestBatchStore() *testBatchStore {
	return &testBatchStore{cs: chunks.NewMemoryStore()}
}

func (t *testBatchStore) Get(ctx context.Context, h hash.Hash) (chunks.Chunk, error) {
	return t.cs.Get(ctx, h)
}

func (t *testBatchStore) SchedulePut(ctx context.Context, c chunks.Chunk, hints hash.HashSet) error {
	t.hints = append(t.hints, hints)
	return t.cs.Put(ctx, c)
}

func (t *testBatchStore) Flush(ctx context.Context) error { return nil }

func TestValueStoreWriteThenRead(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)
	vs := NewValueStore(newTestBatchStore())

	v := NewStruct("Point", StructData{"x": Number(1), "y": Number(2)})
	r, err := vs.WriteValue(ctx, v)
	assert.NoError(err)
	assert.NoError(vs.Flush(ctx))

	got, err := vs.ReadValue(ctx, r.TargetHash())
	assert.NoError(err)
	assert.True(v.Equals(got))
}

func TestValueStoreReadMissingReturnsNil(t *testing.T) {
	ctx := context.Background()
	vs := NewValueStore(newTestBatchStore())
	got, err := vs.ReadValue(ctx, hash.Hash{})
	assert.NoError(t, err)
	assert.Nil(t, got)
}

// TestValueStoreWriteValueHintsOneLevelBelow exercises spec §4.4's
// precise hint semantics: the hints that accompany a schedulePut are the
// target hashes of whatever was recorded one level below a PRIOR write,
// not the hash of the value just written, and not that value's own
// children until a later write draws on them.
func TestValueStoreWriteValueHintsOneLevelBelow(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)
	bs := newTestBatchStore()
	vs := NewValueStore(bs)

	leaf := String("leaf")
	leafRef, err := vs.WriteValue(ctx, leaf)
	assert.NoError(err)
	assert.Empty(bs.hints[0], "the very first write has nothing accumulated yet")

	mid := NewList(leafRef)
	midRef, err := vs.WriteValue(ctx, mid)
	assert.NoError(err)
	assert.Empty(bs.hints[1], "leaf has no children of its own one level below it, so writing mid carries no hints")

	top := NewList(midRef)
	_, err = vs.WriteValue(ctx, top)
	assert.NoError(err)
	assert.True(bs.hints[2].Has(leafRef.TargetHash()),
		"writing mid records leaf (one level below mid) as a hint for the next write")
	assert.False(bs.hints[2].Has(midRef.TargetHash()),
		"mid's own hash is not a hint for its own write -- only its children are")
}

// TestValueStoreReadValueRecordsHints mirrors the write-side behavior for
// reads: decoding a value back out of the store records its children as
// hints too, since a value read from the backend is already known-good.
func TestValueStoreReadValueRecordsHints(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)
	bs := newTestBatchStore()
	vs := NewValueStore(bs)

	leaf := String("leaf")
	leafRef, err := vs.WriteValue(ctx, leaf)
	assert.NoError(err)
	mid := NewList(leafRef)
	midRef, err := vs.WriteValue(ctx, mid)
	assert.NoError(err)
	assert.NoError(vs.Flush(ctx))

	// vs has mid cached, so reading it there would record nothing; a fresh
	// ValueStore over the same backend must decode mid and record leaf's
	// hash as a hint.
	vs2 := NewValueStore(bs)
	_, err = vs2.ReadValue(ctx, midRef.TargetHash())
	assert.NoError(err)
	assert.True(vs2.currentHints().Has(leafRef.TargetHash()))
}

// TestValueStoreWriteValueDetectsRefTypeMismatch exercises Invariant 3
// (spec §3): a Ref embedded in a value being written must actually point
// at something whose Type is a subtype of what the Ref declares. Since
// NewRef always derives its declared type from the real target, the only
// way to get a lying Ref is to build one by hand -- exactly what a
// corrupt chunk or a buggy caller constructing a Ref some other way could
// produce.
func TestValueStoreWriteValueDetectsRefTypeMismatch(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)
	vs := NewValueStore(newTestBatchStore())

	target := String("actual target is a String")
	_, err := vs.WriteValue(ctx, target)
	assert.NoError(err)

	badRef := constructRef(target.Hash(), NumberType, 1)
	container := NewList(badRef)

	assert.Panics(func() { vs.WriteValue(ctx, container) },
		"a Ref that lies about its target's type must panic with a TypeMismatch before the put is scheduled")
}

// TestValueStoreWriteValueAllowsConsistentRefTypes is the control case
// for TestValueStoreWriteValueDetectsRefTypeMismatch: a Ref built the
// normal way, via NewRef, always matches its cached target and must never
// trip the Invariant 3 check.
func TestValueStoreWriteValueAllowsConsistentRefTypes(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)
	vs := NewValueStore(newTestBatchStore())

	leaf := String("leaf")
	leafRef, err := vs.WriteValue(ctx, leaf)
	assert.NoError(err)

	assert.NotPanics(func() {
		_, err = vs.WriteValue(ctx, NewList(leafRef))
	})
	assert.NoError(err)
}

// TestValueStoreFlushClearsHints confirms the accumulated hint set is
// bounded to one Flush epoch rather than growing for the life of the
// ValueStore.
func TestValueStoreFlushClearsHints(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)
	bs := newTestBatchStore()
	vs := NewValueStore(bs)

	leaf := String("leaf")
	leafRef, err := vs.WriteValue(ctx, leaf)
	assert.NoError(err)
	_, err = vs.WriteValue(ctx, NewList(leafRef))
	assert.NoError(err)
	assert.NotEmpty(vs.currentHints())

	assert.NoError(vs.Flush(ctx))
	assert.Empty(vs.currentHints())
}
