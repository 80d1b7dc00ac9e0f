// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nomsdb/noms/go/chunks"
	"github.com/nomsdb/noms/go/types"
)

var bgCtx = context.Background()

func newMemStore() chunks.ChunkStore {
	return chunks.NewMemoryStore()
}

func TestDatabaseCommitCreatesDataset(t *testing.T) {
	assert := assert.New(t)
	db := NewDatabase(NewBatchStoreAdaptor(newMemStore()))
	defer db.Close()

	ds, err := db.GetDataset(bgCtx, "master")
	assert.NoError(err)

	ds, err = db.Commit(bgCtx, ds, types.Number(1), CommitOptions{})
	assert.NoError(err)
	v, ok := ds.HeadValue()
	assert.True(ok)
	assert.Equal(types.Number(1), v)
}

func TestDatabaseCommitFastForward(t *testing.T) {
	assert := assert.New(t)
	db := NewDatabase(NewBatchStoreAdaptor(newMemStore()))
	defer db.Close()

	ds, err := db.GetDataset(bgCtx, "master")
	assert.NoError(err)
	ds, err = db.Commit(bgCtx, ds, types.Number(1), CommitOptions{})
	assert.NoError(err)

	ds, err = db.Commit(bgCtx, ds, types.Number(2), CommitOptions{})
	assert.NoError(err)
	v, _ := ds.HeadValue()
	assert.Equal(types.Number(2), v)
	assert.Equal(1, Parents(ds.Head()).Len())
}

func TestDatabaseCommitDetectsStaleParent(t *testing.T) {
	assert := assert.New(t)
	db := NewDatabase(NewBatchStoreAdaptor(newMemStore()))
	defer db.Close()

	staleDs, err := db.GetDataset(bgCtx, "master")
	assert.NoError(err)
	freshDs, err := db.Commit(bgCtx, staleDs, types.Number(1), CommitOptions{})
	assert.NoError(err)

	// staleDs is still the pre-commit (headless) snapshot, so committing off
	// it a second time must see that master's actual head has moved on.
	_, err = db.Commit(bgCtx, staleDs, types.Number(2), CommitOptions{})
	assert.Equal(ErrMergeNeeded, err)

	_, err = db.Commit(bgCtx, freshDs, types.Number(2), CommitOptions{})
	assert.NoError(err)
}

func TestDatabaseCommitAutoRebasesOntoDescendantHead(t *testing.T) {
	assert := assert.New(t)
	db := NewDatabase(NewBatchStoreAdaptor(newMemStore()))
	defer db.Close()

	ds, err := db.GetDataset(bgCtx, "master")
	assert.NoError(err)
	ds, err = db.Commit(bgCtx, ds, types.Number(1), CommitOptions{})
	assert.NoError(err)

	// Two independent snapshots, both basis'd on the same commit #1.
	dsA, err := db.GetDataset(bgCtx, "master")
	assert.NoError(err)
	dsB, err := db.GetDataset(bgCtx, "master")
	assert.NoError(err)

	// dsA wins the race and fast-forwards master to #2.
	_, err = db.Commit(bgCtx, dsA, types.Number(2), CommitOptions{})
	assert.NoError(err)

	// dsB lost the race, but #2 descends from dsB's own basis (#1), so
	// Commit must auto-rebase onto #2 and succeed rather than bailing out
	// with ErrMergeNeeded.
	dsB, err = db.Commit(bgCtx, dsB, types.Number(3), CommitOptions{})
	assert.NoError(err)
	v, ok := dsB.HeadValue()
	assert.True(ok)
	assert.Equal(types.Number(3), v)
	parents := Parents(dsB.Head())
	assert.Equal(1, parents.Len())

	master, err := db.GetDataset(bgCtx, "master")
	assert.NoError(err)
	assert.True(CommitDescendsFrom(bgCtx, db.(*database).vs, master.Head(), dsA.Head()))
}

func TestDatabaseCommitDoesNotRebaseOntoDivergentHead(t *testing.T) {
	assert := assert.New(t)
	db := NewDatabase(NewBatchStoreAdaptor(newMemStore()))
	defer db.Close()

	ds, err := db.GetDataset(bgCtx, "master")
	assert.NoError(err)
	ds, err = db.Commit(bgCtx, ds, types.Number(1), CommitOptions{})
	assert.NoError(err)
	_, err = db.Commit(bgCtx, ds, types.Number(2), CommitOptions{})
	assert.NoError(err)

	// unrelatedDs's head shares no history with master's actual chain, so
	// even though it looks like a basis (hasHead == true), the current
	// server head doesn't descend from it and Commit must not rebase.
	unrelatedCommit := NewCommit(types.Number(99), types.NewSet(), types.NewStruct("", types.StructData{}))
	unrelatedDs := newDataset(db, "master", unrelatedCommit, true)

	_, err = db.Commit(bgCtx, unrelatedDs, types.Number(3), CommitOptions{})
	assert.Equal(ErrMergeNeeded, err)
}

func TestDatabaseCommitAlreadyCommitted(t *testing.T) {
	assert := assert.New(t)
	db := NewDatabase(NewBatchStoreAdaptor(newMemStore()))
	defer db.Close()

	ds, err := db.GetDataset(bgCtx, "master")
	assert.NoError(err)
	ds, err = db.Commit(bgCtx, ds, types.Number(1), CommitOptions{})
	assert.NoError(err)

	_, err = db.Commit(bgCtx, ds, types.Number(1), CommitOptions{Parents: types.NewSet(types.NewRef(ds.Head()))})
	assert.Equal(ErrAlreadyCommitted, err)
}

func TestDatabaseDatasetsListsCommitted(t *testing.T) {
	assert := assert.New(t)
	db := NewDatabase(NewBatchStoreAdaptor(newMemStore()))
	defer db.Close()

	ds, err := db.GetDataset(bgCtx, "master")
	assert.NoError(err)
	_, err = db.Commit(bgCtx, ds, types.Number(1), CommitOptions{})
	assert.NoError(err)

	m, err := db.Datasets(bgCtx)
	assert.NoError(err)
	assert.Equal(1, m.Len())
	assert.True(m.Has(types.String("master")))
}

func TestDatabaseDelete(t *testing.T) {
	assert := assert.New(t)
	db := NewDatabase(NewBatchStoreAdaptor(newMemStore()))
	defer db.Close()

	ds, err := db.GetDataset(bgCtx, "master")
	assert.NoError(err)
	ds, err = db.Commit(bgCtx, ds, types.Number(1), CommitOptions{})
	assert.NoError(err)

	ds, err = db.Delete(bgCtx, ds)
	assert.NoError(err)
	_, ok := ds.MaybeHead()
	assert.False(ok)

	m, err := db.Datasets(bgCtx)
	assert.NoError(err)
	assert.False(m.Has(types.String("master")))
}

func TestTwoClientsWithEmptyDataset(t *testing.T) {
	assert := assert.New(t)
	storage := &chunks.MemoryStorage{}
	db1 := NewDatabase(NewBatchStoreAdaptor(storage.NewView()))
	db2 := NewDatabase(NewBatchStoreAdaptor(storage.NewView()))
	defer db1.Close()
	defer db2.Close()

	ds1, err := db1.GetDataset(bgCtx, "master")
	assert.NoError(err)
	ds1, err = db1.Commit(bgCtx, ds1, types.Number(1), CommitOptions{})
	assert.NoError(err)

	ds2, err := db2.GetDataset(bgCtx, "master")
	assert.NoError(err)
	v, ok := ds2.HeadValue()
	assert.True(ok)
	assert.Equal(types.Number(1), v)
}
