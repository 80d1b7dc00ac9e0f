// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nomsdb/noms/go/datas"
	"github.com/nomsdb/noms/go/types"
)

func TestOpenDatabaseMem(t *testing.T) {
	assert := assert.New(t)
	db, err := openDatabase("mem")
	assert.NoError(err)
	assert.NotNil(db)
	defer db.Close()
}

func TestRunLogEmptyDataset(t *testing.T) {
	assert := assert.New(t)
	// A dataset that's never been committed to shouldn't error, just print
	// the "no commits" message and return nil.
	assert.NoError(runLog(context.Background(), "mem", "nope"))
}

func TestRunShowRootEmptyDatabase(t *testing.T) {
	assert := assert.New(t)
	assert.NoError(runShowRoot(context.Background(), "mem"))
}

func TestRunSyncNoCommits(t *testing.T) {
	assert := assert.New(t)
	err := runSync(context.Background(), "mem", "mem", "missing")
	assert.Error(err)
}

func TestCopyReachableCopiesCommitChain(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	src, err := openDatabase("mem")
	assert.NoError(err)
	defer src.Close()
	dst, err := openDatabase("mem")
	assert.NoError(err)
	defer dst.Close()

	ds, err := src.GetDataset(ctx, "ds")
	assert.NoError(err)
	ds, err = src.Commit(ctx, ds, types.Number(1), datas.CommitOptions{})
	assert.NoError(err)
	ds, err = src.Commit(ctx, ds, types.Number(2), datas.CommitOptions{})
	assert.NoError(err)

	head, ok := ds.MaybeHead()
	assert.True(ok)

	count, err := copyReachable(ctx, src, dst, types.NewRef(head).TargetHash())
	assert.NoError(err)
	assert.True(count >= 1)

	got, err := dst.ReadValue(ctx, types.NewRef(head).TargetHash())
	assert.NoError(err)
	assert.NotNil(got)
}

func TestDescribeValueNil(t *testing.T) {
	assert.Equal(t, "<nil>", describeValue(nil))
}
