// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package datas implements the batched chunk-transport and
// commit/dataset consistency layer: BatchStore batches and validates
// writes against a possibly-remote backend, and Database/Dataset/Commit
// build a named-root version history on top of it.
package datas

import (
	"context"

	"github.com/nomsdb/noms/go/chunks"
	"github.com/nomsdb/noms/go/hash"
)

// BatchStore is a batch-oriented analogue of chunks.ChunkStore: instead
// of Put(), SchedulePut() enqueues a chunk to be sent at a possibly later
// time, letting an implementation coalesce many small writes (and the
// reads needed to validate them) into a few round trips (spec §4.1).
//
// types.BatchStore is the narrow Get/SchedulePut/Flush subset a
// ValueStore actually calls; every BatchStore here satisfies that
// interface structurally.
type BatchStore interface {
	// Get returns the Chunk for h, or chunks.EmptyChunk if absent.
	Get(ctx context.Context, h hash.Hash) (chunks.Chunk, error)

	// GetMany invokes found once per requested hash that's present.
	GetMany(ctx context.Context, hashes hash.HashSet, found func(chunks.Chunk)) error

	// Has reports whether h is present.
	Has(ctx context.Context, h hash.Hash) (bool, error)

	// SchedulePut enqueues a write for c. hints names chunks that already
	// transitively cover many of c's dependencies, letting an
	// implementation validate c without resolving every embedded ref
	// directly (spec §4.1). c is not guaranteed durable until Flush
	// returns.
	SchedulePut(ctx context.Context, c chunks.Chunk, hints hash.HashSet) error

	// Flush blocks until every chunk scheduled so far is durable.
	Flush(ctx context.Context) error

	// Root returns the store's current root hash.
	Root(ctx context.Context) (hash.Hash, error)

	// Commit flushes pending writes, then atomically swaps the root from
	// last to current. Returns false, not an error, if the root was not
	// last at the time of the attempt.
	Commit(ctx context.Context, current, last hash.Hash) (bool, error)

	Close() error
}

// BatchStoreAdaptor adapts a chunks.ChunkStore directly into a
// BatchStore, with no batching, coalescing, or deferred validation of
// its own -- appropriate only when the backing ChunkStore's Put is cheap
// enough to call synchronously per chunk (an in-process store, as
// opposed to one reached over a RemoteBatchStore's Delegate).
type BatchStoreAdaptor struct {
	cs chunks.ChunkStore
}

// NewBatchStoreAdaptor wraps cs. The returned BatchStore takes ownership
// of cs: closing it closes cs.
func NewBatchStoreAdaptor(cs chunks.ChunkStore) BatchStore {
	return &BatchStoreAdaptor{cs}
}

func (a *BatchStoreAdaptor) Get(ctx context.Context, h hash.Hash) (chunks.Chunk, error) {
	return a.cs.Get(ctx, h)
}

func (a *BatchStoreAdaptor) GetMany(ctx context.Context, hashes hash.HashSet, found func(chunks.Chunk)) error {
	return a.cs.GetMany(ctx, hashes, found)
}

func (a *BatchStoreAdaptor) Has(ctx context.Context, h hash.Hash) (bool, error) {
	return a.cs.Has(ctx, h)
}

// SchedulePut ignores hints and calls Put synchronously.
func (a *BatchStoreAdaptor) SchedulePut(ctx context.Context, c chunks.Chunk, hints hash.HashSet) error {
	return a.cs.Put(ctx, c)
}

func (a *BatchStoreAdaptor) Flush(ctx context.Context) error { return nil }

func (a *BatchStoreAdaptor) Root(ctx context.Context) (hash.Hash, error) {
	return a.cs.Root(ctx)
}

func (a *BatchStoreAdaptor) Commit(ctx context.Context, current, last hash.Hash) (bool, error) {
	return a.cs.Commit(ctx, current, last)
}

func (a *BatchStoreAdaptor) Close() error {
	return a.cs.Close()
}
