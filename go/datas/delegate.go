// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"context"

	"github.com/nomsdb/noms/go/chunks"
	"github.com/nomsdb/noms/go/hash"
)

// ReadRequest coalesces every outstanding request for one hash: several
// callers can be waiting on the same chunk (a Get and a concurrent Has,
// or two Gets racing in before a batch is dispatched) and all of them are
// satisfied by the single read the Delegate ends up performing.
type ReadRequest struct {
	wantHas   bool
	chunkFuts []*chunkFuture
	boolFuts  []*boolFuture
}

// satisfy resolves every future coalesced into this request with c (or
// with c.IsEmpty()'s negation, for the bool futures of a Has request).
func (r ReadRequest) satisfy(c chunks.Chunk) {
	for _, f := range r.chunkFuts {
		f.satisfy(c)
	}
	for _, f := range r.boolFuts {
		f.satisfy(!c.IsEmpty())
	}
}

// fail resolves every future coalesced into this request with err. A
// future already resolved by satisfy is left untouched (chunkFuture/
// boolFuture only ever apply their first resolution), so this is safe to
// call as a catch-all after a failed ReadBatch even when the Delegate
// partially succeeded before erroring out.
func (r ReadRequest) fail(err error) {
	for _, f := range r.chunkFuts {
		f.fail(err)
	}
	for _, f := range r.boolFuts {
		f.fail(err)
	}
}

// Delegate is the pluggable transport RemoteBatchStore drives: it knows
// how to turn a coalesced batch of reads into however many requests the
// backend needs, how to ship a batch of writes, and how to read/swap the
// root (spec §6). storeDelegate wraps a local chunks.ChunkStore;
// httpDelegate speaks the wire protocol in SPEC_FULL.md §4.9.
type Delegate interface {
	// ReadBatch resolves every request in reqs, calling satisfy (and,
	// for wantHas requests, the bool future) on each -- every request in
	// reqs must be resolved before ReadBatch returns.
	ReadBatch(ctx context.Context, reqs map[hash.Hash]ReadRequest) error

	// WriteBatch ships every chunk produce emits to the backend, along
	// with hints. Chunks are emitted in the order produce yields them,
	// which RemoteBatchStore guarantees is append (write) order.
	WriteBatch(ctx context.Context, hints hash.HashSet, produce func(emit func(chunks.Chunk)) error) error

	// GetRoot returns the backend's current root hash.
	GetRoot(ctx context.Context) (hash.Hash, error)

	// UpdateRoot attempts to CAS the backend's root from lastHash to
	// newHash, returning false (not an error) on a stale lastHash.
	UpdateRoot(ctx context.Context, newHash, lastHash hash.Hash) (bool, error)

	Close() error
}

// storeDelegate implements Delegate directly over a local
// chunks.ChunkStore -- the Delegate used for an in-process (non-networked)
// Database, and by tests that exercise RemoteBatchStore without a real
// server.
type storeDelegate struct {
	cs chunks.ChunkStore
}

// newStoreDelegate wraps cs as a Delegate.
func newStoreDelegate(cs chunks.ChunkStore) Delegate {
	return &storeDelegate{cs}
}

func (d *storeDelegate) ReadBatch(ctx context.Context, reqs map[hash.Hash]ReadRequest) error {
	var firstErr error
	for h, req := range reqs {
		c, err := d.cs.Get(ctx, h)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			req.fail(err)
			continue
		}
		req.satisfy(c)
	}
	return firstErr
}

func (d *storeDelegate) WriteBatch(ctx context.Context, hints hash.HashSet, produce func(emit func(chunks.Chunk)) error) error {
	var putErr error
	err := produce(func(c chunks.Chunk) {
		if putErr != nil {
			return
		}
		putErr = d.cs.Put(ctx, c)
	})
	if err != nil {
		return err
	}
	return putErr
}

func (d *storeDelegate) GetRoot(ctx context.Context) (hash.Hash, error) {
	return d.cs.Root(ctx)
}

func (d *storeDelegate) UpdateRoot(ctx context.Context, newHash, lastHash hash.Hash) (bool, error) {
	return d.cs.Commit(ctx, newHash, lastHash)
}

func (d *storeDelegate) Close() error {
	return d.cs.Close()
}
