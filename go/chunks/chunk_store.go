// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package chunks

import (
	"context"

	"github.com/nomsdb/noms/go/constants"
	"github.com/nomsdb/noms/go/hash"
)

// ChunkStore is the synchronous, non-batched interface a storage backend
// implements. datas.BatchStoreAdaptor wraps one directly; datas.storeDelegate
// wraps one as a datas.Delegate for use by a datas.RemoteBatchStore.
type ChunkStore interface {
	// Get returns the Chunk for h, or EmptyChunk if h isn't present.
	Get(ctx context.Context, h hash.Hash) (Chunk, error)

	// GetMany invokes found once per requested hash that's present.
	GetMany(ctx context.Context, hashes hash.HashSet, found func(Chunk)) error

	// Has reports whether h is present.
	Has(ctx context.Context, h hash.Hash) (bool, error)

	// HasMany returns the subset of hashes absent from the store (mirroring
	// the teacher's convention of reporting what's missing, so a caller
	// validating a hint set can tell at a glance whether it's complete).
	HasMany(ctx context.Context, hashes hash.HashSet) (hash.HashSet, error)

	// Put durably persists c. Implementations may buffer internally but
	// must flush before Root/Commit observes effects of earlier Puts from
	// the same caller.
	Put(ctx context.Context, c Chunk) error

	// Version returns the store's wire version, checked against
	// constants.NomsVersion by any remote-facing caller.
	Version() string

	// Rebase refreshes any client-side state cached from a previous Root
	// call.
	Rebase(ctx context.Context) error

	// Root returns the current root hash, or the empty Hash for a fresh
	// store.
	Root(ctx context.Context) (hash.Hash, error)

	// Commit atomically swaps the root from last to current, returning
	// false (not an error) if the store's root wasn't last at the time of
	// the attempt.
	Commit(ctx context.Context, current, last hash.Hash) (bool, error)

	// Stats returns backend-specific counters; StatsSummary renders them.
	Stats() interface{}
	StatsSummary() string

	Close() error
}

// MemoryStorage is the backing state for one or more MemoryStoreViews that
// share it -- analogous to the teacher's MemoryStorage/TestStorage split,
// which lets multiple "database handles" observe the same underlying
// bytes without sharing a ChunkStore value's mutable Stats.
type MemoryStorage struct {
	data map[hash.Hash]Chunk
	root hash.Hash
}

// NewView returns a ChunkStore backed by ms. Calls through any view mutate
// the same shared state.
func (ms *MemoryStorage) NewView() ChunkStore {
	if ms.data == nil {
		ms.data = map[hash.Hash]Chunk{}
	}
	return &memoryStoreView{ms: ms}
}

type memoryStoreView struct {
	ms *MemoryStorage
}

func (v *memoryStoreView) Get(ctx context.Context, h hash.Hash) (Chunk, error) {
	if c, ok := v.ms.data[h]; ok {
		return c, nil
	}
	return EmptyChunk, nil
}

func (v *memoryStoreView) GetMany(ctx context.Context, hashes hash.HashSet, found func(Chunk)) error {
	for h := range hashes {
		if c, ok := v.ms.data[h]; ok {
			found(c)
		}
	}
	return nil
}

func (v *memoryStoreView) Has(ctx context.Context, h hash.Hash) (bool, error) {
	_, ok := v.ms.data[h]
	return ok, nil
}

func (v *memoryStoreView) HasMany(ctx context.Context, hashes hash.HashSet) (hash.HashSet, error) {
	absent := hash.HashSet{}
	for h := range hashes {
		if _, ok := v.ms.data[h]; !ok {
			absent.Insert(h)
		}
	}
	return absent, nil
}

func (v *memoryStoreView) Put(ctx context.Context, c Chunk) error {
	v.ms.data[c.Hash()] = c
	return nil
}

func (v *memoryStoreView) Version() string { return constants.NomsVersion }

func (v *memoryStoreView) Rebase(ctx context.Context) error { return nil }

func (v *memoryStoreView) Root(ctx context.Context) (hash.Hash, error) {
	return v.ms.root, nil
}

func (v *memoryStoreView) Commit(ctx context.Context, current, last hash.Hash) (bool, error) {
	if v.ms.root != last {
		return false, nil
	}
	v.ms.root = current
	return true, nil
}

func (v *memoryStoreView) Stats() interface{}     { return nil }
func (v *memoryStoreView) StatsSummary() string   { return "MemoryStore: no stats" }
func (v *memoryStoreView) Close() error           { return nil }

// NewMemoryStore returns a fresh, unshared in-memory ChunkStore.
func NewMemoryStore() ChunkStore {
	ms := &MemoryStorage{}
	return ms.NewView()
}
