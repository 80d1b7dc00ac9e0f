// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package chunks

import (
	"context"

	"github.com/nomsdb/noms/go/hash"
)

// TestStorage is shared backing state for one or more TestStoreViews,
// letting tests open multiple "connections" to the same store and assert
// on each one's call counts independently (mirroring a second client
// racing the one under test).
type TestStorage struct {
	MemoryStorage
}

// NewView returns a counting ChunkStore view over the shared storage.
func (t *TestStorage) NewView() *TestStoreView {
	return &TestStoreView{ChunkStore: t.MemoryStorage.NewView()}
}

// TestStoreView wraps a ChunkStore and counts calls, so tests can assert
// on exactly how much I/O an operation performed.
type TestStoreView struct {
	ChunkStore
	Reads  int
	Hases  int
	Writes int
}

func (s *TestStoreView) Get(ctx context.Context, h hash.Hash) (Chunk, error) {
	s.Reads++
	return s.ChunkStore.Get(ctx, h)
}

func (s *TestStoreView) GetMany(ctx context.Context, hashes hash.HashSet, found func(Chunk)) error {
	s.Reads += len(hashes)
	return s.ChunkStore.GetMany(ctx, hashes, found)
}

func (s *TestStoreView) Has(ctx context.Context, h hash.Hash) (bool, error) {
	s.Hases++
	return s.ChunkStore.Has(ctx, h)
}

func (s *TestStoreView) Put(ctx context.Context, c Chunk) error {
	s.Writes++
	return s.ChunkStore.Put(ctx, c)
}

// NewTestStore returns a fresh, unshared counting ChunkStore.
func NewTestStore() *TestStoreView {
	ts := &TestStorage{}
	return ts.NewView()
}
