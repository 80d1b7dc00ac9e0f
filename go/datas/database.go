// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"context"
	"fmt"
	"time"

	"github.com/nomsdb/noms/go/hash"
	"github.com/nomsdb/noms/go/types"
)

// maxCommitAttempts bounds the CAS rebase-retry loop (spec §4.5 step 8):
// past this many lost races on the same dataset, Commit gives up rather
// than spin forever under pathological contention.
const maxCommitAttempts = 64

// CommitOptions configures a Database.Commit call: Parents names the new
// commit's immediate predecessors (defaulting to the dataset's current
// head, if any) and Meta is caller-supplied commit metadata.
type CommitOptions struct {
	Parents types.Set
	Meta    types.Struct
}

// Database is the named-root version history layer over a BatchStore
// (spec §4.5): its root is always a Map<String, Ref<Commit>> mapping
// dataset ID to head commit, and every mutation goes through a
// compare-and-swap against that root.
type Database interface {
	// ReadValue returns the Value addressed by h, or nil if absent.
	ReadValue(ctx context.Context, h hash.Hash) (types.Value, error)

	// WriteValue encodes and schedules v for write, returning a Ref to
	// it. Not durable until Flush.
	WriteValue(ctx context.Context, v types.Value) (types.Ref, error)

	// Datasets returns the current id -> Ref<Commit> map.
	Datasets(ctx context.Context) (types.Map, error)

	// GetDataset returns a snapshot of the named dataset. A dataset that
	// has never been committed to is returned with no error and no head.
	GetDataset(ctx context.Context, id string) (Dataset, error)

	// Commit creates a new commit with value v atop opts, swaps it in as
	// ds's new head, and returns the updated Dataset. If the dataset's
	// actual current head is not among the new commit's parents, Commit
	// rebases onto that head when it descends from ds's own head, and
	// otherwise returns ErrMergeNeeded (no merge policy is implemented --
	// spec Non-goals). Returns ErrAlreadyCommitted if the resulting head
	// would equal the current one, and ErrOptimisticLockFailed after
	// maxCommitAttempts lost root compare-and-swap rounds.
	Commit(ctx context.Context, ds Dataset, v types.Value, opts CommitOptions) (Dataset, error)

	// Delete removes ds's entry from the datasets map entirely.
	Delete(ctx context.Context, ds Dataset) (Dataset, error)

	// Flush pushes every pending write through to the backing BatchStore.
	Flush(ctx context.Context) error

	Close() error
}

type database struct {
	bs BatchStore
	vs *types.ValueStore
}

// NewDatabase wraps bs as a Database.
func NewDatabase(bs BatchStore) Database {
	return &database{bs: bs, vs: types.NewValueStore(bs)}
}

func (db *database) ReadValue(ctx context.Context, h hash.Hash) (types.Value, error) {
	return db.vs.ReadValue(ctx, h)
}

func (db *database) WriteValue(ctx context.Context, v types.Value) (types.Ref, error) {
	return db.vs.WriteValue(ctx, v)
}

func (db *database) Datasets(ctx context.Context) (types.Map, error) {
	rootHash, err := db.bs.Root(ctx)
	if err != nil {
		return types.Map{}, err
	}
	return db.readDatasetsMap(ctx, rootHash)
}

func (db *database) readDatasetsMap(ctx context.Context, rootHash hash.Hash) (types.Map, error) {
	if rootHash.IsEmpty() {
		return types.NewMap(), nil
	}
	v, err := db.vs.ReadValue(ctx, rootHash)
	if err != nil {
		return types.Map{}, err
	}
	if v == nil {
		return types.NewMap(), nil
	}
	m, ok := v.(types.Map)
	if !ok {
		return types.Map{}, fmt.Errorf("datas: root %s is not a Map", rootHash)
	}
	return m, nil
}

func (db *database) GetDataset(ctx context.Context, id string) (Dataset, error) {
	if !ValidateDatasetID(id) {
		return Dataset{}, ErrInvalidDatasetID
	}
	dsMap, err := db.Datasets(ctx)
	if err != nil {
		return Dataset{}, err
	}
	return db.resolveDataset(ctx, id, dsMap)
}

func (db *database) resolveDataset(ctx context.Context, id string, dsMap types.Map) (Dataset, error) {
	headRef, ok := dsMap.Get(types.String(id))
	if !ok {
		return newDataset(db, id, types.Struct{}, false), nil
	}
	r, ok := headRef.(types.Ref)
	if !ok {
		return Dataset{}, fmt.Errorf("datas: dataset %q head is not a Ref", id)
	}
	v, err := db.vs.ReadValue(ctx, r.TargetHash())
	if err != nil {
		return Dataset{}, err
	}
	c, ok := v.(types.Struct)
	if !ok {
		return Dataset{}, fmt.Errorf("datas: dataset %q head is not a commit", id)
	}
	return newDataset(db, id, c, true), nil
}

func (db *database) Commit(ctx context.Context, ds Dataset, v types.Value, opts CommitOptions) (Dataset, error) {
	if !ValidateDatasetID(ds.id) {
		return Dataset{}, ErrInvalidDatasetID
	}
	basis, hasBasis := ds.MaybeHead()
	parents := opts.Parents
	if hasBasis && parents.Len() == 0 {
		parents = types.NewSet(types.NewRef(basis))
	}

	bo := retryBackoff()
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		rootHash, err := db.bs.Root(ctx)
		if err != nil {
			return Dataset{}, err
		}
		dsMap, err := db.readDatasetsMap(ctx, rootHash)
		if err != nil {
			return Dataset{}, err
		}

		currentRef, hasCurrent := dsMap.Get(types.String(ds.id))
		if hasCurrent {
			r := currentRef.(types.Ref)
			if !parents.Has(r) {
				// Someone else committed since ds was read. Auto-rebase
				// (spec §4.5 step 8) only if the new head actually
				// descends from our own basis -- otherwise the two
				// histories have genuinely diverged and the caller must
				// resolve by hand (no merge policy, spec Non-goals).
				if !hasBasis {
					return Dataset{}, ErrMergeNeeded
				}
				currentVal, err := db.vs.ReadValue(ctx, r.TargetHash())
				if err != nil {
					return Dataset{}, err
				}
				currentCommit, ok := currentVal.(types.Struct)
				if !ok || !CommitDescendsFrom(ctx, db.vs, currentCommit, basis) {
					return Dataset{}, ErrMergeNeeded
				}
				parents = types.NewSet(r)
				continue
			}
		}

		commit := NewCommit(v, parents, opts.Meta)
		commitRef := types.NewRef(commit)
		if hasCurrent && currentRef.(types.Ref).TargetHash() == commitRef.TargetHash() {
			return Dataset{}, ErrAlreadyCommitted
		}

		if _, err := db.vs.WriteValue(ctx, commit); err != nil {
			return Dataset{}, err
		}
		newMap := dsMap.Set(types.String(ds.id), commitRef)
		if _, err := db.vs.WriteValue(ctx, newMap); err != nil {
			return Dataset{}, err
		}
		if err := db.vs.Flush(ctx); err != nil {
			return Dataset{}, err
		}

		ok, err := db.bs.Commit(ctx, newMap.Hash(), rootHash)
		if err != nil {
			return Dataset{}, err
		}
		if ok {
			return newDataset(db, ds.id, commit, true), nil
		}

		select {
		case <-ctx.Done():
			return Dataset{}, ctx.Err()
		case <-time.After(bo.Duration()):
		}
	}
	return Dataset{}, ErrOptimisticLockFailed
}

// Delete has no parents to reconcile -- it unconditionally removes ds's
// entry, re-reading the datasets map fresh on every attempt, so there's
// no divergent-history case for it to rebase against.
func (db *database) Delete(ctx context.Context, ds Dataset) (Dataset, error) {
	bo := retryBackoff()
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		rootHash, err := db.bs.Root(ctx)
		if err != nil {
			return Dataset{}, err
		}
		dsMap, err := db.readDatasetsMap(ctx, rootHash)
		if err != nil {
			return Dataset{}, err
		}
		if !dsMap.Has(types.String(ds.id)) {
			return newDataset(db, ds.id, types.Struct{}, false), nil
		}

		newMap := mapWithout(dsMap, types.String(ds.id))
		if _, err := db.vs.WriteValue(ctx, newMap); err != nil {
			return Dataset{}, err
		}
		if err := db.vs.Flush(ctx); err != nil {
			return Dataset{}, err
		}

		ok, err := db.bs.Commit(ctx, newMap.Hash(), rootHash)
		if err != nil {
			return Dataset{}, err
		}
		if ok {
			return newDataset(db, ds.id, types.Struct{}, false), nil
		}

		select {
		case <-ctx.Done():
			return Dataset{}, ctx.Err()
		case <-time.After(bo.Duration()):
		}
	}
	return Dataset{}, ErrOptimisticLockFailed
}

// mapWithout returns a copy of m with k removed -- types.Map has no
// native Delete, so this rebuilds via Iter, which is as cheap as the
// slice-backed Map representation gets (Non-goals exclude a chunked,
// structurally-sharing Map).
func mapWithout(m types.Map, k types.Value) types.Map {
	kv := make([]types.Value, 0, m.Len()*2)
	m.Iter(func(mk, mv types.Value) bool {
		if !mk.Equals(k) {
			kv = append(kv, mk, mv)
		}
		return false
	})
	return types.NewMap(kv...)
}

func (db *database) Flush(ctx context.Context) error {
	return db.vs.Flush(ctx)
}

func (db *database) Close() error {
	return db.bs.Close()
}
