// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"context"
	"sync"

	"github.com/nomsdb/noms/go/chunks"
	"github.com/nomsdb/noms/go/d"
	"github.com/nomsdb/noms/go/hash"
)

// BatchStore is the narrow interface ValueStore needs from the batching
// transport layer below it (the full surface, with Flush/Close/root CAS,
// lives in go/datas per spec §4.1 -- ValueStore only ever Get/Put/enqueues
// hints, it never drives a commit).
type BatchStore interface {
	Get(ctx context.Context, h hash.Hash) (chunks.Chunk, error)
	SchedulePut(ctx context.Context, c chunks.Chunk, hints hash.HashSet) error
	Flush(ctx context.Context) error
}

// ValueStore is a read-through/write-through cache of Values over a
// BatchStore (spec §4.4). Reading decodes and caches; writing encodes,
// enqueues the chunk for the next Flush, and remembers the hashes of any
// Refs the new Value points at as "hints" -- chunks the transport layer
// can assume the server already has or is about to have, so it need not
// re-validate their existence.
type ValueStore struct {
	bs BatchStore

	mu         sync.Mutex
	valueCache map[hash.Hash]Value
	hints      hash.HashSet
}

// NewValueStore wraps bs.
func NewValueStore(bs BatchStore) *ValueStore {
	return &ValueStore{
		bs:         bs,
		valueCache: map[hash.Hash]Value{},
		hints:      hash.NewHashSet(),
	}
}

// ReadValue returns the Value addressed by h, or nil if no such chunk
// exists. Decoded values are memoized for the life of the ValueStore, and
// every Ref one level below the decoded value is recorded as a hint for
// future writes (spec §4.4) -- a value read back out of the store is, by
// definition, already known to the backend, so its children are safe to
// vouch for.
func (vs *ValueStore) ReadValue(ctx context.Context, h hash.Hash) (Value, error) {
	if h.IsEmpty() {
		return nil, nil
	}

	vs.mu.Lock()
	if v, ok := vs.valueCache[h]; ok {
		vs.mu.Unlock()
		return v, nil
	}
	vs.mu.Unlock()

	c, err := vs.bs.Get(ctx, h)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, nil
	}
	v := DecodeValue(c)

	vs.mu.Lock()
	vs.valueCache[h] = v
	vs.recordHints(v)
	vs.mu.Unlock()
	return v, nil
}

// WriteValue encodes v, schedules it for write on the underlying
// BatchStore (not yet durable until Flush), and returns a Ref to it. The
// hints passed with this schedulePut are whatever this ValueStore has
// accumulated so far this Flush epoch; once v itself is scheduled, every
// Ref immediately reachable from v is added to that set for subsequent
// writes to draw on, per spec §4.4.
//
// Before scheduling the put, every Ref immediately embedded in v whose
// target this ValueStore already has cached is checked against Invariant
// 3 (spec §3): the cached target's actual Type must be a subtype of what
// the Ref claims. This is a synchronous, pre-write check -- per spec §7 a
// TypeMismatch never comes back as an error, it panics via d.Panic,
// exactly like the teacher's assertSubtype. A Ref whose target this
// ValueStore hasn't seen yet can't be checked without a network fetch;
// that slice of the invariant is left to whichever ReadValue eventually
// decodes the target.
func (vs *ValueStore) WriteValue(ctx context.Context, v Value) (Ref, error) {
	d.PanicIfTrue(v == nil, "cannot write nil Value")
	c := EncodeValue(v)

	vs.mu.Lock()
	hints := vs.currentHints()
	vs.assertRefTypesConsistent(v)
	vs.mu.Unlock()

	if err := vs.bs.SchedulePut(ctx, c, hints); err != nil {
		return Ref{}, err
	}

	r := NewRef(v)
	vs.mu.Lock()
	vs.valueCache[c.Hash()] = v
	vs.recordHints(v)
	vs.mu.Unlock()
	return r, nil
}

// recordHints adds the target hash of every Ref one level below v to the
// accumulated hint set. Callers hold vs.mu.
func (vs *ValueStore) recordHints(v Value) {
	for _, r := range RefHashes(v) {
		vs.hints.Insert(r.TargetHash())
	}
}

// assertRefTypesConsistent panics with a TypeMismatch if any Ref
// immediately embedded in v has a cached target whose actual Type isn't a
// subtype of what the Ref declares (Invariant 3, spec §3). Callers hold
// vs.mu.
func (vs *ValueStore) assertRefTypesConsistent(v Value) {
	for _, r := range RefHashes(v) {
		target, ok := vs.valueCache[r.TargetHash()]
		if !ok {
			continue
		}
		assertSubtype(r.TargetType(), target)
	}
}

func (vs *ValueStore) currentHints() hash.HashSet {
	out := hash.NewHashSet()
	out.InsertAll(vs.hints)
	return out
}

// Flush pushes every pending write through to the underlying BatchStore.
// Once it succeeds, every chunk this ValueStore has vouched for via hints
// is durable, so the accumulated hint set is cleared -- without this, it
// would grow for the life of the ValueStore instead of just one Flush
// epoch's worth of pending writes.
func (vs *ValueStore) Flush(ctx context.Context) error {
	if err := vs.bs.Flush(ctx); err != nil {
		return err
	}
	vs.mu.Lock()
	vs.hints = hash.NewHashSet()
	vs.mu.Unlock()
	return nil
}
