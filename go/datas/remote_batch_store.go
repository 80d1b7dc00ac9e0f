// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"context"
	"sync"

	"github.com/nomsdb/noms/go/chunks"
	"github.com/nomsdb/noms/go/hash"
)

// maxReads bounds how many distinct read requests one dispatch coalesces
// before shipping the batch, rather than draining the queue without limit
// (spec §4.2).
const maxReads = 4096

type rbsState int32

const (
	rbsOpen rbsState = iota
	rbsFlushing
	rbsClosing
	rbsClosed
)

// readEnqueue is one caller's read request, handed to the dedicated
// read-dispatch goroutine over the reads channel.
type readEnqueue struct {
	h  hash.Hash
	cf *chunkFuture
	bf *boolFuture
}

// RemoteBatchStore is the BatchStore that talks to a Delegate (spec
// §4.2): reads are handed to a dedicated dispatch goroutine that
// coalesces everything it finds waiting into one delegate.ReadBatch call
// (spec §5's "batched, concurrent chunk I/O"), and writes accumulate in
// an OrderedPutCache and are drained, in append order, by at most one
// in-flight drain at a time.
//
// State machine: Open is the steady state; a Flush moves Open ->
// Flushing -> Open; Close moves (Open|Flushing's follow-up) -> Closing
// -> Closed. Every public method checks the state first and returns
// ErrClosed once Closing/Closed.
type RemoteBatchStore struct {
	delegate Delegate

	reads      chan readEnqueue
	closeReads chan struct{}
	readWg     sync.WaitGroup

	mu    sync.Mutex
	state rbsState

	// flushMu serializes the actual drain: a second Flush/Commit arriving
	// while one is in flight blocks here instead of racing it, and joins
	// its result (in effect) by finding the put cache already empty once
	// unblocked (spec §4.2/§5's "a second invocation joins the first").
	flushMu    sync.Mutex
	putCache   OrderedPutCache
	lastHinted hash.HashSet
}

// NewRemoteBatchStore wraps delegate, using an in-memory OrderedPutCache
// for pending writes, and starts the dedicated read-dispatch goroutine.
func NewRemoteBatchStore(delegate Delegate) *RemoteBatchStore {
	return newRemoteBatchStore(delegate, newInMemoryPutCache())
}

// NewRemoteBatchStoreWithCacheDir is like NewRemoteBatchStore, but spills
// pending writes to a temp file under dir (spec §4.3's diskPutCache)
// instead of holding them all in memory between Flushes -- for a
// write-heavy session whose pending chunks would otherwise grow the
// process's resident set without bound. dir == "" uses the OS default
// temp dir.
func NewRemoteBatchStoreWithCacheDir(delegate Delegate, dir string) (*RemoteBatchStore, error) {
	cache, err := newDiskPutCache(dir)
	if err != nil {
		return nil, err
	}
	return newRemoteBatchStore(delegate, cache), nil
}

func newRemoteBatchStore(delegate Delegate, cache OrderedPutCache) *RemoteBatchStore {
	rbs := &RemoteBatchStore{
		delegate:   delegate,
		reads:      make(chan readEnqueue, maxReads),
		closeReads: make(chan struct{}),
		putCache:   cache,
		lastHinted: hash.NewHashSet(),
	}
	rbs.readWg.Add(1)
	go rbs.runReadDispatch()
	return rbs
}

func (rbs *RemoteBatchStore) checkOpen() error {
	rbs.mu.Lock()
	defer rbs.mu.Unlock()
	if rbs.state == rbsClosing || rbs.state == rbsClosed {
		return ErrClosed
	}
	return nil
}

// Get returns the chunk for h, checking pending (un-flushed) writes first.
func (rbs *RemoteBatchStore) Get(ctx context.Context, h hash.Hash) (chunks.Chunk, error) {
	if err := rbs.checkOpen(); err != nil {
		return chunks.EmptyChunk, err
	}
	if c, ok := rbs.putCache.Get(h); ok {
		return c, nil
	}
	fut := newChunkFuture()
	if err := rbs.enqueueRead(ctx, h, fut, nil); err != nil {
		return chunks.EmptyChunk, err
	}
	select {
	case <-fut.done():
		return fut.result()
	case <-ctx.Done():
		return chunks.EmptyChunk, ctx.Err()
	}
}

// GetMany invokes found once per hash in hashes that's present.
func (rbs *RemoteBatchStore) GetMany(ctx context.Context, hashes hash.HashSet, found func(chunks.Chunk)) error {
	if err := rbs.checkOpen(); err != nil {
		return err
	}
	futs := make(map[hash.Hash]*chunkFuture, len(hashes))
	for h := range hashes {
		if c, ok := rbs.putCache.Get(h); ok {
			found(c)
			continue
		}
		fut := newChunkFuture()
		if err := rbs.enqueueRead(ctx, h, fut, nil); err != nil {
			return err
		}
		futs[h] = fut
	}
	for _, fut := range futs {
		select {
		case <-fut.done():
			c, err := fut.result()
			if err != nil {
				return err
			}
			if !c.IsEmpty() {
				found(c)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Has reports whether h is present, locally pending or on the backend.
func (rbs *RemoteBatchStore) Has(ctx context.Context, h hash.Hash) (bool, error) {
	if err := rbs.checkOpen(); err != nil {
		return false, err
	}
	if rbs.putCache.Has(h) {
		return true, nil
	}
	fut := newBoolFuture()
	if err := rbs.enqueueRead(ctx, h, nil, fut); err != nil {
		return false, err
	}
	select {
	case <-fut.done():
		return fut.result()
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// enqueueRead hands h off to the read-dispatch goroutine.
func (rbs *RemoteBatchStore) enqueueRead(ctx context.Context, h hash.Hash, cf *chunkFuture, bf *boolFuture) error {
	select {
	case rbs.reads <- readEnqueue{h: h, cf: cf, bf: bf}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runReadDispatch is the dedicated read-dispatch goroutine (spec §5): it
// owns rbs.reads entirely, so dispatches never race each other, and a
// request that arrives while a dispatch is already running simply waits
// in the channel for the next one -- unlike an inline-dispatch design,
// there's no window where an enqueued request is left unsent.
func (rbs *RemoteBatchStore) runReadDispatch() {
	defer rbs.readWg.Done()
	for {
		select {
		case e := <-rbs.reads:
			rbs.dispatchRead(e)
		case <-rbs.closeReads:
			rbs.drainReads()
			return
		}
	}
}

// drainReads dispatches everything left in rbs.reads without blocking,
// so Close doesn't strand a caller whose request landed in the channel
// just as the dispatch goroutine was asked to stop.
func (rbs *RemoteBatchStore) drainReads() {
	for {
		select {
		case e := <-rbs.reads:
			rbs.dispatchRead(e)
		default:
			return
		}
	}
}

// dispatchRead coalesces e with every other request currently sitting in
// rbs.reads (up to maxReads) into one batch, then hands the whole batch
// to the Delegate in a single ReadBatch call -- this is what makes a
// burst of concurrent Get/Has/GetMany calls collapse into one backend
// round trip instead of one each.
func (rbs *RemoteBatchStore) dispatchRead(e readEnqueue) {
	batch := map[hash.Hash]ReadRequest{}
	addToReadBatch(batch, e)
drain:
	for len(batch) < maxReads {
		select {
		case next := <-rbs.reads:
			addToReadBatch(batch, next)
		default:
			break drain
		}
	}
	// Dispatched against a background context, not any one caller's --
	// the batch coalesces requests from potentially many unrelated
	// callers, so no single caller's cancellation should abort reads the
	// others are still waiting on (each caller still races its own ctx
	// against fut.done() in Get/Has/GetMany).
	if err := rbs.delegate.ReadBatch(context.Background(), batch); err != nil {
		for _, req := range batch {
			req.fail(err)
		}
	}
}

func addToReadBatch(batch map[hash.Hash]ReadRequest, e readEnqueue) {
	req := batch[e.h]
	if e.cf != nil {
		req.chunkFuts = append(req.chunkFuts, e.cf)
	}
	if e.bf != nil {
		req.wantHas = true
		req.boolFuts = append(req.boolFuts, e.bf)
	}
	batch[e.h] = req
}

// SchedulePut enqueues c for the next Flush/drain.
func (rbs *RemoteBatchStore) SchedulePut(ctx context.Context, c chunks.Chunk, hints hash.HashSet) error {
	if err := rbs.checkOpen(); err != nil {
		return err
	}
	rbs.mu.Lock()
	rbs.lastHinted.InsertAll(hints)
	rbs.mu.Unlock()
	return rbs.putCache.Append(c)
}

// Flush drains every pending write through the Delegate, in append
// order, and clears them from the put cache only once the drain
// succeeds.
func (rbs *RemoteBatchStore) Flush(ctx context.Context) error {
	if err := rbs.checkOpen(); err != nil {
		return err
	}
	return rbs.doFlush(ctx)
}

// doFlush performs the actual drain, regardless of state -- used both by
// Flush (which checks Open first) and Close (which has already moved the
// state to Closing and still needs to drain before fully closing).
// flushMu makes the whole thing one drain at a time: a second caller
// blocks on the lock instead of launching a concurrent WriteBatch over
// the same put-cache range, and by the time it gets the lock the first
// drain's work is already done.
func (rbs *RemoteBatchStore) doFlush(ctx context.Context) error {
	rbs.flushMu.Lock()
	defer rbs.flushMu.Unlock()

	rbs.mu.Lock()
	wasOpen := rbs.state == rbsOpen
	if wasOpen {
		rbs.state = rbsFlushing
	}
	hints := rbs.lastHinted
	rbs.lastHinted = hash.NewHashSet()
	rbs.mu.Unlock()

	defer func() {
		rbs.mu.Lock()
		if rbs.state == rbsFlushing {
			rbs.state = rbsOpen
		}
		rbs.mu.Unlock()
	}()

	if rbs.putCache.Count() == 0 {
		return nil
	}

	var lastHash hash.Hash
	err := rbs.delegate.WriteBatch(ctx, hints, func(emit func(chunks.Chunk)) error {
		return rbs.putCache.ExtractChunks(func(c chunks.Chunk) {
			lastHash = c.Hash()
			emit(c)
		})
	})
	if err != nil {
		// Per spec §9: a failed drain retains every chunk, indefinitely,
		// until a later Flush succeeds.
		return err
	}
	return rbs.putCache.DropUntil(lastHash)
}

// Root returns the backend's current root hash.
func (rbs *RemoteBatchStore) Root(ctx context.Context) (hash.Hash, error) {
	if err := rbs.checkOpen(); err != nil {
		return hash.Hash{}, err
	}
	return rbs.delegate.GetRoot(ctx)
}

// Commit flushes pending writes, then attempts the root CAS.
func (rbs *RemoteBatchStore) Commit(ctx context.Context, current, last hash.Hash) (bool, error) {
	if err := rbs.checkOpen(); err != nil {
		return false, err
	}
	if err := rbs.doFlush(ctx); err != nil {
		return false, err
	}
	return rbs.delegate.UpdateRoot(ctx, current, last)
}

// Close drains any pending writes, releases the put cache's own
// resources (a no-op for inMemoryPutCache, a temp file removal for
// diskPutCache), and releases the Delegate.
func (rbs *RemoteBatchStore) Close() error {
	rbs.mu.Lock()
	if rbs.state == rbsClosing || rbs.state == rbsClosed {
		rbs.mu.Unlock()
		return ErrClosed
	}
	rbs.state = rbsClosing
	rbs.mu.Unlock()

	close(rbs.closeReads)
	rbs.readWg.Wait()

	err := rbs.doFlush(context.Background())
	if destroyErr := rbs.putCache.Destroy(); err == nil {
		err = destroyErr
	}

	rbs.mu.Lock()
	rbs.state = rbsClosed
	rbs.mu.Unlock()

	if err != nil {
		return err
	}
	return rbs.delegate.Close()
}
