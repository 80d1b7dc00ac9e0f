// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"sync"

	"github.com/nomsdb/noms/go/chunks"
)

// chunkFuture is a promise for a single Chunk: the dedicated read-dispatch
// goroutine (spec §5) hands one of these to every caller whose request it
// coalesces into a batch, then resolves every future in that batch -- with
// either the chunk or an error -- once the batch's delegate.ReadBatch call
// returns. once guards against a future being resolved twice: a dispatch
// that fails after the delegate has already satisfied some of the batch
// must still be able to fail the rest without panicking on an
// already-closed channel.
type chunkFuture struct {
	ch   chan struct{}
	once sync.Once
	c    chunks.Chunk
	err  error
}

func newChunkFuture() *chunkFuture {
	return &chunkFuture{ch: make(chan struct{})}
}

// satisfy delivers c. Safe to call more than once; only the first call
// has any effect.
func (f *chunkFuture) satisfy(c chunks.Chunk) {
	f.once.Do(func() {
		f.c = c
		close(f.ch)
	})
}

// fail delivers err in place of a chunk.
func (f *chunkFuture) fail(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.ch)
	})
}

// done is closed once satisfy or fail has run, for selecting against a
// caller's ctx.Done().
func (f *chunkFuture) done() <-chan struct{} { return f.ch }

// result returns the resolved chunk and error. Only valid after done() has
// fired.
func (f *chunkFuture) result() (chunks.Chunk, error) { return f.c, f.err }

// wait blocks until resolved, with no ctx to race against.
func (f *chunkFuture) wait() (chunks.Chunk, error) {
	<-f.ch
	return f.c, f.err
}

// boolFuture is a promise for a single bool, used by Has.
type boolFuture struct {
	ch   chan struct{}
	once sync.Once
	b    bool
	err  error
}

func newBoolFuture() *boolFuture {
	return &boolFuture{ch: make(chan struct{})}
}

func (f *boolFuture) satisfy(b bool) {
	f.once.Do(func() {
		f.b = b
		close(f.ch)
	})
}

func (f *boolFuture) fail(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.ch)
	})
}

func (f *boolFuture) done() <-chan struct{} { return f.ch }

func (f *boolFuture) result() (bool, error) { return f.b, f.err }

func (f *boolFuture) wait() (bool, error) {
	<-f.ch
	return f.b, f.err
}
