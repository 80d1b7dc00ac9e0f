// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package chunks defines the atomic unit of persistence in noms -- the
// Chunk -- along with its wire envelope and the ChunkStore interface that
// synchronous backends implement.
package chunks

import (
	"github.com/nomsdb/noms/go/d"
	"github.com/nomsdb/noms/go/hash"
)

// Chunk is an immutable (bytes, hash) pair. The hash is computed once,
// eagerly, when NewChunk builds the Chunk (NewChunkWithHash takes it from
// the caller instead); it is not deferred until Hash is first called.
// Identical bytes always yield identical hashes.
type Chunk struct {
	data []byte
	h    hash.Hash
}

// EmptyChunk is the Chunk with zero-length data, returned by reads that
// find nothing at the requested hash.
var EmptyChunk = NewChunk([]byte{})

// NewChunk wraps data as a Chunk, computing its Hash immediately. Callers
// must not mutate data after this call.
func NewChunk(data []byte) Chunk {
	return Chunk{data: data, h: hash.Of(data)}
}

// NewChunkWithHash wraps data as a Chunk whose hash is already known,
// skipping the digest computation. Used when the hash was obtained
// elsewhere (e.g. from a remote store's response) and is trusted.
func NewChunkWithHash(h hash.Hash, data []byte) Chunk {
	return Chunk{data: data, h: h}
}

// Hash returns c's content hash.
func (c Chunk) Hash() hash.Hash {
	return c.h
}

// Data returns c's raw bytes. Callers must not mutate the returned slice.
func (c Chunk) Data() []byte {
	return c.data
}

// IsEmpty reports whether c has zero-length data.
func (c Chunk) IsEmpty() bool {
	return len(c.data) == 0
}

// ChunkWriter accumulates bytes via io.Writer and produces a Chunk from
// Chunk(); Close only stops further Writes. It exists so that value encoders can stream into a Chunk
// without a separate buffer-then-copy step.
type ChunkWriter struct {
	buf    []byte
	closed bool
	done   bool
}

// NewChunkWriter returns a fresh ChunkWriter.
func NewChunkWriter() *ChunkWriter {
	return &ChunkWriter{buf: make([]byte, 0, 256)}
}

// Write appends p to the in-progress chunk. Panics if called after Close
// or Chunk.
func (w *ChunkWriter) Write(p []byte) (int, error) {
	d.PanicIfTrue(w.closed, "Write() after Close()")
	d.PanicIfTrue(w.done, "Write() after Chunk()")
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// Close finalizes the writer. Further Writes panic.
func (w *ChunkWriter) Close() error {
	w.closed = true
	return nil
}

// Chunk finalizes the writer (as Close does) and returns the accumulated
// bytes as a Chunk.
func (w *ChunkWriter) Chunk() Chunk {
	w.closed = true
	w.done = true
	return NewChunk(w.buf)
}
