// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"bytes"
	"container/list"
	"io/ioutil"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
	"github.com/google/uuid"

	"github.com/nomsdb/noms/go/chunks"
	"github.com/nomsdb/noms/go/d"
	"github.com/nomsdb/noms/go/hash"
)

// OrderedPutCache holds chunks scheduled for write, in append order, from
// the moment SchedulePut enqueues them until a successful drain confirms
// them written (spec §4.3). It never reorders: ExtractChunks always
// yields chunks in the order Append received them, so writeBatch's wire
// order matches application order even when nothing in the chunk
// encoding itself would require that.
//
// A failed drain leaves the cache untouched (Open Question resolution,
// SPEC_FULL.md §9): chunks are only dropped by DropUntil, called once a
// drain is confirmed durable.
type OrderedPutCache interface {
	// Append adds c to the end of the window. Appending a hash already
	// present is a no-op (the earlier occurrence is kept).
	Append(c chunks.Chunk) error

	// Get returns c and true if h is currently in the window.
	Get(h hash.Hash) (chunks.Chunk, bool)

	// Has reports whether h is currently in the window.
	Has(h hash.Hash) bool

	// Count returns the number of chunks currently retained.
	Count() int

	// ExtractChunks streams every retained chunk, in append order, to
	// emit.
	ExtractChunks(emit func(chunks.Chunk)) error

	// DropUntil discards every chunk appended at or before h (inclusive),
	// once the caller knows they're durable.
	DropUntil(h hash.Hash) error

	Destroy() error
}

// inMemoryPutCache is the default OrderedPutCache: a doubly-linked list
// for O(1) append and prefix-drop, backed by a map for O(1) Get/Has.
type inMemoryPutCache struct {
	mu       sync.Mutex
	order    *list.List
	elements map[hash.Hash]*list.Element
}

// newInMemoryPutCache returns an empty in-memory OrderedPutCache.
func newInMemoryPutCache() OrderedPutCache {
	return &inMemoryPutCache{
		order:    list.New(),
		elements: map[hash.Hash]*list.Element{},
	}
}

func (c *inMemoryPutCache) Append(ch chunks.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := ch.Hash()
	if _, ok := c.elements[h]; ok {
		return nil
	}
	c.elements[h] = c.order.PushBack(ch)
	return nil
}

func (c *inMemoryPutCache) Get(h hash.Hash) (chunks.Chunk, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.elements[h]
	if !ok {
		return chunks.EmptyChunk, false
	}
	return e.Value.(chunks.Chunk), true
}

func (c *inMemoryPutCache) Has(h hash.Hash) bool {
	_, ok := c.Get(h)
	return ok
}

func (c *inMemoryPutCache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *inMemoryPutCache) ExtractChunks(emit func(chunks.Chunk)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for e := c.order.Front(); e != nil; e = e.Next() {
		emit(e.Value.(chunks.Chunk))
	}
	return nil
}

func (c *inMemoryPutCache) DropUntil(h hash.Hash) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for e := c.order.Front(); e != nil; {
		next := e.Next()
		ch := e.Value.(chunks.Chunk)
		delete(c.elements, ch.Hash())
		c.order.Remove(e)
		if ch.Hash() == h {
			break
		}
		e = next
	}
	return nil
}

func (c *inMemoryPutCache) Destroy() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.elements = map[hash.Hash]*list.Element{}
	return nil
}

// diskPutCache spills appended chunks to a temp file, immediately
// serialized (spec §4.3's wire envelope), and keeps only an
// offset/length index in memory. ExtractChunks mmaps the file once per
// call rather than re-reading through the page cache chunk by chunk --
// the reason this cache reaches for edsrzf/mmap-go instead of a plain
// os.File: repeated small Reads at scattered offsets would otherwise
// dominate a large drain.
type diskPutCache struct {
	mu      sync.Mutex
	f       *os.File
	offset  int64
	index   map[hash.Hash]extent
	order   []hash.Hash
	dropped int
}

type extent struct {
	offset int64
	length int64
}

// newDiskPutCache returns an OrderedPutCache that spills to a temp file
// under dir (the OS default temp dir if dir is ""). The file name is
// suffixed with a uuid rather than left to ioutil.TempFile's own counter,
// so two RemoteBatchStores opened concurrently in the same process never
// collide on a guessable name.
func newDiskPutCache(dir string) (OrderedPutCache, error) {
	f, err := ioutil.TempFile(dir, "noms-put-cache-"+uuid.New().String()+"-")
	if err != nil {
		return nil, err
	}
	return &diskPutCache{f: f, index: map[hash.Hash]extent{}}, nil
}

func (c *diskPutCache) Append(ch chunks.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := ch.Hash()
	if _, ok := c.index[h]; ok {
		return nil
	}
	start := c.offset
	var buf bytes.Buffer
	if err := chunks.Serialize(ch, &buf); err != nil {
		return err
	}
	n, err := c.f.WriteAt(buf.Bytes(), start)
	if err != nil {
		return err
	}
	header := int64(hash.ByteLen + 4)
	c.index[h] = extent{offset: start + header, length: int64(n) - header}
	c.order = append(c.order, h)
	c.offset += int64(n)
	return nil
}

func (c *diskPutCache) Get(h hash.Hash) (chunks.Chunk, bool) {
	c.mu.Lock()
	ext, ok := c.index[h]
	c.mu.Unlock()
	if !ok {
		return chunks.EmptyChunk, false
	}
	buf := make([]byte, ext.length)
	_, err := c.f.ReadAt(buf, ext.offset)
	d.PanicIfError(err)
	return chunks.NewChunkWithHash(h, buf), true
}

func (c *diskPutCache) Has(h hash.Hash) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.index[h]
	return ok
}

func (c *diskPutCache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order) - c.dropped
}

// ExtractChunks mmaps the backing file once and streams every retained
// chunk in append order.
func (c *diskPutCache) ExtractChunks(emit func(chunks.Chunk)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.offset == 0 {
		return nil
	}
	m, err := mmap.Map(c.f, mmap.RDONLY, 0)
	if err != nil {
		return err
	}
	defer m.Unmap()
	for _, h := range c.order[c.dropped:] {
		ext := c.index[h]
		buf := make([]byte, ext.length)
		copy(buf, m[ext.offset:ext.offset+ext.length])
		emit(chunks.NewChunkWithHash(h, buf))
	}
	return nil
}

func (c *diskPutCache) DropUntil(h hash.Hash) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := c.dropped; i < len(c.order); i++ {
		hh := c.order[i]
		last := hh == h
		delete(c.index, hh)
		c.dropped = i + 1
		if last {
			break
		}
	}
	return nil
}

func (c *diskPutCache) Destroy() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := c.f.Name()
	c.f.Close()
	return os.Remove(name)
}
