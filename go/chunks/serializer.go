// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package chunks

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nomsdb/noms/go/hash"
)

// Serialize writes c to w framed as: hash[20 bytes] || len[uint32 BE] ||
// bytes[len]. This is the on-wire chunk envelope (spec §6); it is also the
// format the disk-backed OrderedPutCache spills to a temp file.
func Serialize(c Chunk, w io.Writer) error {
	h := c.Hash()
	if _, err := w.Write(h[:]); err != nil {
		return err
	}
	data := c.Data()
	if err := binary.Write(w, binary.BigEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// Deserialize reads a stream of envelopes from r, sending each decoded
// Chunk to out, until EOF. out is never closed by Deserialize; the caller
// owns that. Returns an error (without closing out) if the stream is
// truncated or malformed.
func Deserialize(r io.Reader, out chan<- *Chunk) error {
	for {
		var hBuf [hash.ByteLen]byte
		_, err := io.ReadFull(r, hBuf[:])
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("chunks: truncated hash: %w", err)
		}

		var length uint32
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return fmt.Errorf("chunks: truncated length: %w", err)
		}

		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return fmt.Errorf("chunks: truncated body: %w", err)
		}

		c := NewChunkWithHash(hash.Hash(hBuf), data)
		out <- &c
	}
}

// DeserializeToChan is a convenience wrapper that Deserializes and closes
// out regardless of outcome. Errors are dropped on the floor -- callers
// that need them should call Deserialize directly.
func DeserializeToChan(r io.Reader, out chan<- *Chunk) {
	defer close(out)
	Deserialize(r, out)
}
