// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package hash

// HashSlice is a sortable slice of Hash.
type HashSlice []Hash

func (hs HashSlice) Len() int           { return len(hs) }
func (hs HashSlice) Less(i, j int) bool { return hs[i].Less(hs[j]) }
func (hs HashSlice) Swap(i, j int)      { hs[i], hs[j] = hs[j], hs[i] }

// Equals reports whether hs and other contain the same Hashes in the same
// order.
func (hs HashSlice) Equals(other HashSlice) bool {
	if len(hs) != len(other) {
		return false
	}
	for i, h := range hs {
		if h != other[i] {
			return false
		}
	}
	return true
}
