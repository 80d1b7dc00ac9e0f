// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "sync"

// typeCache interns Types by structural description so that Equals is
// cheap and two independently-built Types of the same shape are ==.
//
// Per spec §5 most of this module runs under the single-threaded
// cooperative scheduler, but Type construction can happen concurrently
// with decode on a separate goroutine reading a network response, so this
// cache (unlike Value's lazy hash fields) is guarded by a real mutex.
var (
	typeCacheMu sync.Mutex
	typeCache   = map[string]*Type{}
)

func intern(t *Type) *Type {
	typeCacheMu.Lock()
	defer typeCacheMu.Unlock()
	if existing, ok := typeCache[t.desc]; ok {
		return existing
	}
	typeCache[t.desc] = t
	return t
}
