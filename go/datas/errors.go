// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import "errors"

// ErrOptimisticLockFailed is returned by Database.Commit and
// Database.Delete when the root compare-and-swap has lost to a concurrent
// writer maxCommitAttempts times in a row; each single lost race is
// retried internally, after a backoff.
var ErrOptimisticLockFailed = errors.New("optimistic lock failed")

// ErrMergeNeeded is returned by Database.Commit when the proposed new
// head is not a descendant of the dataset's current head: fast-forwarding
// would lose the current head's history, and this system implements no
// merge policy (spec Non-goals), so the caller must resolve by hand.
var ErrMergeNeeded = errors.New("merge needed")

// ErrAlreadyCommitted is returned by Database.Commit when the proposed
// new head is already the dataset's current head -- not an error
// condition exactly, but distinguished from ErrOptimisticLockFailed so a
// caller can treat a redundant commit as a no-op.
var ErrAlreadyCommitted = errors.New("already committed")

// ErrInvalidDatasetID is returned when a dataset ID doesn't match the
// grammar in spec (letters, digits, '_', '-', '/').
var ErrInvalidDatasetID = errors.New("invalid dataset id")

// ErrClosed is returned by RemoteBatchStore operations invoked once Close
// has begun. BatchStoreAdaptor does not track closing and never returns
// it.
var ErrClosed = errors.New("datas: store is closed")
