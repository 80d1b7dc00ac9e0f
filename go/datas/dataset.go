// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"regexp"

	"github.com/nomsdb/noms/go/types"
)

// datasetIDPattern is the dataset ID grammar (spec §4.5): letters,
// digits, underscore, hyphen, and '/' as a namespacing separator (e.g.
// "users/alice/todos").
var datasetIDPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_/]+$`)

// ValidateDatasetID reports whether id matches the dataset ID grammar.
func ValidateDatasetID(id string) bool {
	return id != "" && datasetIDPattern.MatchString(id)
}

// Dataset is a named, mutable pointer into a Database's commit history: ID
// names it, and Head (if present) is the commit its name currently
// resolves to. A Dataset value is a snapshot -- taken at GetDataset time --
// not a live view; call Database.GetDataset again to observe a later
// write.
type Dataset struct {
	db      Database
	id      string
	head    types.Struct
	hasHead bool
}

func newDataset(db Database, id string, head types.Struct, hasHead bool) Dataset {
	return Dataset{db: db, id: id, head: head, hasHead: hasHead}
}

// ID returns ds's dataset ID.
func (ds Dataset) ID() string { return ds.id }

// Database returns the Database ds was fetched from.
func (ds Dataset) Database() Database { return ds.db }

// MaybeHead returns ds's head commit and true, or (zero Struct, false) if
// ds has never been committed to.
func (ds Dataset) MaybeHead() (types.Struct, bool) {
	return ds.head, ds.hasHead
}

// Head returns ds's head commit. Panics if ds has no head.
func (ds Dataset) Head() types.Struct {
	h, ok := ds.MaybeHead()
	if !ok {
		panic("dataset " + ds.id + " has no head")
	}
	return h
}

// HeadValue returns the committed Value at ds's head, or (nil, false) if
// ds has no head.
func (ds Dataset) HeadValue() (types.Value, bool) {
	h, ok := ds.MaybeHead()
	if !ok {
		return nil, false
	}
	return CommitValue(h), true
}

// HeadRef returns a Ref to ds's head commit and true, or (zero Ref, false)
// if ds has no head.
func (ds Dataset) HeadRef() (types.Ref, bool) {
	h, ok := ds.MaybeHead()
	if !ok {
		return types.Ref{}, false
	}
	return types.NewRef(h), true
}
