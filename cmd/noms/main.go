// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Command noms is a minimal CLI over go/datas: log walks a dataset's
// commit history, show-root inspects a database's current root, and sync
// copies one dataset's reachable chunks from one database to another.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/attic-labs/kingpin"
	"github.com/dustin/go-humanize"
	"github.com/mgutz/ansi"

	"github.com/nomsdb/noms/go/chunks"
	"github.com/nomsdb/noms/go/datas"
	"github.com/nomsdb/noms/go/hash"
	"github.com/nomsdb/noms/go/types"
)

var (
	app = kingpin.New("noms", "A content-addressed, versioned data store.")

	putCacheDir = app.Flag("put-cache-dir", "spill pending writes to a temp file under this directory instead of holding them in memory (only applies to http(s):// database specs)").String()

	logCmd     = app.Command("log", "Print a dataset's commit history, most recent first.")
	logDB      = logCmd.Arg("db", "database spec: \"mem\" or an http(s):// URL").Required().String()
	logDataset = logCmd.Arg("dataset", "dataset ID").Required().String()

	showRootCmd = app.Command("show-root", "Print a database's dataset count, encoded dataset-map size, and dataset map.")
	showRootDB  = showRootCmd.Arg("db", "database spec: \"mem\" or an http(s):// URL").Required().String()

	syncCmd     = app.Command("sync", "Copy a dataset's reachable chunks from one database to another.")
	syncSrcDB   = syncCmd.Arg("src-db", "source database spec").Required().String()
	syncDstDB   = syncCmd.Arg("dst-db", "destination database spec").Required().String()
	syncDataset = syncCmd.Arg("dataset", "dataset ID").Required().String()
)

func main() {
	ctx := context.Background()
	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case logCmd.FullCommand():
		exitOnError(runLog(ctx, *logDB, *logDataset))
	case showRootCmd.FullCommand():
		exitOnError(runShowRoot(ctx, *showRootDB))
	case syncCmd.FullCommand():
		exitOnError(runSync(ctx, *syncSrcDB, *syncDstDB, *syncDataset))
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, ansi.Color("noms: "+err.Error(), "red"))
		os.Exit(1)
	}
}

// openDatabase opens spec as a Database: "mem" gets a fresh in-process
// store (useful for smoke-testing the other subcommands without a
// server), anything else is treated as the base URL of a remote speaking
// SPEC_FULL.md's HTTP wire protocol. This system carries no persistent
// local ChunkStore backend (Non-goals exclude the original's disk-backed
// stores beyond the in-memory one), so "mem" is necessarily ephemeral.
// --put-cache-dir switches a remote database's pending-write cache from
// memory to disk (spec §4.3's diskPutCache), for sync runs whose pending
// writes would otherwise sit entirely in the process's heap until Flush.
func openDatabase(spec string) (datas.Database, error) {
	if spec == "mem" {
		return datas.NewDatabase(datas.NewBatchStoreAdaptor(chunks.NewMemoryStore())), nil
	}
	delegate, err := datas.NewHTTPDelegate(spec, "")
	if err != nil {
		return nil, err
	}
	if *putCacheDir != "" {
		rbs, err := datas.NewRemoteBatchStoreWithCacheDir(delegate, *putCacheDir)
		if err != nil {
			return nil, err
		}
		return datas.NewDatabase(rbs), nil
	}
	return datas.NewDatabase(datas.NewRemoteBatchStore(delegate)), nil
}

func runLog(ctx context.Context, dbSpec, datasetID string) error {
	db, err := openDatabase(dbSpec)
	if err != nil {
		return err
	}
	defer db.Close()

	ds, err := db.GetDataset(ctx, datasetID)
	if err != nil {
		return err
	}
	head, ok := ds.MaybeHead()
	if !ok {
		fmt.Println(ansi.Color("(no commits)", "yellow"))
		return nil
	}

	seen := map[string]bool{}
	frontier := []types.Struct{head}
	for len(frontier) > 0 {
		c := frontier[0]
		frontier = frontier[1:]
		key := types.NewRef(c).TargetHash().String()
		if seen[key] {
			continue
		}
		seen[key] = true

		fmt.Println(ansi.Color(types.NewRef(c).TargetHash().String(), "cyan"))
		fmt.Printf("    value: %s\n", describeValue(datas.CommitValue(c)))
		meta := datas.CommitMeta(c)
		meta.IterFields(func(name string, v types.Value) {
			fmt.Printf("    meta.%s: %s\n", name, describeValue(v))
		})

		datas.Parents(c).Iter(func(p types.Value) bool {
			r := p.(types.Ref)
			v, err := db.ReadValue(ctx, r.TargetHash())
			if err == nil && v != nil {
				if parent, ok := v.(types.Struct); ok {
					frontier = append(frontier, parent)
				}
			}
			return false
		})
	}
	return nil
}

func runShowRoot(ctx context.Context, dbSpec string) error {
	db, err := openDatabase(dbSpec)
	if err != nil {
		return err
	}
	defer db.Close()

	dsMap, err := db.Datasets(ctx)
	if err != nil {
		return err
	}
	encoded := types.EncodeValue(dsMap)
	fmt.Printf("%s dataset(s), %s\n", humanize.Comma(int64(dsMap.Len())), humanize.Bytes(uint64(len(encoded.Data()))))
	dsMap.Iter(func(k, v types.Value) bool {
		r := v.(types.Ref)
		fmt.Printf("  %s -> %s\n", k.(types.String), r.TargetHash())
		return false
	})
	return nil
}

func runSync(ctx context.Context, srcSpec, dstSpec, datasetID string) error {
	src, err := openDatabase(srcSpec)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := openDatabase(dstSpec)
	if err != nil {
		return err
	}
	defer dst.Close()

	srcDS, err := src.GetDataset(ctx, datasetID)
	if err != nil {
		return err
	}
	head, ok := srcDS.MaybeHead()
	if !ok {
		return fmt.Errorf("dataset %q has no commits in %q", datasetID, srcSpec)
	}

	copied, err := copyReachable(ctx, src, dst, types.NewRef(head).TargetHash())
	if err != nil {
		return err
	}
	fmt.Printf("copied %s chunk(s)\n", humanize.Comma(int64(copied)))

	dstDS, err := dst.GetDataset(ctx, datasetID)
	if err != nil {
		return err
	}
	_, err = dst.Commit(ctx, dstDS, datas.CommitValue(head), datas.CommitOptions{
		Parents: datas.Parents(head),
		Meta:    datas.CommitMeta(head),
	})
	if err != nil && err != datas.ErrAlreadyCommitted {
		return err
	}
	return nil
}

// copyReachable walks every chunk transitively reachable from root and
// copies it from src to dst. This is the deliberately small stand-in
// SPEC_FULL.md §4.10 calls for, not the teacher's
// batched-reachability-probing puller (no skip-if-dst-already-has-it
// probe, no concurrency).
func copyReachable(ctx context.Context, src, dst datas.Database, root hash.Hash) (int, error) {
	seen := map[hash.Hash]bool{}
	count := 0
	var walk func(h hash.Hash) error
	walk = func(h hash.Hash) error {
		if seen[h] {
			return nil
		}
		seen[h] = true

		v, err := src.ReadValue(ctx, h)
		if err != nil || v == nil {
			return err
		}
		if _, err := dst.WriteValue(ctx, v); err != nil {
			return err
		}
		count++

		var refErr error
		types.WalkRefs(v, func(r types.Ref) {
			if refErr == nil {
				refErr = walk(r.TargetHash())
			}
		})
		return refErr
	}
	err := walk(root)
	if err == nil {
		err = dst.Flush(ctx)
	}
	return count, err
}

func describeValue(v types.Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.Type().Describe()
}
