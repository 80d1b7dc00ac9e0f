// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang/snappy"
	"github.com/jpillora/backoff"
	"github.com/julienschmidt/httprouter"

	"github.com/nomsdb/noms/go/chunks"
	"github.com/nomsdb/noms/go/constants"
	"github.com/nomsdb/noms/go/d"
	"github.com/nomsdb/noms/go/hash"
)

// httpDoer is the subset of *http.Client httpDelegate needs, so tests can
// substitute a fake round tripper.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// httpDelegate is the real network Delegate: POST /getRefs, /hasRefs, and
// /writeValue, GET/POST /root, all framed with snappy and carrying
// constants.NomsVersionHeader (grounded in the teacher's http batch store
// -- see DESIGN.md).
type httpDelegate struct {
	host   *url.URL
	client httpDoer
	auth   string
}

// NewHTTPDelegate builds a Delegate that talks to baseURL. auth, if
// non-empty, is sent verbatim as the Authorization header on every
// request -- this system carries no real auth scheme of its own (spec
// Non-goals); it only passes through an opaque bearer value the caller
// supplies.
func NewHTTPDelegate(baseURL, auth string) (Delegate, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("datas: unrecognized scheme %q", u.Scheme)
	}
	return &httpDelegate{host: u, client: http.DefaultClient, auth: auth}, nil
}

func (hd *httpDelegate) ReadBatch(ctx context.Context, reqs map[hash.Hash]ReadRequest) error {
	hasHashes := hash.NewHashSet()
	getHashes := hash.NewHashSet()
	for h, r := range reqs {
		getHashes.Insert(h)
		if r.wantHas {
			hasHashes.Insert(h)
		}
	}

	if len(hasHashes) > 0 {
		if err := hd.hasRefs(ctx, hasHashes, reqs); err != nil {
			return err
		}
	}
	return hd.getRefs(ctx, getHashes, reqs)
}

func (hd *httpDelegate) getRefs(ctx context.Context, hashes hash.HashSet, reqs map[hash.Hash]ReadRequest) error {
	u := *hd.host
	u.Path = httprouter.CleanPath(hd.host.Path + constants.GetRefsPath)

	req, err := hd.newRequest(ctx, "POST", u.String(), buildHashesBody(hashes), http.Header{
		"Accept-Encoding": {"x-snappy-framed"},
		"Content-Type":    {"application/x-www-form-urlencoded"},
	})
	if err != nil {
		return err
	}
	res, err := hd.client.Do(req)
	if err != nil {
		return err
	}
	if err := expectVersion(res); err != nil {
		return err
	}
	reader := resBodyReader(res)
	defer closeResponse(reader)

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("datas: unexpected getRefs response: %s", http.StatusText(res.StatusCode))
	}

	remaining := hash.NewHashSet()
	remaining.InsertAll(hashes)

	chunkChan := make(chan *chunks.Chunk, 16)
	go func() {
		defer close(chunkChan)
		chunks.Deserialize(reader, chunkChan)
	}()
	for c := range chunkChan {
		if req, ok := reqs[c.Hash()]; ok {
			for _, f := range req.chunkFuts {
				f.satisfy(*c)
			}
		}
		remaining.Remove(c.Hash())
	}
	for h := range remaining {
		if req, ok := reqs[h]; ok {
			for _, f := range req.chunkFuts {
				f.satisfy(chunks.EmptyChunk)
			}
		}
	}
	return nil
}

func (hd *httpDelegate) hasRefs(ctx context.Context, hashes hash.HashSet, reqs map[hash.Hash]ReadRequest) error {
	u := *hd.host
	u.Path = httprouter.CleanPath(hd.host.Path + constants.HasRefsPath)

	req, err := hd.newRequest(ctx, "POST", u.String(), buildHashesBody(hashes), http.Header{
		"Accept-Encoding": {"x-snappy-framed"},
		"Content-Type":    {"application/x-www-form-urlencoded"},
	})
	if err != nil {
		return err
	}
	res, err := hd.client.Do(req)
	if err != nil {
		return err
	}
	if err := expectVersion(res); err != nil {
		return err
	}
	reader := resBodyReader(res)
	defer closeResponse(reader)

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("datas: unexpected hasRefs response: %s", http.StatusText(res.StatusCode))
	}

	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		h := hash.Parse(scanner.Text())
		d.PanicIfFalse(scanner.Scan())
		present := scanner.Text() == "true"
		if req, ok := reqs[h]; ok {
			for _, bf := range req.boolFuts {
				bf.satisfy(present)
			}
		}
	}
	return nil
}

func (hd *httpDelegate) WriteBatch(ctx context.Context, hints hash.HashSet, produce func(emit func(chunks.Chunk)) error) error {
	u := *hd.host
	u.Path = httprouter.CleanPath(hd.host.Path + constants.WriteValuePath)

	pr, pw := io.Pipe()
	sw := snappy.NewBufferedWriter(pw)
	go func() {
		err := produce(func(c chunks.Chunk) {
			chunks.Serialize(c, sw)
		})
		if err == nil {
			err = sw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := hd.newRequest(ctx, "POST", u.String(), pr, http.Header{
		"Accept-Encoding":  {"gzip"},
		"Content-Encoding": {"x-snappy-framed"},
		"Content-Type":     {"application/octet-stream"},
	})
	if err != nil {
		return err
	}
	res, err := hd.client.Do(req)
	if err != nil {
		return err
	}
	if err := expectVersion(res); err != nil {
		return err
	}
	defer closeResponse(res.Body)

	if res.StatusCode != http.StatusCreated {
		return fmt.Errorf("datas: unexpected writeValue response: %s", formatErrorResponse(res))
	}
	return nil
}

func (hd *httpDelegate) GetRoot(ctx context.Context) (hash.Hash, error) {
	res, err := hd.requestRoot(ctx, "GET", hash.Hash{}, hash.Hash{})
	if err != nil {
		return hash.Hash{}, err
	}
	if err := expectVersion(res); err != nil {
		return hash.Hash{}, err
	}
	defer closeResponse(res.Body)
	if res.StatusCode != http.StatusOK {
		return hash.Hash{}, fmt.Errorf("datas: unexpected root response: %s", http.StatusText(res.StatusCode))
	}
	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return hash.Hash{}, err
	}
	return hash.Parse(string(data)), nil
}

// UpdateRoot makes a single CAS attempt, with no retry of its own: a
// StatusConflict response means some other writer raced ahead, which
// this layer reports as (false, nil) so the caller (Database.Commit)
// decides whether to rebase and retry (spec §4.5 step 8).
func (hd *httpDelegate) UpdateRoot(ctx context.Context, newHash, lastHash hash.Hash) (bool, error) {
	res, err := hd.requestRoot(ctx, "POST", newHash, lastHash)
	if err != nil {
		return false, err
	}
	if err := expectVersion(res); err != nil {
		return false, err
	}
	defer closeResponse(res.Body)

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusConflict:
		return false, nil
	default:
		buf := &bytes.Buffer{}
		buf.ReadFrom(res.Body)
		return false, fmt.Errorf("datas: unexpected root update response: %s: %s", http.StatusText(res.StatusCode), buf.String())
	}
}

func (hd *httpDelegate) requestRoot(ctx context.Context, method string, current, last hash.Hash) (*http.Response, error) {
	u := *hd.host
	u.Path = httprouter.CleanPath(hd.host.Path + constants.RootPath)
	if method == "POST" {
		d.PanicIfTrue(current.IsEmpty(), "cannot update root to the empty hash")
		params := u.Query()
		params.Add("last", last.String())
		params.Add("current", current.String())
		u.RawQuery = params.Encode()
	}
	req, err := hd.newRequest(ctx, method, u.String(), nil, nil)
	if err != nil {
		return nil, err
	}
	return hd.client.Do(req)
}

func (hd *httpDelegate) newRequest(ctx context.Context, method, u string, body io.Reader, header http.Header) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(constants.NomsVersionHeader, constants.NomsVersion)
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	if hd.auth != "" {
		req.Header.Set("Authorization", hd.auth)
	}
	return req, nil
}

func (hd *httpDelegate) Close() error { return nil }

func buildHashesBody(hashes hash.HashSet) io.Reader {
	var buf bytes.Buffer
	for h := range hashes {
		if buf.Len() > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString("ref=")
		buf.WriteString(h.String())
	}
	return &buf
}

func resBodyReader(res *http.Response) io.ReadCloser {
	enc := res.Header.Get("Content-Encoding")
	if strings.Contains(enc, "x-snappy-framed") {
		return ioutil.NopCloser(snappy.NewReader(res.Body))
	}
	return res.Body
}

func closeResponse(rc io.ReadCloser) error {
	ioutil.ReadAll(rc)
	return rc.Close()
}

func expectVersion(res *http.Response) error {
	v := res.Header.Get(constants.NomsVersionHeader)
	if !constants.CompatibleVersion(v) {
		b, _ := ioutil.ReadAll(res.Body)
		res.Body.Close()
		return fmt.Errorf("datas: version mismatch: this build is %q, server is %q: %s", constants.NomsVersion, v, string(b))
	}
	return nil
}

func formatErrorResponse(res *http.Response) string {
	data, _ := ioutil.ReadAll(res.Body)
	return fmt.Sprintf("%s:\n%s\n", res.Status, data)
}

// retryBackoff paces the commit rebase-retry loop (spec §4.5 step 8)
// between root CAS attempts so a contended dataset doesn't spin the
// cooperative scheduler.
func retryBackoff() *backoff.Backoff {
	return &backoff.Backoff{Min: 10 * time.Millisecond, Max: 2 * time.Second, Factor: 2}
}
