// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"bytes"
	"context"
	"io/ioutil"
	"net/http"
	"net/url"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"

	"github.com/nomsdb/noms/go/chunks"
	"github.com/nomsdb/noms/go/constants"
	"github.com/nomsdb/noms/go/hash"
)

// fakeDoer routes requests to a handler keyed by URL path, so tests can
// simulate a server without opening a real socket.
type fakeDoer struct {
	handlers map[string]func(*http.Request) (*http.Response, error)
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	h, ok := f.handlers[req.URL.Path]
	if !ok {
		return &http.Response{StatusCode: http.StatusNotFound, Body: ioutil.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	return h(req)
}

func mustParseURL(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func versionedResponse(status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       ioutil.NopCloser(bytes.NewReader(body)),
		Header:     http.Header{constants.NomsVersionHeader: {constants.NomsVersion}},
	}
}

func TestHTTPDelegateGetRoot(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)
	want := hash.Of([]byte("root"))

	hd := &httpDelegate{
		host: mustParseURL("http://example.com"),
		client: &fakeDoer{handlers: map[string]func(*http.Request) (*http.Response, error){
			constants.RootPath: func(req *http.Request) (*http.Response, error) {
				assert.Equal("GET", req.Method)
				return versionedResponse(http.StatusOK, []byte(want.String())), nil
			},
		}},
	}

	got, err := hd.GetRoot(ctx)
	assert.NoError(err)
	assert.Equal(want, got)
}

func TestHTTPDelegateUpdateRootConflict(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)

	hd := &httpDelegate{
		host: mustParseURL("http://example.com"),
		client: &fakeDoer{handlers: map[string]func(*http.Request) (*http.Response, error){
			constants.RootPath: func(req *http.Request) (*http.Response, error) {
				assert.Equal("POST", req.Method)
				return versionedResponse(http.StatusConflict, nil), nil
			},
		}},
	}

	ok, err := hd.UpdateRoot(ctx, hash.Of([]byte("new")), hash.Of([]byte("last")))
	assert.NoError(err)
	assert.False(ok)
}

func TestHTTPDelegateWriteBatch(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)

	c1 := chunks.NewChunk([]byte("one"))
	c2 := chunks.NewChunk([]byte("two"))
	var received []chunks.Chunk

	hd := &httpDelegate{
		host: mustParseURL("http://example.com"),
		client: &fakeDoer{handlers: map[string]func(*http.Request) (*http.Response, error){
			constants.WriteValuePath: func(req *http.Request) (*http.Response, error) {
				body, err := ioutil.ReadAll(snappy.NewReader(req.Body))
				assert.NoError(err)
				ch := make(chan *chunks.Chunk, 16)
				go func() {
					defer close(ch)
					chunks.Deserialize(bytes.NewReader(body), ch)
				}()
				for c := range ch {
					received = append(received, *c)
				}
				return versionedResponse(http.StatusCreated, nil), nil
			},
		}},
	}

	err := hd.WriteBatch(ctx, hash.NewHashSet(), func(emit func(chunks.Chunk)) error {
		emit(c1)
		emit(c2)
		return nil
	})
	assert.NoError(err)
	assert.Equal(2, len(received))
	assert.Equal(c1.Hash(), received[0].Hash())
	assert.Equal(c2.Hash(), received[1].Hash())
}

func TestExpectVersionRejectsMismatch(t *testing.T) {
	assert := assert.New(t)
	res := &http.Response{
		Header: http.Header{constants.NomsVersionHeader: {"99.0"}},
		Body:   ioutil.NopCloser(bytes.NewReader(nil)),
	}
	assert.Error(expectVersion(res))
}

func TestBuildHashesBodyRoundTrips(t *testing.T) {
	assert := assert.New(t)
	h := hash.Of([]byte("x"))
	hashes := hash.NewHashSet(h)
	body, err := ioutil.ReadAll(buildHashesBody(hashes))
	assert.NoError(err)
	assert.Equal("ref="+h.String(), string(body))
}
