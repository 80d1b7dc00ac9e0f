// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package constants holds values shared between the client and any remote
// store it talks to: the wire version and the HTTP route paths the
// datas.httpDelegate speaks.
package constants

// NomsVersion is the monotonic core version. A store tagged with a
// different major version is rejected at the protocol boundary (see
// expectVersion in go/datas/http_delegate.go).
const NomsVersion = "7.2"

// NomsVersionHeader is the HTTP header carrying NomsVersion on every
// request and response the httpDelegate exchanges.
const NomsVersionHeader = "X-Noms-Vers"

const (
	GetRefsPath    = "/getRefs/"
	HasRefsPath    = "/hasRefs/"
	WriteValuePath = "/writeValue/"
	RootPath       = "/root/"
)

// CompatibleVersion reports whether a peer advertising version other may
// safely interoperate with this build: the major component (the part
// before the first '.') must match exactly. Minor version skew is
// tolerated.
func CompatibleVersion(other string) bool {
	return majorOf(other) == majorOf(NomsVersion)
}

func majorOf(v string) string {
	for i := 0; i < len(v); i++ {
		if v[i] == '.' {
			return v[:i]
		}
	}
	return v
}
