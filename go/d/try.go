// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package d holds tiny precondition/assertion helpers used throughout the
// tree to distinguish "this is a bug in the caller" (panic) from
// recoverable, caller-visible failure (a returned error).
package d

import "fmt"

// Panic formats msg/args and panics. Used at sites where continuing would
// only compound programmer error (e.g. a TypeMismatch detected just before
// a write).
func Panic(format string, args ...interface{}) {
	panic(fmt.Errorf(format, args...))
}

// PanicIfError panics if err is non-nil.
func PanicIfError(err error) {
	if err != nil {
		panic(err)
	}
}

// PanicIfTrue panics with msg if b is true.
func PanicIfTrue(b bool, format string, args ...interface{}) {
	if b {
		Panic(format, args...)
	}
}

// PanicIfFalse panics with msg if b is false.
func PanicIfFalse(b bool, format string, args ...interface{}) {
	if !b {
		Panic(format, args...)
	}
}

// Chk is the assertion surface used at sites that are fatal only because
// an invariant the type system can't express was violated.
var Chk = chk{}

type chk struct{}

func (chk) NoError(err error) {
	if err != nil {
		panic(err)
	}
}

func (chk) Fail(msg string) {
	panic(msg)
}

func (chk) Equal(expected, actual interface{}) {
	if expected != actual {
		Panic("expected %v, got %v", expected, actual)
	}
}
