// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package errors implements functions to manipulate decompression errors.
//
// In idiomatic Go, it is an anti-pattern to use panics as a form of error
// reporting in the API. Instead, the expected way to transmit errors is by
// returning an error value. Unfortunately, the checking of "err != nil" in
// tight loops commonly found in decompression causes non-negligible
// performance degradation. While this may not be idiomatic, the bzip2 decoder
// uses panics to propagate errors internally and recovers them at the API
// boundary.
//
// Since panics are used for error reporting, the Recover function must only
// convert panics that are carrying actual errors. Runtime errors and other
// panics that do not carry an error are re-panicked so that real bugs are
// not masked.
package errors

import (
	"runtime"
	"strings"
)

const (
	// Unknown indicates that there is no classification for this error.
	Unknown = iota

	// Internal indicates that this error is due to an internal bug.
	// Users should file a issue report if this type of error is encountered.
	Internal

	// Invalid indicates that this error is due to the user misusing the API
	// and is indicative of a bug on the user's part.
	Invalid

	// Deprecated indicates the use of a deprecated and unsupported feature.
	Deprecated

	// Corrupted indicates that the input stream is corrupted.
	Corrupted

	// Closed indicates that the handlers are closed.
	Closed
)

var codeMap = map[int]string{
	Unknown:    "unknown error",
	Internal:   "internal error",
	Invalid:    "invalid argument",
	Deprecated: "deprecated format",
	Corrupted:  "corrupted input",
	Closed:     "closed handler",
}

// Error is the error type shared by every package of this module.
type Error struct {
	Code int    // The error type
	Pkg  string // Name of the package where the error originated
	Msg  string // Descriptive message about the error (optional)
}

func (e Error) Error() string {
	var ss []string
	for _, s := range []string{e.Pkg, codeMap[e.Code], e.Msg} {
		if s != "" {
			ss = append(ss, s)
		}
	}
	return strings.Join(ss, ": ")
}

func (e Error) CompressError()     {}
func (e Error) IsInternal() bool   { return e.Code == Internal }
func (e Error) IsInvalid() bool    { return e.Code == Invalid }
func (e Error) IsDeprecated() bool { return e.Code == Deprecated }
func (e Error) IsCorrupted() bool  { return e.Code == Corrupted }
func (e Error) IsClosed() bool     { return e.Code == Closed }

// IsInternal reports whether err is an Error with the Internal code.
func IsInternal(err error) bool { return isCode(err, Internal) }

// IsInvalid reports whether err is an Error with the Invalid code.
func IsInvalid(err error) bool { return isCode(err, Invalid) }

// IsDeprecated reports whether err is an Error with the Deprecated code.
func IsDeprecated(err error) bool { return isCode(err, Deprecated) }

// IsCorrupted reports whether err is an Error with the Corrupted code.
func IsCorrupted(err error) bool { return isCode(err, Corrupted) }

// IsClosed reports whether err is an Error with the Closed code.
func IsClosed(err error) bool { return isCode(err, Closed) }

func isCode(err error, code int) bool {
	for err != nil {
		if cerr, ok := err.(Error); ok {
			return cerr.Code == code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// errWrap is used by Panic and Recover to ensure that only errors raised by
// Panic are recovered by Recover.
type errWrap struct{ e *error }

// Recover recovers a panic raised by Panic and stores the error in err.
// Runtime errors and panics of any other type are re-panicked.
func Recover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case errWrap:
		*err = *ex.e
	default:
		panic(ex)
	}
}

// Panic panics with err, which is later recovered by Recover.
func Panic(err error) {
	panic(errWrap{&err})
}
