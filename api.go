// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bzstream is a streaming decoder for the BZip2 format.
//
// The decoder itself lives in the bzip2 sub-package. This package holds the
// interfaces shared between the decoder and its callers.
package bzstream

import (
	"bufio"
	"io"

	"github.com/dsnet/bzstream/internal/errors"
)

// The Error interface identifies all decompression related errors.
type Error interface {
	error
	CompressError()

	// IsDeprecated reports the use of a deprecated and unsupported feature.
	IsDeprecated() bool

	// IsCorrupted reports whether the input stream was corrupted.
	IsCorrupted() bool
}

var _ Error = errors.Error{}

// ByteReader is an interface accepted by the decompression Reader.
// It guarantees that the decompressor never reads more data than is necessary
// from the underlying io.Reader.
type ByteReader interface {
	io.Reader
	io.ByteReader
}

var _ ByteReader = (*bufio.Reader)(nil)
