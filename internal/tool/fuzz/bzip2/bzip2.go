// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build gofuzz
// +build gofuzz

package bzip2

import (
	"bytes"
	stdbzip2 "compress/bzip2"
	"io"
	"io/ioutil"

	dsbzip2 "github.com/dsnet/compress/bzip2"

	"github.com/dsnet/bzstream/bzip2"
	"github.com/dsnet/bzstream/internal/errors"
)

func Fuzz(data []byte) int {
	data, ok := testDecoders(data)
	for i := 1; i <= 9; i++ {
		testEncoder(data, i)
	}
	if ok {
		return 1 // Favor valid inputs
	}
	return 0
}

// testDecoders tests that the input can be handled by both this decoder and
// the standard library decoder. Checksums are not verified when fuzzing, so
// this decoder may accept inputs that the standard library rejects.
// The standard library also decodes concatenated streams, so the output of
// this decoder need only be a prefix of its output.
func testDecoders(data []byte) ([]byte, bool) {
	zr, err := bzip2.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		if !isInputError(err) {
			panic(err)
		}
		return nil, false
	}
	defer zr.Close()

	zb, zerr := ioutil.ReadAll(zr)
	sb, serr := ioutil.ReadAll(stdbzip2.NewReader(bytes.NewReader(data)))

	switch {
	case zerr == nil && serr == nil:
		if !bytes.HasPrefix(sb, zb) {
			panic("mismatching bytes")
		}
		if err := zr.Close(); err != nil {
			panic(err)
		}
		return zb, true
	case zerr != nil && serr == nil:
		if isInputError(zerr) {
			return nil, false
		}
		panic(zerr)
	default:
		return nil, false
	}
}

// isInputError reports whether err blames the input rather than the decoder.
func isInputError(err error) bool {
	return err == io.ErrUnexpectedEOF || errors.IsCorrupted(err)
}

// testEncoder encodes the input data with a BZip2 encoder and then checks
// that this decoder properly decompresses the output.
func testEncoder(data []byte, level int) {
	bb := new(bytes.Buffer)
	zw, err := dsbzip2.NewWriter(bb, &dsbzip2.WriterConfig{Level: level})
	if err != nil {
		panic(err)
	}
	defer zw.Close()
	n, err := zw.Write(data)
	if n != len(data) || err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}

	zr, err := bzip2.NewReader(bytes.NewReader(bb.Bytes()), nil)
	if err != nil {
		panic(err)
	}
	b, err := ioutil.ReadAll(zr)
	if err != nil {
		panic(err)
	}
	if !bytes.Equal(b, data) {
		panic("mismatching bytes")
	}
}
