// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package prefix implements the bit reader used for prefix decoding.
//
// Bits are consumed starting from the most-significant bit of each byte,
// which is the bit-packing order used by bzip2.
package prefix

import (
	"bufio"
	"io"

	"github.com/dsnet/bzstream"
	"github.com/dsnet/bzstream/internal/errors"
)

// MaxReadBits is the largest bit-width that ReadBits accepts in a single call.
// It keeps the number of buffered bits within a 32-bit accumulator.
const MaxReadBits = 24

// Reader implements a MSB-first bit reader. If the input io.Reader satisfies
// the bzstream.ByteReader interface, then it also guarantees that it will
// never read more bytes than is necessary. Otherwise, the input is internally
// wrapped with a bufio.Reader.
type Reader struct {
	Offset int64 // Number of bytes read from the underlying io.Reader

	rd      bzstream.ByteReader
	bufBits uint32 // Buffer to hold some bits
	numBits uint   // Number of valid bits in bufBits; always in 0..31

	// Used to reduce allocations.
	bu *bufio.Reader
}

// Init initializes the bit Reader to read from r.
func (pr *Reader) Init(r io.Reader) {
	*pr = Reader{bu: pr.bu}
	if rr, ok := r.(bzstream.ByteReader); ok {
		pr.rd = rr
		return
	}
	if pr.bu == nil {
		pr.bu = bufio.NewReader(nil)
	}
	pr.bu.Reset(r)
	pr.rd = pr.bu
}

// BitsRead reports the total number of bits emitted from any Read method.
func (pr *Reader) BitsRead() int64 {
	return 8*pr.Offset - int64(pr.numBits)
}

// PullBits ensures that at least nb bits exist in the bit buffer.
// It reads exactly as many bytes as are needed from the underlying reader.
func (pr *Reader) PullBits(nb uint) error {
	for pr.numBits < nb {
		c, err := pr.rd.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return err
		}
		pr.bufBits = pr.bufBits<<8 | uint32(c)
		pr.numBits += 8
		pr.Offset++
	}
	return nil
}

// ReadBits reads nb bits in MSB order from the underlying reader.
// The value of nb must be within 0..MaxReadBits.
// If an IO error occurs, then it panics.
func (pr *Reader) ReadBits(nb uint) uint {
	if nb > MaxReadBits {
		errors.Panic(errors.Error{Code: errors.Invalid, Pkg: "prefix", Msg: "bit-width too large"})
	}
	if err := pr.PullBits(nb); err != nil {
		errors.Panic(err)
	}
	pr.numBits -= nb
	return uint(pr.bufBits>>pr.numBits) & (1<<nb - 1)
}

// ReadBit reads a single bit and reports whether it is set.
func (pr *Reader) ReadBit() bool {
	if pr.numBits == 0 {
		if err := pr.PullBits(1); err != nil {
			errors.Panic(err)
		}
	}
	pr.numBits--
	return (pr.bufBits>>pr.numBits)&1 == 1
}

// ReadBits64 reads nb bits in MSB order, where nb may be as large as 64.
func (pr *Reader) ReadBits64(nb uint) (v uint64) {
	for nb > 0 {
		n := nb
		if n > MaxReadBits {
			n = MaxReadBits
		}
		v = v<<n | uint64(pr.ReadBits(n))
		nb -= n
	}
	return v
}

// ReadUint32 reads a 32-bit big-endian integer as two 16-bit halves.
func (pr *Reader) ReadUint32() uint32 {
	hi := uint32(pr.ReadBits(16))
	lo := uint32(pr.ReadBits(16))
	return hi<<16 | lo
}
