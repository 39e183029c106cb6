// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bzip2 implements a streaming decoder for the BZip2 format.
//
// The format is a sequence of independently checksummed blocks. Each block
// went through the following stages at compression time, which the decoder
// undoes in reverse order:
//	RLE1: runs of 4..259 identical bytes become 4 bytes plus a count byte
//	BWT:  the Burrows-Wheeler Transform
//	MTF:  move-to-front coding of the BWT output
//	RLE2: runs of MTF zeros coded with the RUNA and RUNB symbols
//	Prefix coding with up to 6 canonical Huffman tables
//
// References:
//	https://github.com/dsnet/compress/blob/master/doc/bzip2-format.pdf
//	https://en.wikipedia.org/wiki/Bzip2
package bzip2

import (
	"hash/crc32"

	"github.com/dsnet/bzstream/internal"
	"github.com/dsnet/bzstream/internal/errors"
	pkgerrors "github.com/pkg/errors"
)

const (
	hdrMagic = 0x425a         // Hex of "BZ"
	blkMagic = 0x314159265359 // BCD of PI
	endMagic = 0x177245385090 // BCD of sqrt(PI)

	magicBits = 48

	blockSize = 100000 // Block capacity per unit of the level digit

	minNumTrees   = 1
	maxNumTrees   = 6
	maxSelectors  = 1<<15 - 1 // Limited by the 15-bit selector count
	maxPrefixBits = 20        // Maximum bit-width of a prefix code
	maxCodeLen    = 23        // Size of the limit and base tables
	maxNumSyms    = 256 + 2   // Maximum number of symbols in the alphabet
	numBlockSyms  = 50        // Number of symbols decoded per selector

	// Maximum weight of a RUNA/RUNB digit. A run longer than 2 million would
	// overflow even the largest block.
	maxRunWeight = 2 << 20
)

var (
	ErrInvalidSignature   error = errors.Error{Code: errors.Corrupted, Pkg: "bzip2", Msg: "invalid stream signature"}
	ErrCorruptBlockHeader error = errors.Error{Code: errors.Corrupted, Pkg: "bzip2", Msg: "invalid block magic"}
	ErrChecksum           error = errors.Error{Code: errors.Corrupted, Pkg: "bzip2", Msg: "checksum mismatch"}
	ErrBlockOverrun       error = errors.Error{Code: errors.Corrupted, Pkg: "bzip2", Msg: "block overrun"}
	ErrCorrupt            error = errors.Error{Code: errors.Corrupted, Pkg: "bzip2"}
	ErrClosed             error = errors.Error{Code: errors.Closed, Pkg: "bzip2"}
)

// panicf raises the error kind annotated with a formatted detail message.
// The kind remains reachable through errors.Is.
func panicf(kind error, f string, a ...interface{}) {
	errors.Panic(pkgerrors.Wrapf(kind, f, a...))
}

// crcTable is the MSB-first CRC-32 table for the polynomial 0x04c11db7.
//
// The CRC-32 computation in bzip2 treats bytes as having bits in big-endian
// order. That is, the MSB is read before the LSB. Reversing both the index and
// the entries of the standard library IEEE table yields exactly that table.
var crcTable = func() (t [256]uint32) {
	for i := range t {
		t[i] = internal.ReverseUint32(crc32.IEEETable[internal.ReverseLUT[i]])
	}
	return t
}()

// crc is the running checksum of a single block.
type crc struct{ reg uint32 }

func (c *crc) Reset() { c.reg = 0xffffffff }

func (c *crc) Update(b byte) {
	c.reg = c.reg<<8 ^ crcTable[byte(c.reg>>24)^b]
}

// Sum returns the finalized checksum.
func (c *crc) Sum() uint32 { return ^c.reg }

// combineCRC folds a block checksum into the stream checksum.
func combineCRC(combined, blockCRC uint32) uint32 {
	return (combined<<1 | combined>>31) ^ blockCRC
}
