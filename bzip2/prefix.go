// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"io"

	"github.com/dsnet/bzstream/internal"
	"github.com/dsnet/bzstream/internal/prefix"
)

// huffmanTable is a canonical prefix decoder in the form used by the reference
// bzip2 tool. Codes of the same bit-length are consecutive integers, so
// a code of length n is valid once it is no greater than limit[n], and its
// rank within perm is the code minus base[n].
//
// Since there is no formal definition for the BZip2 format, there is no
// specification that says that the code lengths must form a complete prefix
// tree. Thus, the tables are built exactly as the C version builds them, and
// bit patterns that land outside the tables are reported as corruption only
// when they are actually encountered.
type huffmanTable struct {
	limit   [maxCodeLen]int32  // Largest code value for each bit-length
	base    [maxCodeLen]int32  // Offset from code value to rank in perm
	perm    [maxNumSyms]uint16 // Symbols sorted by bit-length, then by symbol
	numSyms int                // Size of the alphabet
	minLen  uint               // Shortest bit-length in use
	maxLen  uint               // Longest bit-length in use
}

// Init builds the decoding tables from the bit-length of every symbol.
// Each length must be within 1..maxPrefixBits.
func (t *huffmanTable) Init(lens []uint8) {
	t.numSyms = len(lens)
	t.minLen, t.maxLen = maxPrefixBits, 0
	for _, n := range lens {
		if uint(n) > t.maxLen {
			t.maxLen = uint(n)
		}
		if uint(n) < t.minLen {
			t.minLen = uint(n)
		}
	}

	// Ties between symbols of equal length are broken by symbol index.
	var pp int
	for n := t.minLen; n <= t.maxLen; n++ {
		for sym, m := range lens {
			if uint(m) == n {
				t.perm[pp] = uint16(sym)
				pp++
			}
		}
	}

	t.base = [maxCodeLen]int32{}
	for _, n := range lens {
		t.base[n+1]++
	}
	for i := 1; i < len(t.base); i++ {
		t.base[i] += t.base[i-1]
	}

	t.limit = [maxCodeLen]int32{}
	var vec int32
	for n := t.minLen; n <= t.maxLen; n++ {
		vec += t.base[n+1] - t.base[n]
		t.limit[n] = vec - 1
		vec <<= 1
	}
	for n := t.minLen + 1; n <= t.maxLen; n++ {
		t.base[n] = ((t.limit[n-1] + 1) << 1) - t.base[n]
	}
}

type prefixReader struct{ prefix.Reader }

func (pr *prefixReader) Init(r io.Reader) {
	pr.Reader.Init(r)
}

// ReadSymbol reads the next symbol using the provided table. The code is read
// with the shortest length first, appending one bit at a time until the value
// falls within the limit for the current length.
func (pr *prefixReader) ReadSymbol(t *huffmanTable) uint {
	n := t.minLen
	code := int32(pr.ReadBits(n))
	for code > t.limit[n] {
		if n++; n > t.maxLen {
			panicf(ErrCorrupt, "invalid prefix code")
		}
		code <<= 1
		if pr.ReadBit() {
			code |= 1
		}
	}
	rank := code - t.base[n]
	if rank < 0 || int(rank) >= t.numSyms {
		panicf(ErrCorrupt, "invalid prefix code")
	}
	return uint(t.perm[rank])
}

// ReadCodeLengths reads the delta coded bit-lengths of a single table.
// The starting length is a 5-bit value, and each symbol is a series of
// (1, direction) bit pairs terminated by a 0 bit.
func (pr *prefixReader) ReadCodeLengths(lens []uint8) {
	clen := int(pr.ReadBits(5))
	for sym := range lens {
		for {
			if clen < 1 || clen > maxPrefixBits {
				panicf(ErrCorrupt, "invalid prefix bit-length: %d", clen)
			}
			if !pr.ReadBit() {
				break
			}
			if pr.ReadBit() {
				clen--
			} else {
				clen++
			}
		}
		lens[sym] = uint8(clen)
	}
}

// ReadSelectors reads the unary coded tree selectors, undoing the
// move-to-front transform applied to them.
func (pr *prefixReader) ReadSelectors(sels []uint8, numTrees int) {
	var mtf moveToFront
	mtf.Init(internal.IdentityLUT[:numTrees])
	for i := range sels {
		var rank int
		for pr.ReadBit() {
			if rank++; rank >= numTrees {
				panicf(ErrCorrupt, "invalid tree selector")
			}
		}
		sels[i] = mtf.Decode(rank)
	}
}

// ReadSymbolMap reads the two-level bitmap of byte values used in the block
// and stores them in ascending order into syms, returning the count.
func (pr *prefixReader) ReadSymbolMap(syms *[256]uint8) int {
	var n int
	inUse16 := pr.ReadBits(16)
	for i := uint(0); i < 16; i++ {
		if inUse16&(1<<(15-i)) == 0 {
			continue
		}
		inUse := pr.ReadBits(16)
		for j := uint(0); j < 16; j++ {
			if inUse&(1<<(15-j)) != 0 {
				syms[n] = uint8(16*i + j)
				n++
			}
		}
	}
	return n
}
