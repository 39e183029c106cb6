// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"math/bits"
	"sort"
)

// testStreamConfig controls the streams produced by encodeTestStream.
type testStreamConfig struct {
	level     int  // Level digit written into the stream header
	blockLen  int  // Maximum bytes of RLE1 output per block; 0 means the full capacity
	numTrees  int  // Number of prefix tables per block; 0 means 2
	randomize bool // Produce randomized blocks

	// origPtr, if set, replaces the origin pointer of every block.
	origPtr func(ptr, n int) int

	// blockCRC, if set, replaces the stored checksum of the i-th block.
	blockCRC func(i int, crc uint32) uint32
}

// encodeTestStream is a simple BZip2 encoder used to produce streams whose
// structure the tests control. It is not intended to compress well: every
// prefix table is a near fixed-length code over the whole alphabet.
func encodeTestStream(input []byte, conf testStreamConfig) []byte {
	if conf.level == 0 {
		conf.level = 9
	}
	if conf.blockLen == 0 {
		conf.blockLen = conf.level * blockSize
	}
	if conf.numTrees == 0 {
		conf.numTrees = 2
	}

	var bw testBitWriter
	bw.WriteBits(hdrMagic, 16)
	bw.WriteBits('h', 8)
	bw.WriteBits(uint64('0'+conf.level), 8)

	var streamCRC uint32
	for i := 0; len(input) > 0; i++ {
		n, block := encodeRLE1(input, conf.blockLen)
		blockCRC := testCRC(input[:n])
		streamCRC = combineCRC(streamCRC, blockCRC)
		input = input[n:]
		if conf.blockCRC != nil {
			blockCRC = conf.blockCRC(i, blockCRC)
		}
		encodeTestBlock(&bw, block, blockCRC, conf)
	}
	bw.WriteBits(endMagic, magicBits)
	bw.WriteBits(uint64(streamCRC), 32)
	return bw.Bytes()
}

func testCRC(b []byte) uint32 {
	var c crc
	c.Reset()
	for _, v := range b {
		c.Update(v)
	}
	return c.Sum()
}

// encodeRLE1 consumes as much of the input as fits within size bytes after
// run-length encoding. It returns the number of input bytes consumed.
func encodeRLE1(input []byte, size int) (n int, out []byte) {
	for n < len(input) {
		b := input[n]
		run := 1
		for n+run < len(input) && input[n+run] == b && run < 255+4 {
			run++
		}
		var chunk []byte
		if run < 4 {
			chunk = input[n : n+run]
		} else {
			chunk = []byte{b, b, b, b, byte(run - 4)}
		}
		if len(out)+len(chunk) > size {
			break
		}
		out = append(out, chunk...)
		n += run
	}
	return n, out
}

// encodeBWT performs the forward BWT of buf in place using prefix doubling
// over the cyclic rotations, and returns the origin pointer. Equal rotations
// are ordered by their starting position.
func encodeBWT(buf []byte) (ptr int) {
	n := len(buf)
	if n == 0 {
		return -1
	}
	sa := make([]int, n)
	rank := make([]int, n)
	next := make([]int, n)
	for i := range sa {
		sa[i] = i
		rank[i] = int(buf[i])
	}
	classes := -1
	for k := 1; ; k <<= 1 {
		less := func(a, b int) bool {
			if rank[a] != rank[b] {
				return rank[a] < rank[b]
			}
			return rank[(a+k)%n] < rank[(b+k)%n]
		}
		sort.Slice(sa, func(i, j int) bool {
			a, b := sa[i], sa[j]
			if less(a, b) || less(b, a) {
				return less(a, b)
			}
			return a < b
		})
		next[sa[0]] = 0
		for i := 1; i < n; i++ {
			next[sa[i]] = next[sa[i-1]]
			if less(sa[i-1], sa[i]) {
				next[sa[i]]++
			}
		}
		copy(rank, next)

		// Stop once every rotation is distinct, or once doubling no longer
		// splits any class, which means the remaining ties are equal rotations.
		c := rank[sa[n-1]] + 1
		if c == n || c == classes {
			break
		}
		classes = c
	}

	out := make([]byte, n)
	for i, s := range sa {
		out[i] = buf[(s+n-1)%n]
		if s == 0 {
			ptr = i
		}
	}
	copy(buf, out)
	return ptr
}

// encodeMTF performs the MTF and RLE2 stages, returning the symbol stream
// including the terminating end-of-block symbol.
func encodeMTF(buf []byte, dict []uint8) (syms []uint16) {
	var m [256]uint8
	copy(m[:], dict)
	list := m[:len(dict)]

	var zeros int
	flush := func() {
		if zeros == 0 {
			return
		}
		for rep := zeros - 1; ; rep = (rep - 2) / 2 {
			syms = append(syms, uint16(rep&1)) // RUNA or RUNB
			if rep < 2 {
				break
			}
		}
		zeros = 0
	}
	for _, b := range buf {
		var idx int
		for i, v := range list {
			if v == b {
				idx = i
				break
			}
		}
		copy(list[1:idx+1], list[:idx])
		list[0] = b
		if idx == 0 {
			zeros++
			continue
		}
		flush()
		syms = append(syms, uint16(idx+1))
	}
	flush()
	return append(syms, uint16(len(dict)+1))
}

// testCodeLengths returns complete code lengths for an alphabet of the given
// size. Each table favors a different set of symbols with the shorter length.
func testCodeLengths(numSyms, tree int) []uint8 {
	k := bits.Len(uint(numSyms - 1))
	short := 1<<uint(k) - numSyms
	lens := make([]uint8, numSyms)
	for s := range lens {
		if (s+tree*7)%numSyms < short {
			lens[s] = uint8(k - 1)
		} else {
			lens[s] = uint8(k)
		}
	}
	return lens
}

// testCanonicalCodes assigns canonical prefix codes from lengths.
func testCanonicalCodes(lens []uint8) []uint32 {
	codes := make([]uint32, len(lens))
	var vec uint32
	for n := uint8(1); n <= maxPrefixBits; n++ {
		for s, l := range lens {
			if l == n {
				codes[s] = vec
				vec++
			}
		}
		vec <<= 1
	}
	return codes
}

func encodeTestBlock(bw *testBitWriter, block []byte, blockCRC uint32, conf testStreamConfig) {
	if conf.randomize {
		var d derandomizer
		d.Init()
		for i := range block {
			block[i] ^= d.Mask()
		}
	}
	ptr := encodeBWT(block)
	if conf.origPtr != nil {
		ptr = conf.origPtr(ptr, len(block))
	}

	bw.WriteBits(blkMagic, magicBits)
	bw.WriteBits(uint64(blockCRC), 32)
	if conf.randomize {
		bw.WriteBits(1, 1)
	} else {
		bw.WriteBits(0, 1)
	}
	bw.WriteBits(uint64(ptr), 24)

	var inUse [256]bool
	for _, b := range block {
		inUse[b] = true
	}
	var dict []uint8
	var inUse16 uint64
	for i := 0; i < 16; i++ {
		for j := 0; j < 16; j++ {
			if inUse[16*i+j] {
				inUse16 |= 1 << uint(15-i)
				dict = append(dict, uint8(16*i+j))
			}
		}
	}
	bw.WriteBits(inUse16, 16)
	for i := 0; i < 16; i++ {
		if inUse16&(1<<uint(15-i)) == 0 {
			continue
		}
		var v uint64
		for j := 0; j < 16; j++ {
			if inUse[16*i+j] {
				v |= 1 << uint(15-j)
			}
		}
		bw.WriteBits(v, 16)
	}

	syms := encodeMTF(block, dict)
	numSyms := len(dict) + 2
	var lens [][]uint8
	var codes [][]uint32
	for t := 0; t < conf.numTrees; t++ {
		lens = append(lens, testCodeLengths(numSyms, t))
		codes = append(codes, testCanonicalCodes(lens[t]))
	}

	numSels := (len(syms) + numBlockSyms - 1) / numBlockSyms
	sels := make([]int, numSels)
	for i := range sels {
		sels[i] = i % conf.numTrees
	}
	bw.WriteBits(uint64(conf.numTrees), 3)
	bw.WriteBits(uint64(numSels), 15)
	mtf := identityInts(conf.numTrees)
	for _, s := range sels {
		var r int
		for mtf[r] != s {
			r++
		}
		copy(mtf[1:r+1], mtf[:r])
		mtf[0] = s
		bw.WriteBits(1<<uint(r+1)-2, uint(r+1))
	}

	for _, ls := range lens {
		cur := ls[0]
		bw.WriteBits(uint64(cur), 5)
		for _, l := range ls {
			for ; cur < l; cur++ {
				bw.WriteBits(2, 2)
			}
			for ; cur > l; cur-- {
				bw.WriteBits(3, 2)
			}
			bw.WriteBits(0, 1)
		}
	}

	for i, s := range syms {
		t := sels[i/numBlockSyms]
		bw.WriteBits(uint64(codes[t][s]), uint(lens[t][s]))
	}
}

func identityInts(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

// testBitWriter packs bits starting with the most-significant bit.
type testBitWriter struct {
	buf     []byte
	bufBits uint8
	numBits uint
}

func (bw *testBitWriter) WriteBits(v uint64, nb uint) {
	for i := nb; i > 0; i-- {
		bw.bufBits = bw.bufBits<<1 | uint8(v>>(i-1)&1)
		if bw.numBits++; bw.numBits == 8 {
			bw.buf = append(bw.buf, bw.bufBits)
			bw.bufBits, bw.numBits = 0, 0
		}
	}
}

// Bytes returns the stream padded with zero bits to a byte boundary.
func (bw *testBitWriter) Bytes() []byte {
	if bw.numBits > 0 {
		return append(bw.buf, bw.bufBits<<(8-bw.numBits))
	}
	return bw.buf
}
