// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import "github.com/dsnet/bzstream/internal"

// moveToFront implements the inverse of the MTF stage of bzip2.
// Runs of zeros in the MTF output are handled separately by runLength.
//
// For example, with the dictionary {1, 2, 5, 6}, the indexes:
//	[]int{2, 0, 0, 3, 1}
//
// Decode to the values:
//	[]uint8{5, 5, 5, 6, 5}
type moveToFront struct {
	dictBuf [256]uint8
	dictLen int
}

// Init initializes the moveToFront codec. The dict must contain all of the
// symbols in the alphabet used in future operations. A copy of the input dict
// will be made so that it will not be mutated.
func (m *moveToFront) Init(dict []uint8) {
	if len(dict) > len(m.dictBuf) {
		panic("alphabet too large")
	}
	copy(m.dictBuf[:], dict)
	m.dictLen = len(dict)
}

// Decode returns the value at index idx and moves it to the front.
func (m *moveToFront) Decode(idx int) uint8 {
	dict := m.dictBuf[:m.dictLen]
	val := dict[idx] // Forward lookup val in dict
	copy(dict[1:idx+1], dict[:idx])
	dict[0] = val
	return val
}

// Front returns the value at the front of the list.
func (m *moveToFront) Front() uint8 { return m.dictBuf[0] }

// For the RLE encoding that is applied after MTF, a bijective base-2 numeration
// is used. RUNA is the digit 1 and RUNB is the digit 2, where the first symbol
// of a run is the least significant digit. Thus, RUNA alone is a run of one,
// RUNB alone is a run of two, and RUNA RUNA is a run of three.
const (
	symRUNA = 0
	symRUNB = 1
)

// runLength accumulates the digits of a single RUNA/RUNB sequence.
type runLength struct {
	sum    int // Number of repeated values so far
	weight int // Weight of the next digit; 0 means no run is in progress
}

// Add appends the next digit. It reports false if the run is too long
// to fit in any block.
func (r *runLength) Add(sym uint) bool {
	if r.weight == 0 {
		r.weight = 1
	}
	if r.weight >= maxRunWeight {
		return false
	}
	r.sum += int(sym+1) * r.weight
	r.weight <<= 1
	return true
}

// Flush returns the length of the current run and resets the accumulator.
func (r *runLength) Flush() (n int) {
	n = r.sum
	*r = runLength{}
	return n
}

// decodeSymbols reads prefix coded symbols until the end-of-block symbol,
// undoing the RLE2 and MTF stages into zr.buf. The symbols in syms are the
// byte values in use by the block, in ascending order. It returns the number
// of bytes in the block and fills in zr.freqs.
func (zr *Reader) decodeSymbols(syms []uint8, numSyms int) int {
	var run runLength
	var tree *huffmanTable
	var selIdx, groupLeft, n int
	eob := uint(numSyms - 1)

	zr.freqs = [256]int{}
	zr.mtf.Init(syms)
	for {
		if groupLeft == 0 {
			if selIdx >= len(zr.treeSels) {
				panicf(ErrCorrupt, "block %d: ran out of tree selectors", zr.blkCount)
			}
			tree = &zr.trees[zr.treeSels[selIdx]]
			selIdx++
			groupLeft = numBlockSyms
		}
		groupLeft--
		sym := zr.rd.ReadSymbol(tree)

		if sym == symRUNA || sym == symRUNB {
			if !run.Add(sym) {
				panicf(ErrCorrupt, "block %d: run length too large", zr.blkCount)
			}
			continue
		}
		if cnt := run.Flush(); cnt > 0 {
			if cnt > len(zr.buf)-n {
				panicf(ErrBlockOverrun, "block %d: run of %d exceeds capacity %d", zr.blkCount, cnt, len(zr.buf))
			}
			b := zr.mtf.Front()
			zr.freqs[b] += cnt
			for end := n + cnt; n < end; n++ {
				zr.buf[n] = b
			}
		}
		if sym == eob {
			break
		}

		if n >= len(zr.buf) {
			panicf(ErrBlockOverrun, "block %d: exceeds capacity %d", zr.blkCount, len(zr.buf))
		}
		b := zr.mtf.Decode(int(sym) - 1)
		zr.freqs[b]++
		zr.buf[n] = b
		n++
	}

	if internal.Debug {
		var sum int
		for _, f := range zr.freqs {
			sum += f
		}
		if sum != n {
			panic("mismatching block frequencies")
		}
	}
	return n
}
