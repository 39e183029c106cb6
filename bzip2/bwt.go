// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

// The inverse Burrows-Wheeler Transform is computed without materializing the
// original block. A single counting sort over the BWT output produces the
// successor chain tt, where tt[i] holds the position in the BWT output of the
// byte that follows the byte at sorted position i. Walking the chain from the
// origin pointer yields the original bytes in order.
//
// References:
//	https://en.wikipedia.org/wiki/Burrows%E2%80%93Wheeler_transform
//	https://www.quora.com/How-can-I-optimize-burrows-wheeler-transform-and-inverse-transform-to-work-in-O-n-time-O-n-space

type burrowsWheelerTransform struct {
	buf  []byte   // BWT output of the current block
	tt   []uint32 // Successor chain
	tPos uint32   // Position within buf of the next byte
	left int      // Number of bytes not yet produced
}

// Init prepares the walk over buf, which has the byte histogram freqs.
// The tt slice must be at least as long as buf, and ptr must be a valid
// index into buf.
func (bwt *burrowsWheelerTransform) Init(buf []byte, tt []uint32, freqs *[256]int, ptr int) {
	var cftab [256]int
	var sum int
	for i, f := range freqs {
		cftab[i] = sum
		sum += f
	}

	tt = tt[:len(buf)]
	for i, b := range buf {
		tt[cftab[b]] = uint32(i)
		cftab[b]++
	}

	*bwt = burrowsWheelerTransform{buf: buf, tt: tt, left: len(buf)}
	if len(buf) > 0 {
		bwt.tPos = tt[ptr]
	}
}

// Len reports the number of bytes left in the walk.
func (bwt *burrowsWheelerTransform) Len() int { return bwt.left }

// Next returns the next byte of the original block.
// It must not be called once Len reports zero.
func (bwt *burrowsWheelerTransform) Next() byte {
	b := bwt.buf[bwt.tPos]
	bwt.tPos = bwt.tt[bwt.tPos]
	bwt.left--
	return b
}

// decodeBWT inverts the transform of buf in place.
func decodeBWT(buf []byte, ptr int) {
	if len(buf) == 0 {
		return
	}

	var freqs [256]int
	for _, b := range buf {
		freqs[b]++
	}

	var bwt burrowsWheelerTransform
	in := append([]byte(nil), buf...)
	bwt.Init(in, make([]uint32, len(in)), &freqs, ptr)
	for i := range buf {
		buf[i] = bwt.Next()
	}
}
