// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

// The first stage of bzip2 compression replaces every run of 4..259 identical
// bytes with the first 4 bytes followed by a single byte holding the number of
// extra repetitions. Undoing it is driven by a small state machine so that the
// output can be produced one byte at a time.
//
// States of the Reader:
//	stateStartBlock: the next step opens a new block or ends the stream
//	statePartA:      the next step pulls a byte from the inverse BWT and emits it
//	statePartB:      the byte just emitted is compared against the previous one
//	statePartC:      extra repetitions of the run byte are being emitted
//	stateEOF:        the stream is exhausted
//
// Randomized blocks use the same states with the derandomizer applied to
// every byte pulled from the inverse BWT.
const (
	stateStartBlock = iota
	statePartA
	statePartB
	statePartC
	stateEOF
)

// step advances the state machine until a byte is available.
// It reports false once the end of the stream has been reached.
func (zr *Reader) step() (byte, bool) {
	for {
		switch zr.state {
		case stateStartBlock:
			if !zr.readBlockHeader() {
				zr.state = stateEOF
				continue
			}
			zr.state = statePartA
		case statePartA:
			if zr.bwt.Len() == 0 {
				zr.finishBlock()
				zr.state = stateStartBlock
				continue
			}
			zr.prevByte = zr.lastByte
			b := zr.nextByte()
			zr.lastByte = int(b)
			zr.blkCRC.Update(b)
			zr.state = statePartB
			return b, true
		case statePartB:
			zr.state = statePartA
			if zr.lastByte != zr.prevByte {
				zr.repCount = 1
				continue
			}
			if zr.repCount++; zr.repCount < 4 {
				continue
			}
			if zr.bwt.Len() == 0 {
				continue // Run truncated by the end of the block
			}
			zr.extraLeft = int(zr.nextByte())
			zr.state = statePartC
		case statePartC:
			if zr.extraLeft > 0 {
				zr.extraLeft--
				b := byte(zr.lastByte)
				zr.blkCRC.Update(b)
				return b, true
			}
			zr.repCount = 0
			zr.state = statePartA
		default:
			return 0, false
		}
	}
}

// nextByte pulls the next byte out of the inverse BWT.
func (zr *Reader) nextByte() byte {
	b := zr.bwt.Next()
	if zr.randomized {
		b ^= zr.rand.Mask()
	}
	return b
}
