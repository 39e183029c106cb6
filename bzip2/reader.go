// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"io"
	"os"

	"github.com/dsnet/bzstream/internal"
	"github.com/dsnet/bzstream/internal/errors"
)

// ReaderConfig configures the Reader. There are currently no options.
type ReaderConfig struct {
	_ struct{} // Blank field to prevent unkeyed struct literals
}

// Reader decompresses a single BZip2 stream.
//
// The Reader takes ownership of its source. Once the end-of-stream marker is
// read, or once Reset or Close is called, the source is closed if it implements
// io.Closer, unless it is os.Stdin. This happens at most once.
type Reader struct {
	InputOffset  int64 // Total number of bytes read from underlying io.Reader
	OutputOffset int64 // Total number of bytes emitted from Read

	src   io.Reader    // Source to release at the end of the stream
	cerr  error        // Error from closing src
	rd    prefixReader // Bit reader over src
	err   error        // Persistent error
	state int          // Current state of the RLE1 state machine

	blkCount  int    // Number of blocks fully verified
	blkCRC    crc    // Running checksum of the current block
	wantCRC   uint32 // Checksum stored in the current block header
	streamCRC uint32 // Combined checksum of all verified blocks

	// Block decoding state.
	buf        []byte   // BWT output of the current block
	tt         []uint32 // Successor chain of the inverse BWT
	freqs      [256]int // Histogram of buf
	treeSels   []uint8  // Tree selector for every group of 50 symbols
	trees      [maxNumTrees]huffmanTable
	mtf        moveToFront
	bwt        burrowsWheelerTransform
	rand       derandomizer
	randomized bool

	// RLE1 state.
	lastByte  int // Last byte emitted; -1 at the start of a block
	prevByte  int // Byte emitted before lastByte
	repCount  int // Length of the current run of identical bytes
	extraLeft int // Remaining extra repetitions of lastByte
}

// NewReader returns a new Reader that decompresses r.
// The stream header is read and validated immediately.
func NewReader(r io.Reader, conf *ReaderConfig) (*Reader, error) {
	zr := new(Reader)
	if err := zr.Reset(r); err != nil {
		return nil, err
	}
	return zr, nil
}

// Reset discards the Reader's state and makes it equivalent to the result of
// NewReader, but reading from r instead. Block buffers are reused when they
// are large enough. A previous source that was not yet released is closed
// first, and any error from closing it is discarded.
func (zr *Reader) Reset(r io.Reader) error {
	zr.release()
	*zr = Reader{
		src:      r,
		rd:       zr.rd,
		buf:      zr.buf,
		tt:       zr.tt,
		treeSels: zr.treeSels,
	}
	zr.rd.Init(r)
	func() {
		defer errors.Recover(&zr.err)
		zr.readStreamHeader()
	}()
	zr.InputOffset = zr.rd.Offset
	return zr.err
}

// Read decompresses up to len(buf) bytes. It returns io.EOF once the stream
// is exhausted and its checksum verified.
func (zr *Reader) Read(buf []byte) (int, error) {
	if zr.err != nil {
		return 0, zr.err
	}

	var n int
	func() {
		defer errors.Recover(&zr.err)
		for n < len(buf) {
			b, ok := zr.step()
			if !ok {
				zr.err = io.EOF
				return
			}
			buf[n] = b
			n++
		}
	}()

	zr.InputOffset = zr.rd.Offset
	zr.OutputOffset += int64(n)
	if n > 0 {
		return n, nil
	}
	return 0, zr.err
}

// ReadByte decompresses a single byte.
func (zr *Reader) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := zr.Read(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// BlockCount reports the number of blocks whose checksums have been verified.
func (zr *Reader) BlockCount() int { return zr.blkCount }

// Close releases the source and causes all future reads to fail.
// It returns the persistent error if decoding had already failed, and
// otherwise the error from closing the source, even if the source was
// already released at the end of the stream.
func (zr *Reader) Close() error {
	zr.release()
	if zr.err == nil || zr.err == io.EOF || zr.err == ErrClosed {
		zr.err = ErrClosed
		zr.state = stateEOF
		return zr.cerr
	}
	return zr.err // Return the persistent error
}

// release closes the source if needed. Only the first call has an effect.
func (zr *Reader) release() {
	src := zr.src
	zr.src = nil
	if c, ok := src.(io.Closer); ok && src != io.Reader(os.Stdin) {
		zr.cerr = c.Close()
	}
}

func (zr *Reader) readStreamHeader() {
	if zr.rd.ReadBits(16) != hdrMagic {
		panicf(ErrInvalidSignature, "missing BZ magic")
	}

	// Anything other than a valid version and level after the signature is
	// treated as the end of the stream.
	ver := zr.rd.ReadBits(8)
	lvl := int(zr.rd.ReadBits(8)) - '0'
	if ver != 'h' || lvl < 1 || lvl > 9 {
		zr.state = stateEOF
		zr.release()
		return
	}
	n := lvl * blockSize
	if cap(zr.buf) < n {
		zr.buf = make([]byte, n)
	}
	if cap(zr.tt) < n {
		zr.tt = make([]uint32, n)
	}
	zr.buf = zr.buf[:n]
	zr.tt = zr.tt[:n]
	zr.state = stateStartBlock
}

// readBlockHeader reads the next block or the end-of-stream marker.
// It reports false if the stream has ended.
func (zr *Reader) readBlockHeader() bool {
	switch magic := zr.rd.ReadBits64(magicBits); magic {
	case blkMagic:
	case endMagic:
		want := zr.rd.ReadUint32()
		if want != zr.streamCRC && !internal.GoFuzz {
			panicf(ErrChecksum, "stream: got 0x%08x, want 0x%08x", zr.streamCRC, want)
		}
		zr.release()
		return false
	default:
		panicf(ErrCorruptBlockHeader, "block %d: magic 0x%012x", zr.blkCount, magic)
	}

	zr.wantCRC = zr.rd.ReadUint32()
	zr.randomized = zr.rd.ReadBit()
	zr.readBlock()

	zr.blkCRC.Reset()
	zr.rand.Init()
	zr.lastByte, zr.prevByte = -1, -1
	zr.repCount, zr.extraLeft = 0, 0
	return true
}

// readBlock reads the tables and symbols of a block and prepares the
// inverse BWT.
func (zr *Reader) readBlock() {
	ptr := int(zr.rd.ReadBits(24))

	var syms [256]uint8
	numInUse := zr.rd.ReadSymbolMap(&syms)
	if numInUse == 0 {
		panicf(ErrCorrupt, "block %d: no symbols in use", zr.blkCount)
	}
	numSyms := numInUse + 2 // RUNA, RUNB, EOB, and every MTF index but zero

	numTrees := int(zr.rd.ReadBits(3))
	if numTrees < minNumTrees || numTrees > maxNumTrees {
		panicf(ErrCorrupt, "block %d: invalid number of prefix trees: %d", zr.blkCount, numTrees)
	}
	numSels := int(zr.rd.ReadBits(15))
	if numSels == 0 {
		panicf(ErrCorrupt, "block %d: no tree selectors", zr.blkCount)
	}
	if cap(zr.treeSels) < numSels {
		zr.treeSels = make([]uint8, numSels, maxSelectors)
	}
	zr.treeSels = zr.treeSels[:numSels]
	zr.rd.ReadSelectors(zr.treeSels, numTrees)

	var lens [maxNumSyms]uint8
	for i := 0; i < numTrees; i++ {
		zr.rd.ReadCodeLengths(lens[:numSyms])
		zr.trees[i].Init(lens[:numSyms])
	}

	n := zr.decodeSymbols(syms[:numInUse], numSyms)
	if ptr >= n {
		panicf(ErrCorrupt, "block %d: origin pointer %d out of range %d", zr.blkCount, ptr, n)
	}
	zr.bwt.Init(zr.buf[:n], zr.tt, &zr.freqs, ptr)
}

// finishBlock verifies the checksum of the block that was just emitted and
// folds it into the stream checksum.
func (zr *Reader) finishBlock() {
	got := zr.blkCRC.Sum()
	if got != zr.wantCRC && !internal.GoFuzz {
		panicf(ErrChecksum, "block %d: got 0x%08x, want 0x%08x", zr.blkCount, got, zr.wantCRC)
	}
	zr.streamCRC = combineCRC(zr.streamCRC, got)
	zr.blkCount++
}
