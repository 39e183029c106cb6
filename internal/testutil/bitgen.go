// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"encoding/hex"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	reBin = regexp.MustCompile("^[01]{1,64}$")
	reDec = regexp.MustCompile("^D[0-9]+:[0-9]+$")
	reHex = regexp.MustCompile("^H[0-9]+:[0-9a-fA-F]{1,16}$")
	reRaw = regexp.MustCompile("^X:[0-9a-fA-F]+$")
	reQnt = regexp.MustCompile("[*][0-9]+$")
)

// DecodeBitGen decodes a BitGen formatted string.
//
// The BitGen format allows bit-streams to be generated from a series of tokens
// describing bits in the resulting string. It aids a human in the manual
// scripting of bzip2 streams from individual bit-strings, and allows comments
// to encode authorial intent.
//
// The format consists of a series of tokens separated by white space of any
// kind. Any bytes on a given line that appear after a '#' are ignored.
//
// The first valid token must be ">>>", declaring that bits are packed starting
// with the most-significant bit of each byte, as is done by bzip2.
//
// A token of the pattern "[01]{1,64}" forms a bit-string (e.g. 11010) whose
// left-most bit is written first.
//
// A token of the pattern "D[0-9]+:[0-9]+" or "H[0-9]+:[0-9a-fA-F]{1,16}"
// represents either a decimal value or a hexadecimal value, respectively.
// The first number is the bit-length (0..64) and the second is the value,
// which must fit within the bit-length. The most-significant bit of the
// value is written first.
//
// A token of the pattern "X:[0-9a-fA-F]+" represents literal bytes in
// hexadecimal format. It may only be used when the bit-stream is already
// byte-aligned.
//
// A token decorator of the pattern "[*][0-9]+" may trail any token to repeat
// the token that many times.
//
// If the total bit-stream does not end on a byte-aligned edge, then the stream
// is padded up to the nearest byte with 0 bits.
//
// Example BitGen string:
//	>>>
//	X:425a68 D8:57     # "BZh9"
//	H48:177245385090   # End-of-stream magic
//	H32:00000000       # Combined CRC
func DecodeBitGen(str string) ([]byte, error) {
	var toks []string
	for _, s := range strings.Split(str, "\n") {
		if i := strings.IndexByte(s, '#'); i >= 0 {
			s = s[:i]
		}
		toks = append(toks, strings.Fields(s)...)
	}
	if len(toks) == 0 || toks[0] != ">>>" {
		return nil, errors.New("testutil: unknown stream bit-packing mode")
	}
	toks = toks[1:]

	var bw bitBuffer
	for _, t := range toks {
		rep := 1
		if reQnt.MatchString(t) {
			i := strings.LastIndexByte(t, '*')
			n, err := strconv.Atoi(t[i+1:])
			if err != nil {
				return nil, errors.New("testutil: invalid quantified token: " + t)
			}
			t, rep = t[:i], n
		}

		switch {
		case reBin.MatchString(t):
			var v uint64
			for _, b := range t {
				v = v<<1 | uint64(b-'0')
			}
			for i := 0; i < rep; i++ {
				bw.WriteBits64(v, uint(len(t)))
			}
		case reDec.MatchString(t) || reHex.MatchString(t):
			i := strings.IndexByte(t, ':')
			base := 10
			if t[0] == 'H' {
				base = 16
			}
			n, err1 := strconv.Atoi(t[1:i])
			v, err2 := strconv.ParseUint(t[i+1:], base, 64)
			if err1 != nil || err2 != nil || n > 64 {
				return nil, errors.New("testutil: invalid numeric token: " + t)
			}
			if n < 64 && v&((1<<uint(n))-1) != v {
				return nil, errors.New("testutil: integer overflow on token: " + t)
			}
			for i := 0; i < rep; i++ {
				bw.WriteBits64(v, uint(n))
			}
		case reRaw.MatchString(t):
			b, err := hex.DecodeString(t[2:])
			if err != nil {
				return nil, errors.New("testutil: invalid raw bytes token: " + t)
			}
			for i := 0; i < rep; i++ {
				if err := bw.WriteBytes(b); err != nil {
					return nil, err
				}
			}
		default:
			return nil, errors.New("testutil: invalid token: " + t)
		}
	}
	return bw.Bytes(), nil
}

// bitBuffer is a minimal MSB-first bit writer.
type bitBuffer struct {
	b []byte
	n uint // Number of bits used in the last byte; 0 means aligned
}

func (b *bitBuffer) WriteBytes(buf []byte) error {
	if b.n != 0 {
		return errors.New("testutil: unaligned write")
	}
	b.b = append(b.b, buf...)
	return nil
}

func (b *bitBuffer) WriteBits64(v uint64, n uint) {
	for i := n; i > 0; i-- {
		if b.n == 0 {
			b.b = append(b.b, 0x00)
		}
		if v&(1<<(i-1)) != 0 {
			b.b[len(b.b)-1] |= 0x80 >> b.n
		}
		b.n = (b.n + 1) % 8
	}
}

func (b *bitBuffer) Bytes() []byte {
	return b.b
}
