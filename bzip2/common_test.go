// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"errors"
	"strings"
	"testing"

	cerrors "github.com/dsnet/bzstream/internal/errors"
)

func TestCRC(t *testing.T) {
	var vectors = []struct {
		input  string
		output uint32
	}{
		{input: "", output: 0x00000000},
		{input: "a", output: 0x19939b6b},
		{input: "abc", output: 0x648cbb73},
		{input: "123456789", output: 0xfc891918},
	}

	for i, v := range vectors {
		if got := testCRC([]byte(v.input)); got != v.output {
			t.Errorf("test %d, checksum mismatch: got 0x%08x, want 0x%08x", i, got, v.output)
		}
	}
}

func TestCombineCRC(t *testing.T) {
	var vectors = []struct {
		input  []uint32
		output uint32
	}{
		{input: nil, output: 0x00000000},
		{input: []uint32{0x648cbb73}, output: 0x648cbb73},
		{input: []uint32{0x80000000, 0x00000000}, output: 0x00000001},
		{input: []uint32{0x00000001, 0x00000001}, output: 0x00000003},
		{input: []uint32{0x80000001, 0x00000000, 0x00000000}, output: 0x00000006},
	}

	for i, v := range vectors {
		var got uint32
		for _, c := range v.input {
			got = combineCRC(got, c)
		}
		if got != v.output {
			t.Errorf("test %d, checksum mismatch: got 0x%08x, want 0x%08x", i, got, v.output)
		}
	}
}

func TestPanicf(t *testing.T) {
	err := catchPanic(func() { panicf(ErrChecksum, "block %d", 7) })
	if !errors.Is(err, ErrChecksum) {
		t.Errorf("error kind mismatch: got %v, want %v", err, ErrChecksum)
	}
	if !cerrors.IsCorrupted(err) {
		t.Errorf("IsCorrupted(%v) = false, want true", err)
	}
	if !strings.Contains(err.Error(), "block 7") {
		t.Errorf("error message missing detail: %v", err)
	}
	if cerrors.IsClosed(err) {
		t.Errorf("IsClosed(%v) = true, want false", err)
	}
}
