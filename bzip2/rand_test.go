// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDerandomizer(t *testing.T) {
	var sum int
	for _, n := range rNums {
		sum += int(n)
	}

	var d derandomizer
	d.Init()
	var got []int
	for i := 0; i < 2*sum; i++ {
		switch d.Mask() {
		case 0:
		case 1:
			got = append(got, i)
		default:
			t.Fatalf("mask %d is neither 0 nor 1", i)
		}
	}

	if len(got) != 2*len(rNums) {
		t.Fatalf("number of flipped bytes mismatch: got %d, want %d", len(got), 2*len(rNums))
	}
	if diff := cmp.Diff([]int{617, 1337, 1464, 1945}, got[:4]); diff != "" {
		t.Errorf("flipped positions mismatch (-want +got):\n%s", diff)
	}

	// The table wraps around after all 512 entries.
	for i := range rNums {
		if got[len(rNums)+i] != got[i]+sum {
			t.Errorf("position %d does not repeat the table: got %d, want %d", i, got[len(rNums)+i], got[i]+sum)
			break
		}
	}

	d.Init()
	for i := 0; i < 617; i++ {
		if d.Mask() != 0 {
			t.Fatalf("unexpected flip at %d after Init", i)
		}
	}
	if d.Mask() != 1 {
		t.Errorf("missing flip at 617 after Init")
	}
}
