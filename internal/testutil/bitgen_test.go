// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"encoding/hex"
	"testing"
)

func TestDecodeBitGen(t *testing.T) {
	var vectors = []struct {
		input  string
		output string // Hex-encoded; empty with fail set means error
		fail   bool
	}{{
		input:  ">>>",
		output: "",
	}, {
		input: "<<< 1",
		fail:  true,
	}, {
		input:  ">>> 1",
		output: "80",
	}, {
		input:  ">>> 101 # comment\n 00001",
		output: "a1",
	}, {
		input:  ">>> X:425a68 D8:57",
		output: "425a6839",
	}, {
		input:  ">>> H48:177245385090 H32:deadbeef",
		output: "177245385090deadbeef",
	}, {
		input:  ">>> 1*9",
		output: "ff80",
	}, {
		input:  ">>> X:ab*3",
		output: "ababab",
	}, {
		input: ">>> 1 X:ab",
		fail:  true,
	}, {
		input: ">>> D3:8",
		fail:  true,
	}, {
		input: ">>> Z:00",
		fail:  true,
	}}

	for i, v := range vectors {
		b, err := DecodeBitGen(v.input)
		if fail := err != nil; fail != v.fail {
			t.Errorf("test %d, error mismatch: got %v, want fail %v", i, err, v.fail)
			continue
		}
		if got := hex.EncodeToString(b); !v.fail && got != v.output {
			t.Errorf("test %d, output mismatch:\ngot  %s\nwant %s", i, got, v.output)
		}
	}
}
