// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bench

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/dsnet/bzstream/internal/testutil"
)

// Inputs maps the names of the generated inputs to their generators.
// A generated input is used whenever a file of the same name cannot be found
// in any of the search Paths.
var Inputs = map[string]func(n int) []byte{
	"random.bin":  genRandom,
	"zeros.bin":   genZeros,
	"repeats.bin": genRepeats,
	"digits.txt":  genDigits,
	"words.txt":   genWords,
}

// InputNames returns the names of all generated inputs in sorted order.
func InputNames() []string {
	var names []string
	for k := range Inputs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func genRandom(n int) []byte { return testutil.NewRand(0).Bytes(n) }

func genZeros(n int) []byte { return make([]byte, n) }

// genDigits produces the decimal digits of consecutive squares, which has
// a small alphabet and few long runs.
func genDigits(n int) []byte {
	var b []byte
	for i := 1; len(b) < n; i++ {
		b = strconv.AppendInt(b, int64(i)*int64(i), 10)
	}
	return b[:n]
}

// genWords produces text from a small vocabulary with a skewed distribution,
// which resembles natural language closely enough for the BWT.
func genWords(n int) []byte {
	words := []string{
		"the", "of", "and", "a", "to", "in", "is", "was", "he", "for",
		"it", "with", "as", "his", "on", "be", "at", "by", "had", "river",
		"steamboat", "pilot", "channel", "mississippi", "water", "shore",
	}
	r := testutil.NewRand(1)
	var bb bytes.Buffer
	for col := 0; bb.Len() < n; {
		w := words[r.Intn(len(words))]
		if r.Intn(2) == 0 {
			w = words[r.Intn(len(words)/3)]
		}
		bb.WriteString(w)
		if col += len(w) + 1; col > 72 {
			bb.WriteByte('\n')
			col = 0
		} else {
			bb.WriteByte(' ')
		}
	}
	return bb.Bytes()[:n]
}

// genRepeats produces mostly random data where a large bulk of it is a copy
// from some distance ago. The lengths and distances follow a bucketed
// distribution that favors short copies.
func genRepeats(n int) []byte {
	var b []byte
	r := testutil.NewRand(2)
	randPow := func(lo, hi uint) int {
		k := lo + uint(r.Intn(int(hi-lo)))
		return 1<<k + r.Intn(1<<k)
	}
	randLen := func() int { return randPow(2, 9) }   // 4..512
	randDist := func() int { return randPow(0, 15) } // 1..32768
	writeRand := func(l int) { b = append(b, r.Bytes(l)...) }
	writeCopy := func(d, l int) {
		for i := 0; i < l; i++ {
			b = append(b, b[len(b)-d])
		}
	}

	writeRand(randLen())
	for len(b) < n {
		switch p := r.Intn(10); {
		case p == 0:
			writeRand(randLen())
		default:
			d, l := randDist(), randLen()
			for d > len(b) {
				d = randDist()
			}
			writeCopy(d, l)
		}
	}
	return b[:n]
}
