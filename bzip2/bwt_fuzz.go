// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build gofuzz
// +build gofuzz

// This file exists to export internal implementation details for fuzz testing.

package bzip2

// ReverseBWT undoes the Burrows-Wheeler Transform of buf in place.
func ReverseBWT(buf []byte, ptr int) {
	decodeBWT(buf, ptr)
}

