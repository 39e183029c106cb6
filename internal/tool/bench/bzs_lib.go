// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bench

import (
	"io"

	"github.com/dsnet/bzstream/bzip2"
)

// errReader is returned in place of a decoder whose stream header is bad,
// so that the failure surfaces on the first Read.
type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
func (r errReader) Close() error             { return r.err }

func init() {
	RegisterDecoder(FormatBZ2, "bzs",
		func(r io.Reader) io.ReadCloser {
			zr, err := bzip2.NewReader(r, nil)
			if err != nil {
				return errReader{err}
			}
			return zr
		})
}
