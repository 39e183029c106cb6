// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bench compares the performance of the BZip2 decoder against other
// decoders of the same format and against decoders of other formats that
// serve as baselines.
package bench

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/dsnet/golib/unitconv"
	"github.com/pkg/errors"

	"github.com/dsnet/bzstream/internal/testutil"
)

// Format identifies a compressed data format.
type Format int

const (
	FormatBZ2 Format = iota
	FormatFlate
	FormatXZ
)

var formatNames = map[Format]string{
	FormatBZ2:   "bz2",
	FormatFlate: "fl",
	FormatXZ:    "xz",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat returns the Format with the given short name.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return 0, errors.Errorf("unknown format: %q", s)
}

// Mode identifies what a benchmark measures.
type Mode int

const (
	ModeDecodeRate Mode = iota // Decompression speed in MB/s
	ModeEncodeRate             // Compression speed in MB/s
	ModeRatio                  // Input size over compressed size
)

var modeNames = map[Mode]string{
	ModeDecodeRate: "decRate",
	ModeEncodeRate: "encRate",
	ModeRatio:      "ratio",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the Mode with the given name.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, errors.Errorf("unknown mode: %q", s)
}

type Encoder func(io.Writer, int) io.WriteCloser
type Decoder func(io.Reader) io.ReadCloser

// Codecs holds the encoders and decoders registered for a single format.
type Codecs struct {
	Encoders map[string]Encoder
	Decoders map[string]Decoder
}

var (
	registry = make(map[Format]*Codecs)

	// List of search paths for test files.
	Paths []string
)

// Lookup returns the codecs registered for f. The result is never nil.
func Lookup(f Format) *Codecs {
	c := registry[f]
	if c == nil {
		c = &Codecs{
			Encoders: make(map[string]Encoder),
			Decoders: make(map[string]Decoder),
		}
		registry[f] = c
	}
	return c
}

// Formats returns every format that has at least one registered codec.
func Formats() []Format {
	var fs []Format
	for f, c := range registry {
		if len(c.Encoders)+len(c.Decoders) > 0 {
			fs = append(fs, f)
		}
	}
	sort.Slice(fs, func(i, j int) bool { return fs[i] < fs[j] })
	return fs
}

func RegisterEncoder(f Format, name string, enc Encoder) { Lookup(f).Encoders[name] = enc }
func RegisterDecoder(f Format, name string, dec Decoder) { Lookup(f).Decoders[name] = dec }

// refEncoders is the order in which encoders are preferred for producing
// the compressed input of a decoding benchmark.
var refEncoders = []string{"std", "ds", "kp", "uk"}

// ReferenceEncoder returns the encoder used to produce the compressed input
// of decoding benchmarks for f. Using the same encoder for every decoder keeps
// their results comparable. It returns nil if f has no encoders.
func ReferenceEncoder(f Format) Encoder {
	c := Lookup(f)
	for _, name := range refEncoders {
		if enc, ok := c.Encoders[name]; ok {
			return enc
		}
	}
	var names []string
	for name := range c.Encoders {
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return c.Encoders[names[0]]
}

// compress encodes all of input with enc at the given level.
func compress(enc Encoder, input []byte, lvl int) ([]byte, error) {
	if enc == nil {
		return nil, errors.New("nil Encoder")
	}
	var buf bytes.Buffer
	wr := enc(&buf, lvl)
	if _, err := io.Copy(wr, bytes.NewReader(input)); err != nil {
		return nil, err
	}
	if err := wr.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BenchmarkEncoder benchmarks a single encoder on the given input data using
// the selected compression level and reports the result.
func BenchmarkEncoder(input []byte, enc Encoder, lvl int) testing.BenchmarkResult {
	return testing.Benchmark(func(b *testing.B) {
		b.StopTimer()
		if enc == nil {
			b.Fatalf("unexpected error: nil Encoder")
		}
		runtime.GC()
		b.StartTimer()
		for i := 0; i < b.N; i++ {
			wr := enc(ioutil.Discard, lvl)
			_, err := io.Copy(wr, bytes.NewReader(input))
			if err := wr.Close(); err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			b.SetBytes(int64(len(input)))
		}
	})
}

// BenchmarkDecoder benchmarks a single decoder on the given pre-compressed
// input data and reports the result.
func BenchmarkDecoder(input []byte, dec Decoder) testing.BenchmarkResult {
	return testing.Benchmark(func(b *testing.B) {
		b.StopTimer()
		if dec == nil {
			b.Fatalf("unexpected error: nil Decoder")
		}
		runtime.GC()
		b.StartTimer()
		for i := 0; i < b.N; i++ {
			rd := dec(bufio.NewReader(bytes.NewReader(input)))
			cnt, err := io.Copy(ioutil.Discard, rd)
			if err := rd.Close(); err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			b.SetBytes(int64(cnt))
		}
	})
}

// rate converts a benchmark result to MB/s.
func rate(r testing.BenchmarkResult) float64 {
	if r.N == 0 {
		return 0
	}
	us := (float64(r.T.Nanoseconds()) / 1e3) / float64(r.N)
	return float64(r.Bytes) / us
}

type Result struct {
	R float64 // Rate (MB/s) or ratio (rawSize/compSize)
	D float64 // Delta ratio relative to the first codec
}

// Run measures every named codec of format f across all files, levels, and
// sizes. Codecs that are not registered for the mode produce a zero Result.
//
// The values returned have the following structure:
//	results: [len(files)*len(levels)*len(sizes)][len(codecs)]Result
//	names:   [len(files)*len(levels)*len(sizes)]string
func Run(m Mode, f Format, codecs, files []string, levels, sizes []int, tick func()) (results [][]Result, names []string) {
	c := Lookup(f)
	for _, file := range files {
		for _, lvl := range levels {
			for _, n := range sizes {
				input, err := LoadInput(file, n)
				var packed []byte
				if err == nil && m == ModeDecodeRate {
					packed, err = compress(ReferenceEncoder(f), input, lvl)
				}

				row := make([]Result, len(codecs))
				for j, name := range codecs {
					if tick != nil {
						tick()
					}
					if err == nil {
						switch m {
						case ModeEncodeRate:
							if enc := c.Encoders[name]; enc != nil {
								row[j].R = rate(BenchmarkEncoder(input, enc, lvl))
							}
						case ModeDecodeRate:
							if dec := c.Decoders[name]; dec != nil {
								row[j].R = rate(BenchmarkDecoder(packed, dec))
							}
						case ModeRatio:
							if out, err := compress(c.Encoders[name], input, lvl); err == nil && len(out) > 0 {
								row[j].R = float64(len(input)) / float64(len(out))
							}
						}
					}
					row[j].D = row[j].R / row[0].R
				}
				results = append(results, row)
				names = append(names, getName(file, lvl, len(input)))
			}
		}
	}
	return results, names
}

// LoadInput loads the first n bytes of the named input. Files found in the
// search Paths take precedence over the generated Inputs.
func LoadInput(name string, n int) ([]byte, error) {
	p := getPath(name)
	if _, err := os.Stat(p); err != nil {
		if gen, ok := Inputs[name]; ok {
			return gen(n), nil
		}
	}
	return testutil.LoadFile(p, n)
}

func getPath(file string) string {
	if path.IsAbs(file) {
		return file
	}
	for _, p := range Paths {
		p = path.Join(p, file)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return file
}

var expRegexp = regexp.MustCompile(`\.0*e\+0*`)

func getName(f string, l, n int) string {
	var sn string
	switch n {
	case 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9:
		sn = expRegexp.ReplaceAllString(fmt.Sprintf("%e", float64(n)), "e")
	default:
		s := unitconv.FormatPrefix(float64(n), unitconv.Base1024, 2)
		sn = strings.Replace(s, ".00", "", -1)
	}
	return fmt.Sprintf("%s:%d:%s", path.Base(f), l, sn)
}
