// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build ignore
// +build ignore

// Benchmark tool to compare performance between multiple compression
// implementations. Individual implementations are referred to as codecs.
// Inputs are loaded from the search paths, falling back to the generated
// inputs of the same name.
//
// Example usage:
//	$ go build -o benchmark main.go
//	$ ./benchmark \
//		--formats bz2             \
//		--tests   decRate         \
//		--codecs  std,ds,bzs      \
//		--files   words.txt       \
//		--levels  1,6,9           \
//		--sizes   1e4,1e5,1e6
//
//	BENCHMARK: bz2:decRate
//		benchmark             std MB/s  delta      bzs MB/s  delta      ds MB/s  delta
//		words.txt:1:1e4          ...
//
//	RUNTIME: 1m02.125s
package main

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dsnet/golib/unitconv"

	"github.com/dsnet/bzstream/internal/tool/bench"
)

const (
	defaultLevels = "1,6,9"
	defaultSizes  = "1e4,1e5,1e6"
)

// codecNames returns the names of all registered codecs with "std" first,
// since the first codec is the baseline that deltas are relative to.
func codecNames() []string {
	m := make(map[string]bool)
	for _, f := range bench.Formats() {
		c := bench.Lookup(f)
		for k := range c.Encoders {
			m[k] = true
		}
		for k := range c.Decoders {
			m[k] = true
		}
	}
	var s []string
	for k := range m {
		if k != "std" {
			s = append(s, k)
		}
	}
	sort.Strings(s)
	if m["std"] {
		s = append([]string{"std"}, s...)
	}
	return s
}

func formatList() string {
	var s []string
	for _, f := range bench.Formats() {
		s = append(s, f.String())
	}
	return strings.Join(s, ",")
}

func modeList() string {
	var s []string
	for _, m := range []bench.Mode{bench.ModeDecodeRate, bench.ModeEncodeRate, bench.ModeRatio} {
		s = append(s, m.String())
	}
	return strings.Join(s, ",")
}

var cli struct {
	Formats string `help:"List of formats to benchmark." default:"${formats}"`
	Tests   string `help:"List of different benchmark tests." default:"${tests}"`
	Codecs  string `help:"List of codecs to benchmark." default:"${codecs}"`
	Paths   string `help:"List of paths to search for test files." default:"."`
	Files   string `help:"List of input files to benchmark." default:"${files}"`
	Levels  string `help:"List of compression levels to benchmark." default:"${levels}"`
	Sizes   string `help:"List of input sizes to benchmark." default:"${sizes}"`
}

// config is the parsed form of the command line.
type config struct {
	formats []bench.Format
	modes   []bench.Mode
	codecs  []string
	files   []string
	levels  []int
	sizes   []int
}

func parseConfig() (*config, error) {
	sep := regexp.MustCompile("[,:]")
	conf := &config{
		codecs: sep.Split(cli.Codecs, -1),
		files:  sep.Split(cli.Files, -1),
	}
	bench.Paths = sep.Split(cli.Paths, -1)
	for _, s := range sep.Split(cli.Formats, -1) {
		f, err := bench.ParseFormat(s)
		if err != nil {
			return nil, err
		}
		conf.formats = append(conf.formats, f)
	}
	for _, s := range sep.Split(cli.Tests, -1) {
		m, err := bench.ParseMode(s)
		if err != nil {
			return nil, err
		}
		conf.modes = append(conf.modes, m)
	}
	for _, s := range sep.Split(cli.Levels, -1) {
		lvl, err := unitconv.ParsePrefix(s, unitconv.AutoParse)
		if err != nil {
			return nil, fmt.Errorf("invalid level: %q", s)
		}
		conf.levels = append(conf.levels, int(lvl))
	}
	for _, s := range sep.Split(cli.Sizes, -1) {
		n, err := unitconv.ParsePrefix(s, unitconv.AutoParse)
		if err != nil || n < 0 || n > math.MaxInt32 {
			return nil, fmt.Errorf("invalid size: %q", s)
		}
		conf.sizes = append(conf.sizes, int(n))
	}
	return conf, nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Description("Compare the performance of compression codecs."),
		kong.Vars{
			"formats": formatList(),
			"tests":   modeList(),
			"codecs":  strings.Join(codecNames(), ","),
			"files":   strings.Join(bench.InputNames(), ","),
			"levels":  defaultLevels,
			"sizes":   defaultSizes,
		},
	)
	conf, err := parseConfig()
	ctx.FatalIfErrorf(err)

	ts := time.Now()
	for _, f := range conf.formats {
		for _, m := range conf.modes {
			runBenchmark(conf, f, m)
		}
		fmt.Println()
	}
	fmt.Printf("RUNTIME: %v\n", time.Since(ts))
}

func runBenchmark(conf *config, f bench.Format, m bench.Mode) {
	fmt.Printf("BENCHMARK: %v:%v\n", f, m)

	// Only keep the codecs that can take part in this benchmark.
	c := bench.Lookup(f)
	var codecs []string
	for _, name := range conf.codecs {
		_, hasEnc := c.Encoders[name]
		_, hasDec := c.Decoders[name]
		if (m == bench.ModeDecodeRate && hasDec) || (m != bench.ModeDecodeRate && hasEnc) {
			codecs = append(codecs, name)
		}
	}
	switch {
	case bench.ReferenceEncoder(f) == nil:
		fmt.Print("\tSKIP: There are no encoders available.\n\n")
		return
	case len(codecs) == 0:
		fmt.Print("\tSKIP: There are no codecs available.\n\n")
		return
	}

	var cnt int
	total := len(codecs) * len(conf.files) * len(conf.levels) * len(conf.sizes)
	tick := func() {
		pct := 100.0 * float64(cnt) / float64(total)
		fmt.Printf("\t[%6.2f%%] %d of %d\r", pct, cnt, total)
		cnt++
	}
	results, names := bench.Run(m, f, codecs, conf.files, conf.levels, conf.sizes, tick)

	title, suffix := "MB/s", ""
	if m == bench.ModeRatio {
		title, suffix = "ratio", "x"
	}
	printResults(results, names, codecs, title, suffix)
	fmt.Println()
}

func printResults(results [][]bench.Result, names, codecs []string, title, suffix string) {
	// Allocate result table.
	cells := make([][]string, 1+len(names))
	for i := range cells {
		cells[i] = make([]string, 1+2*len(codecs))
	}

	// Label the first row.
	cells[0][0] = "benchmark"
	for i, c := range codecs {
		cells[0][1+2*i] = c + " " + title
		cells[0][2+2*i] = "delta"
	}

	// Insert all rows.
	for j, row := range results {
		cells[1+j][0] = names[j]
		for i, r := range row {
			if r.R != 0 && !math.IsNaN(r.R) && !math.IsInf(r.R, 0) {
				cells[1+j][1+2*i] = fmt.Sprintf("%.2f", r.R) + suffix
			}
			if r.D != 0 && !math.IsNaN(r.D) && !math.IsInf(r.D, 0) {
				cells[1+j][2+2*i] = fmt.Sprintf("%.2f", r.D) + "x"
			}
		}
	}

	// Compute the maximum lengths.
	maxLens := make([]int, 1+2*len(codecs))
	for _, row := range cells {
		for i, s := range row {
			if maxLens[i] < len(s) {
				maxLens[i] = len(s)
			}
		}
	}

	// Print padded versions of all cells.
	for _, row := range cells {
		fmt.Print("\t")
		for i, s := range row {
			switch {
			case i == 0: // Column 0
				row[i] = s + strings.Repeat(" ", maxLens[i]-len(s))
			case i%2 == 1: // Column 1, 3, 5, 7, ...
				row[i] = strings.Repeat(" ", 6+maxLens[i]-len(s)) + s
			case i%2 == 0: // Column 2, 4, 6, 8, ...
				row[i] = strings.Repeat(" ", 2+maxLens[i]-len(s)) + s
			}
			fmt.Print(row[i])
		}
		fmt.Println()
	}
}
