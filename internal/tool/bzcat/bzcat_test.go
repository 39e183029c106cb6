// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"bytes"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	dsbzip2 "github.com/dsnet/compress/bzip2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/dsnet/bzstream/bzip2"
	"github.com/dsnet/bzstream/internal/testutil"
)

func compress(t *testing.T, input []byte) []byte {
	var bb bytes.Buffer
	zw, err := dsbzip2.NewWriter(&bb, &dsbzip2.WriterConfig{Level: 1})
	if err != nil {
		t.Fatalf("unexpected NewWriter error: %v", err)
	}
	if _, err := zw.Write(input); err != nil {
		t.Fatalf("unexpected Write error: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("unexpected Close error: %v", err)
	}
	return bb.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	p := filepath.Join(dir, name)
	if err := ioutil.WriteFile(p, data, 0664); err != nil {
		t.Fatalf("unexpected WriteFile error: %v", err)
	}
	return p
}

func TestNewCLI(t *testing.T) {
	var vectors = []struct {
		args  []string
		files []string
		size  int
		fail  bool
	}{{
		args:  nil,
		files: []string{"-"},
		size:  DefaultBufferSize,
	}, {
		args:  []string{"a.bz2", "b.bz2"},
		files: []string{"a.bz2", "b.bz2"},
		size:  DefaultBufferSize,
	}, {
		args:  []string{"-b", "7", "a.bz2"},
		files: []string{"a.bz2"},
		size:  7,
	}, {
		args: []string{"--buffer-size", "0"},
		fail: true,
	}, {
		args: []string{"-t", "-o", "out"},
		fail: true,
	}, {
		args: []string{"--no-such-flag"},
		fail: true,
	}}

	for i, v := range vectors {
		cli, err := newCLI(v.args)
		if (err != nil) != v.fail {
			t.Errorf("test %d, error mismatch: got %v, want failure %v", i, err, v.fail)
			continue
		}
		if v.fail {
			continue
		}
		if strings.Join(cli.Files, ",") != strings.Join(v.files, ",") {
			t.Errorf("test %d, files mismatch: got %v, want %v", i, cli.Files, v.files)
		}
		if cli.BufferSize != v.size {
			t.Errorf("test %d, buffer size mismatch: got %d, want %d", i, cli.BufferSize, v.size)
		}
	}
}

func TestNewCLIEnv(t *testing.T) {
	os.Setenv(EnvVarPrefix+"_BUFFER_SIZE", "123")
	defer os.Unsetenv(EnvVarPrefix + "_BUFFER_SIZE")

	cli, err := newCLI(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cli.BufferSize != 123 {
		t.Errorf("buffer size mismatch: got %d, want 123", cli.BufferSize)
	}
}

func TestRun(t *testing.T) {
	dir, err := ioutil.TempDir("", "bzcat")
	if err != nil {
		t.Fatalf("unexpected TempDir error: %v", err)
	}
	defer os.RemoveAll(dir)

	in1 := testutil.NewRand(0).Bytes(50000)
	in2 := bytes.Repeat([]byte("hello, world\n"), 1000)
	f1 := writeFile(t, dir, "a.bz2", compress(t, in1))
	f2 := writeFile(t, dir, "b.bz2", compress(t, in2))
	bad := compress(t, in2)
	bad[len(bad)-2] ^= 0x01 // Corrupt the stream checksum
	f3 := writeFile(t, dir, "c.bz2", bad)
	stdin := compress(t, []byte("from stdin"))

	var vectors = []struct {
		cli    CLI
		output []byte
		err    error
	}{{
		cli:    CLI{Files: []string{f1}},
		output: in1,
	}, {
		cli:    CLI{Files: []string{f1, "-", f2}},
		output: append(append(append([]byte(nil), in1...), "from stdin"...), in2...),
	}, {
		cli:    CLI{Files: []string{f2, f3}},
		output: append(append([]byte(nil), in2...), in2...),
		err:    bzip2.ErrChecksum,
	}, {
		cli: CLI{Files: []string{f1, f2}, Test: true},
	}, {
		cli:    CLI{Files: []string{filepath.Join(dir, "missing.bz2")}},
		output: nil,
		err:    os.ErrNotExist,
	}}

	for i, v := range vectors {
		v.cli.BufferSize = 1000
		log, hook := test.NewNullLogger()
		log.SetLevel(logrus.DebugLevel)

		var out bytes.Buffer
		err := run(&v.cli, bytes.NewReader(stdin), &out, log)
		if v.err == nil && err != nil {
			t.Errorf("test %d, unexpected error: %v", i, err)
		}
		if v.err != nil && !errors.Is(err, v.err) {
			t.Errorf("test %d, error mismatch: got %v, want %v", i, err, v.err)
		}
		if !bytes.Equal(out.Bytes(), v.output) {
			t.Errorf("test %d, output mismatch: got %d bytes, want %d bytes", i, out.Len(), len(v.output))
		}

		var infos int
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.InfoLevel && e.Message == "decompressed" {
				infos++
				if _, ok := e.Data["blocks"]; !ok {
					t.Errorf("test %d, missing blocks field", i)
				}
			}
		}
		if v.err == nil && infos != len(v.cli.Files) {
			t.Errorf("test %d, log entries mismatch: got %d, want %d", i, infos, len(v.cli.Files))
		}
	}
}

func TestRunOutputFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "bzcat")
	if err != nil {
		t.Fatalf("unexpected TempDir error: %v", err)
	}
	defer os.RemoveAll(dir)

	input := []byte(strings.Repeat("abcd", 10000))
	cli := &CLI{
		Files:      []string{writeFile(t, dir, "a.bz2", compress(t, input))},
		Output:     filepath.Join(dir, "a"),
		BufferSize: DefaultBufferSize,
	}
	log, _ := test.NewNullLogger()
	if err := run(cli, nil, nil, log); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := ioutil.ReadFile(cli.Output)
	if err != nil {
		t.Fatalf("unexpected ReadFile error: %v", err)
	}
	if !bytes.Equal(got, input) {
		t.Errorf("output mismatch: got %d bytes, want %d bytes", len(got), len(input))
	}
}
