// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/dsnet/golib/unitconv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dsnet/bzstream/bzip2"
)

// catter decompresses a list of inputs into a single output.
type catter struct {
	log     *logrus.Logger
	open    func(name string) (io.Reader, error)
	bufSize int
}

func newCatter(log *logrus.Logger, stdin io.Reader, bufSize int) *catter {
	return &catter{
		log:     log,
		bufSize: bufSize,
		open: func(name string) (io.Reader, error) {
			if name == "-" {
				return stdin, nil
			}
			return os.Open(name)
		},
	}
}

// Run decompresses every input in order and writes the result to w.
// It stops at the first input that fails to decompress.
func (c *catter) Run(w io.Writer, names []string) error {
	buf := make([]byte, c.bufSize)
	for _, name := range names {
		if err := c.cat(w, name, buf); err != nil {
			return errors.Wrapf(err, "error decompressing %s", name)
		}
	}
	return nil
}

func (c *catter) cat(w io.Writer, name string, buf []byte) error {
	ts := time.Now()
	r, err := c.open(name)
	if err != nil {
		return errors.Wrap(err, "unable to open input")
	}

	// The Reader owns the file from here on and closes it once the
	// end-of-stream marker is read, or on Close.
	zr, err := bzip2.NewReader(r, nil)
	if err != nil {
		if cl, ok := r.(io.Closer); ok && r != io.Reader(os.Stdin) {
			cl.Close()
		}
		return errors.Wrap(err, "unable to read stream header")
	}
	defer zr.Close()

	log := c.log.WithField("file", name)
	log.Debug("decompressing")
	_, err = io.CopyBuffer(w, zr, buf)
	fields := logrus.Fields{
		"in":      unitconv.FormatPrefix(float64(zr.InputOffset), unitconv.Base1024, 2) + "B",
		"out":     unitconv.FormatPrefix(float64(zr.OutputOffset), unitconv.Base1024, 2) + "B",
		"blocks":  zr.BlockCount(),
		"elapsed": time.Since(ts).Round(time.Millisecond),
	}
	if err != nil {
		log.WithFields(fields).Debug("decompression failed")
		return err
	}
	if err := zr.Close(); err != nil {
		return errors.Wrap(err, "unable to close input")
	}
	log.WithFields(fields).Info("decompressed")
	return nil
}

// openOutput returns the destination for the decompressed data.
func openOutput(cli *CLI, stdout io.Writer) (io.WriteCloser, error) {
	switch {
	case cli.Test:
		return nopWriteCloser{ioutil.Discard}, nil
	case cli.Output == "" || cli.Output == "-":
		return nopWriteCloser{stdout}, nil
	default:
		f, err := os.Create(cli.Output)
		if err != nil {
			return nil, errors.Wrap(err, "unable to create output")
		}
		return f, nil
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
