// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// The bzcat command decompresses BZip2 files to standard output.
//
// Example usage:
//	$ bzcat --debug archive.bz2 > archive
//	$ BZCAT_BUFFER_SIZE=4096 bzcat -t a.bz2 b.bz2
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	cli, err := newCLI(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR: ", err)
		os.Exit(1)
	}
	log := newLogger(cli, os.Stderr)
	if err := run(cli, os.Stdin, os.Stdout, log); err != nil {
		log.Errorf("bzcat: %s", err)
		os.Exit(1)
	}
}

func newLogger(cli *CLI, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	switch {
	case cli.Debug:
		log.SetLevel(logrus.DebugLevel)
	case cli.Quiet:
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

func run(cli *CLI, stdin io.Reader, stdout io.Writer, log *logrus.Logger) error {
	if cli.Debug {
		log.Debug("debug mode enabled")
		log.Debugf("  version: %s", VERSION)
		log.Debugf("  files: %v", cli.Files)
		log.Debugf("  output: %q", cli.Output)
		log.Debugf("  test: %v", cli.Test)
		log.Debugf("  buffer size: %d", cli.BufferSize)
	}

	w, err := openOutput(cli, stdout)
	if err != nil {
		return err
	}
	if err := newCatter(log, stdin, cli.BufferSize).Run(w, cli.Files); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
