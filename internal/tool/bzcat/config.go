// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	EnvVarPrefix = "BZCAT"

	DefaultBufferSize = 32 << 10

	MinBufferSize = 1
	MaxBufferSize = 64 << 20
)

// VERSION gets set during build
var VERSION = "0.0.0"

type CLI struct {
	Files      []string `kong:"arg,optional,help='Files to decompress; none or - reads standard input'"`
	Output     string   `kong:"help='Write decompressed output to this file instead of standard output',short='o'"`
	Test       bool     `kong:"help='Check the integrity of the inputs without writing any output',short='t'"`
	BufferSize int      `kong:"help='Size of the read buffer in bytes',default='${buffer_size}',short='b'"`

	Debug   bool             `kong:"help='Enable debug output',short='d'"`
	Quiet   bool             `kong:"help='Only report errors',short='q'"`
	Version kong.VersionFlag `help:"Show version and exit" short:"v" env:"-"`
}

// newCLI parses the command line arguments. Every flag can also be set
// through a BZCAT_ prefixed environment variable, which may come from a
// .env file in the working directory.
func newCLI(args []string, options ...kong.Option) (*CLI, error) {
	// Attempt to load .env
	_ = godotenv.Load(".env")

	cli := &CLI{}
	options = append([]kong.Option{
		kong.Name("bzcat"),
		kong.Description("Decompress BZip2 files to standard output"),
		kong.UsageOnError(),
		kong.DefaultEnvars(EnvVarPrefix),
		kong.Vars{
			"version":     VERSION,
			"buffer_size": strconv.Itoa(DefaultBufferSize),
		},
	}, options...)
	parser, err := kong.New(cli, options...)
	if err != nil {
		return nil, errors.Wrap(err, "error creating parser")
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, errors.Wrap(err, "error parsing CLI args")
	}

	if err := validateCLIArgs(cli); err != nil {
		return nil, errors.Wrap(err, "error validating args")
	}
	return cli, nil
}

func validateCLIArgs(cli *CLI) error {
	if cli.BufferSize < MinBufferSize || cli.BufferSize > MaxBufferSize {
		return errors.Errorf("buffer size must be between %d and %d", MinBufferSize, MaxBufferSize)
	}
	if cli.Test && cli.Output != "" {
		return errors.New("--test and --output are mutually exclusive")
	}
	if len(cli.Files) == 0 {
		cli.Files = []string{"-"}
	}
	return nil
}
