// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package descriptors defines helper functions for common file descriptors.
package descriptors

import (
	"os"
	"strconv"
	"syscall"

	"github.com/urfave/cli"
	"github.com/workhubapp/workhub/log"
)

var (
	// InputFDFlag defines the standard --input-fd flag.
	InputFDFlag = cli.StringFlag{
		Name:  "input-fd",
		Value: "stdin",
		Usage: "input file descriptor",
	}
	// OutputFDFlag defines the standard --output-fd flag.
	OutputFDFlag = cli.StringFlag{
		Name:  "output-fd",
		Value: "stdout",
		Usage: "output file descriptor",
	}
	// StatusFDFlag defines the standard --status-fd flag.
	StatusFDFlag = cli.StringFlag{
		Name:  "status-fd",
		Value: "stderr",
		Usage: "status file descriptor",
	}
	// PassphraseFDFlag defines the standard --passphrase-fd flag.
	PassphraseFDFlag = cli.StringFlag{
		Name:  "passphrase-fd",
		Value: "stdin",
		Usage: "passphrase file descriptor",
	}
)

// Table contains the file pointers of the standard file descriptors.
type Table struct {
	InputFP      *os.File
	OutputFP     *os.File
	StatusFP     *os.File
	PassphraseFP *os.File
}

// Open returns the file pointer for a file descriptor option value:
// "stdin", "stdout", "stderr", or a file descriptor number.
func Open(name, value string) (*os.File, error) {
	switch value {
	case "stdin":
		return os.Stdin, nil
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil || i < 0 {
		return nil, log.Errorf("cannot parse --%s %s: argument must be \"stdin\", "+
			"\"stdout\", \"stderr\" or a file descriptor", name, value)
	}
	switch i {
	case syscall.Stdin:
		return os.Stdin, nil
	case syscall.Stdout:
		return os.Stdout, nil
	case syscall.Stderr:
		return os.Stderr, nil
	}
	return os.NewFile(uintptr(i), name), nil
}

// NewTable parses the standard file descriptor options in context c and
// returns a table with the corresponding file pointers.
func NewTable(c *cli.Context) (*Table, error) {
	var t Table
	for _, fd := range []struct {
		name string
		fp   **os.File
	}{
		{InputFDFlag.Name, &t.InputFP},
		{OutputFDFlag.Name, &t.OutputFP},
		{StatusFDFlag.Name, &t.StatusFP},
		{PassphraseFDFlag.Name, &t.PassphraseFP},
	} {
		fp, err := Open(fd.name, c.GlobalString(fd.name))
		if err != nil {
			return nil, err
		}
		*fd.fp = fp
	}
	return &t, nil
}

// Close closes all file pointers in the table which do not refer to the
// standard streams.
func (t *Table) Close() {
	for _, fp := range []*os.File{t.InputFP, t.OutputFP, t.StatusFP, t.PassphraseFP} {
		if fp != nil && fp != os.Stdin && fp != os.Stdout && fp != os.Stderr {
			fp.Close()
		}
	}
}
