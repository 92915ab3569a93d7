// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package util contains utility functions for WorkHub.
package util

import (
	"bufio"
	"fmt"
	"os"

	"github.com/frankbraun/codechain/util/file"
	"github.com/workhubapp/workhub/log"
	"golang.org/x/crypto/ssh/terminal"
)

// Fatal prints err to stderr and exits the process with exit code 1.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "%s: error: %s\n", os.Args[0], err)
	os.Exit(1)
}

// Readline reads a single line from the file pointer fp and closes it
// afterwards. If fp is a terminal the input is not echoed.
func Readline(fp *os.File) ([]byte, error) {
	lines, err := ReadLines(fp, 1)
	if err != nil {
		return nil, err
	}
	return lines[0], nil
}

// ReadLines reads n lines from the file pointer fp and closes it afterwards.
// If fp is a terminal the input is not echoed. Missing lines are returned
// empty.
func ReadLines(fp *os.File, n int) ([][]byte, error) {
	defer fp.Close()
	lines := make([][]byte, n)
	fd := int(fp.Fd())
	if terminal.IsTerminal(fd) {
		for i := range lines {
			line, err := terminal.ReadPassword(fd)
			if err != nil {
				return nil, log.Error(err)
			}
			lines[i] = line
		}
		return lines, nil
	}
	scanner := bufio.NewScanner(fp)
	for i := range lines {
		if scanner.Scan() {
			lines[i] = append([]byte(nil), scanner.Bytes()...)
		} else if err := scanner.Err(); err != nil {
			return nil, log.Error(err)
		}
	}
	return lines, nil
}

// CreateDirs creates all given directories with owner-only permissions.
func CreateDirs(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return log.Error(err)
		}
	}
	return nil
}

// MustNotExist returns an error if one of the given files exists already.
func MustNotExist(filenames ...string) error {
	for _, filename := range filenames {
		exists, err := file.Exists(filename)
		if err != nil {
			return log.Error(err)
		}
		if exists {
			return log.Errorf("util: file '%s' exists already", filename)
		}
	}
	return nil
}

// ContainsString returns true, if the string array sa contains the string s.
func ContainsString(sa []string, s string) bool {
	for _, v := range sa {
		if v == s {
			return true
		}
	}
	return false
}
