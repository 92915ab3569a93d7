// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package keystore

import (
	"errors"
	"fmt"
)

// ErrUnavailable is matched (with errors.Is) by every error which signals
// that the secret store cannot be used. Callers must treat it as fatal for
// the cryptographic operation at hand.
var ErrUnavailable = errors.New("keystore: cannot access secure storage")

// ErrCorrupted is the cause of an Error for a secret which cannot be parsed.
var ErrCorrupted = errors.New("keystore: corrupted secret")

// Error is returned if the secret store is unavailable or holds a corrupted
// entry for Alias.
type Error struct {
	Alias string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("keystore: cannot access secure storage (%s): %v", e.Alias, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is ErrUnavailable.
func (e *Error) Is(target error) bool { return target == ErrUnavailable }
