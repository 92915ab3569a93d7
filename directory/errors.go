// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package directory

import (
	"errors"
	"fmt"
)

// ErrUserNotFound is returned if a user has no document in the directory.
var ErrUserNotFound = errors.New("directory: user not found")

// ErrNoPublicKey is returned if a user has not published a public key.
var ErrNoPublicKey = errors.New("directory: user has no public key")

// ErrSelfFriendship is returned if a user tries to befriend themselves.
var ErrSelfFriendship = errors.New("directory: cannot befriend oneself")

// Error is returned if a directory operation fails. Nothing of a failed
// operation has been written, the operation can be retried.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("directory: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }
