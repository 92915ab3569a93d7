// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctrlengine

import (
	"errors"
)

// ErrPassphrasesDiffer is raised when the supplied passphrases during a DB
// creation or rekey operation differ.
var ErrPassphrasesDiffer = errors.New("ctrlengine: passphrases differ")

// ErrNoKeyPair is raised when a key pair is exported which does not exist
// or no key pair was created yet.
var ErrNoKeyPair = errors.New("ctrlengine: no key pair for user ID")

// ErrArgs is raised when a command gets the wrong number of arguments.
var ErrArgs = errors.New("ctrlengine: wrong number of arguments, try 'help'")
