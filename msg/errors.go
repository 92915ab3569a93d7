// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msg

import (
	"errors"
)

// ErrNoPublicKey is returned if a message is encoded without the public key
// of one of the participants.
var ErrNoPublicKey = errors.New("msg: public key of participant missing")

// ErrNotParticipant is the reason for a placeholder if the viewer is neither
// sender nor receiver of a message.
var ErrNotParticipant = errors.New("msg: viewer is not a participant")

// ErrNoPrivateKey is the reason for a placeholder if this device holds no
// private key for the viewer.
var ErrNoPrivateKey = errors.New("msg: no private key for viewer on this device")

// ErrBadSessionKey is the reason for a placeholder if an unwrapped session
// key has the wrong length.
var ErrBadSessionKey = errors.New("msg: unwrapped session key has wrong length")
