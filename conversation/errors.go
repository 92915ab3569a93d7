// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conversation

import (
	"errors"
	"fmt"
)

// ErrNoPeerKey is returned by Send if the public key of the peer is not
// available. The conversation is read-only then.
var ErrNoPeerKey = errors.New("conversation: public key of peer unavailable")

// ErrClosed is returned by operations on a closed conversation.
var ErrClosed = errors.New("conversation: closed")

// ErrUnknownMessage is returned by Resend for a message not in the outbox.
var ErrUnknownMessage = errors.New("conversation: message not in outbox")

// SendError is returned if an outbound message could not be committed. The
// message stays in the outbox as failed and can be resent.
type SendError struct {
	MessageID string
	Err       error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("conversation: failed to send message %s: %v", e.MessageID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SendError) Unwrap() error { return e.Err }
