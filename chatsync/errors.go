// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chatsync

import (
	"fmt"
)

// Error is returned if a sync operation fails. On a subscription it means
// the shown messages may be out of date, the subscription keeps retrying.
type Error struct {
	Op     string
	RoomID string
	Err    error
}

func (e *Error) Error() string {
	if e.RoomID == "" {
		return fmt.Sprintf("chatsync: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("chatsync: %s %s: %v", e.Op, e.RoomID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }
