// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conversation

// State is the state of a conversation.
type State int

// States of a conversation.
const (
	// Initializing waits for the public key of the peer.
	Initializing State = iota
	// KeyLoaded has the public key of the peer and waits for the first
	// message snapshot.
	KeyLoaded
	// Live publishes every message snapshot. A degraded conversation is
	// live without the public key of the peer.
	Live
	// Terminated is final.
	Terminated
)

var stateNames = [...]string{"Initializing", "KeyLoaded", "Live", "Terminated"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Status is the delivery status of an outbound message.
type Status int

// Delivery states. A message leaves the outbox once it is committed.
const (
	Pending Status = iota
	Failed
)

func (s Status) String() string {
	if s == Failed {
		return "Failed"
	}
	return "Pending"
}
