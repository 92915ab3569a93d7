// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package directory

import (
	"strings"
	"time"

	"github.com/workhubapp/workhub/def"
	"github.com/workhubapp/workhub/remote"
)

// Room document fields.
const (
	FieldParticipants    = "participants"
	FieldLastMessage     = "lastMessage"
	FieldLastSenderID    = "lastSenderId"
	FieldLastMessageTime = "lastMessageTime"
)

// RoomID returns the ID of the chat room of userA and userB: the
// lexicographically greater ID first, separated by def.RoomIDSeparator.
// The result does not depend on the argument order.
func RoomID(userA, userB string) string {
	if userA < userB {
		userA, userB = userB, userA
	}
	return userA + def.RoomIDSeparator + userB
}

// RoomPath returns the path of the metadata document of roomID.
func RoomPath(roomID string) string {
	return remote.Path(def.ChatRoomsCollection, roomID)
}

// MessagesCollection returns the collection which holds the messages of
// roomID.
func MessagesCollection(roomID string) string {
	return remote.Path(def.ChatsCollection, roomID, def.MessagesCollection)
}

// Room is the metadata of a chat room between two users.
type Room struct {
	ID              string
	Participants    []string
	LastMessage     string
	LastSenderID    string
	LastMessageTime *time.Time // nil until assigned by the server
}

// Peer returns the participant of r which is not userID.
func (r *Room) Peer(userID string) string {
	for _, p := range r.Participants {
		if p != userID {
			return p
		}
	}
	// room IDs are built from the participants
	parts := strings.SplitN(r.ID, def.RoomIDSeparator, 2)
	if len(parts) == 2 && parts[0] == userID {
		return parts[1]
	}
	return parts[0]
}

// RoomFromDocument parses a room metadata document.
func RoomFromDocument(doc remote.DocumentSnapshot) Room {
	r := Room{
		ID:           doc.ID,
		Participants: remote.Strings(doc.Data, FieldParticipants),
	}
	r.LastMessage, _ = doc.Data[FieldLastMessage].(string)
	r.LastSenderID, _ = doc.Data[FieldLastSenderID].(string)
	if ts, ok := doc.Data[FieldLastMessageTime].(time.Time); ok {
		r.LastMessageTime = &ts
	}
	return r
}
