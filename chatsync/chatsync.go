// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chatsync implements the remote sync layer: live subscriptions to
// the messages of a chat room and to the room list of a user, and the atomic
// sending of messages.
//
// Subscriptions deliver full snapshots. Consumers must treat every snapshot
// as the complete state, the same state may be delivered more than once.
package chatsync

import (
	"context"
	"time"

	"github.com/workhubapp/workhub/def"
	"github.com/workhubapp/workhub/directory"
	"github.com/workhubapp/workhub/log"
	"github.com/workhubapp/workhub/msg"
	"github.com/workhubapp/workhub/remote"
)

// Cache is the local cache of synced state. It is implemented by
// msgdb.MsgDB.
type Cache interface {
	ReplaceRoomMessages(roomID string, msgs []*msg.WireMessage) error
	RoomMessages(roomID string) ([]*msg.WireMessage, error)
	ReplaceUserRooms(userID string, rooms []directory.Room) error
	UserRooms(userID string) ([]directory.Room, error)
}

// Options configure the resubscription backoff.
type Options struct {
	BackoffMin    time.Duration
	BackoffMax    time.Duration
	BackoffFactor float64
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		BackoffMin:    def.ResubscribeMin,
		BackoffMax:    def.ResubscribeMax,
		BackoffFactor: def.ResubscribeFactor,
	}
}

// Syncer syncs chat rooms and messages with the remote store.
type Syncer struct {
	store remote.Store
	cache Cache
	opts  Options
}

// New returns a new Syncer. If cache is nil nothing is cached.
func New(store remote.Store, cache Cache, opts Options) *Syncer {
	return &Syncer{store: store, cache: cache, opts: opts}
}

// SendMessage writes w to the messages of roomID and updates the last
// message of the room in one transaction. The server assigns the timestamp
// of both.
func (s *Syncer) SendMessage(ctx context.Context, roomID string, w *msg.WireMessage, preview string) error {
	msgDoc := remote.Document(w.ToDocument())
	msgDoc[msg.TimestampField] = remote.ServerTimestamp
	msgPath := remote.Path(directory.MessagesCollection(roomID), w.MessageID)
	err := s.store.RunTransaction(ctx, func(tx remote.Tx) error {
		if err := tx.Set(msgPath, msgDoc); err != nil {
			return err
		}
		return tx.Set(directory.RoomPath(roomID), remote.Document{
			directory.FieldParticipants:    remote.ArrayUnion(w.SenderID, w.ReceiverID),
			directory.FieldLastMessage:     preview,
			directory.FieldLastSenderID:    w.SenderID,
			directory.FieldLastMessageTime: remote.ServerTimestamp,
		}, remote.Merge)
	})
	if err != nil {
		return log.Error(&Error{Op: "send", RoomID: roomID, Err: err})
	}
	log.Debugf("chatsync: sent message %s to room %s", w.MessageID, roomID)
	return nil
}
