// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chatsync

import (
	"context"
	"time"

	"github.com/jpillora/backoff"
	"github.com/workhubapp/workhub/def"
	"github.com/workhubapp/workhub/directory"
	"github.com/workhubapp/workhub/log"
	"github.com/workhubapp/workhub/msg"
	"github.com/workhubapp/workhub/remote"
)

// Subscription is a running live query.
type Subscription struct {
	// Errors delivers sync errors. Only the latest undelivered error is
	// kept, the subscription keeps retrying after each of them. Errors is
	// closed when the subscription ends.
	Errors <-chan error

	errc   chan error
	cancel context.CancelFunc
	done   chan struct{}
}

// Close stops the subscription and releases the remote listener. Nothing
// is delivered after Close returns. It is safe to call Close more than
// once.
func (sub *Subscription) Close() {
	sub.cancel()
	<-sub.done
}

// MessageSubscription delivers the messages of a room, ordered by
// timestamp.
type MessageSubscription struct {
	*Subscription
	C <-chan []*msg.WireMessage
}

// RoomSubscription delivers the rooms of a user, most recent conversation
// first.
type RoomSubscription struct {
	*Subscription
	C <-chan []directory.Room
}

func newSubscription(ctx context.Context) (*Subscription, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	errc := make(chan error, 1)
	return &Subscription{
		Errors: errc,
		errc:   errc,
		cancel: cancel,
		done:   make(chan struct{}),
	}, ctx
}

// report replaces an undelivered error, if any.
func (sub *Subscription) report(err error) {
	select {
	case <-sub.errc:
	default:
	}
	sub.errc <- err
}

// SubscribeRoomMessages subscribes to the messages of roomID. The cached
// messages are delivered first, every live snapshot is cached before it is
// delivered.
func (s *Syncer) SubscribeRoomMessages(ctx context.Context, roomID string) *MessageSubscription {
	sub, ctx := newSubscription(ctx)
	c := make(chan []*msg.WireMessage, 1)
	send := func(msgs []*msg.WireMessage) {
		select {
		case <-c:
		default:
		}
		c <- msgs
	}
	q := remote.Query{
		Collection: directory.MessagesCollection(roomID),
		OrderBy:    msg.TimestampField,
		Direction:  remote.Asc,
	}
	go func() {
		defer func() {
			// drop an undelivered snapshot and error
			select {
			case <-c:
			default:
			}
			select {
			case <-sub.errc:
			default:
			}
			close(c)
			close(sub.errc)
			close(sub.done)
		}()
		if s.cache != nil {
			cached, err := s.cache.RoomMessages(roomID)
			if err != nil {
				log.Warnf("chatsync: cannot read cached messages of room %s: %s", roomID, err)
			} else if len(cached) > 0 {
				send(cached)
			}
		}
		s.run(ctx, sub, "subscribe room", roomID, q, func(docs []remote.DocumentSnapshot) {
			msgs := make([]*msg.WireMessage, 0, len(docs))
			for _, doc := range docs {
				msgs = append(msgs, msg.WireMessageFromDocument(doc.ID, doc.Data))
			}
			if s.cache != nil {
				if err := s.cache.ReplaceRoomMessages(roomID, msgs); err != nil {
					log.Warnf("chatsync: cannot cache messages of room %s: %s", roomID, err)
				}
			}
			send(msgs)
		})
	}()
	return &MessageSubscription{Subscription: sub, C: c}
}

// SubscribeUserRooms subscribes to the rooms userID participates in. The
// cached rooms are delivered first, every live snapshot is cached before it
// is delivered.
func (s *Syncer) SubscribeUserRooms(ctx context.Context, userID string) *RoomSubscription {
	sub, ctx := newSubscription(ctx)
	c := make(chan []directory.Room, 1)
	send := func(rooms []directory.Room) {
		select {
		case <-c:
		default:
		}
		c <- rooms
	}
	q := remote.Query{
		Collection:         def.ChatRoomsCollection,
		ArrayContainsField: directory.FieldParticipants,
		ArrayContainsValue: userID,
		OrderBy:            directory.FieldLastMessageTime,
		Direction:          remote.Desc,
	}
	go func() {
		defer func() {
			select {
			case <-c:
			default:
			}
			select {
			case <-sub.errc:
			default:
			}
			close(c)
			close(sub.errc)
			close(sub.done)
		}()
		if s.cache != nil {
			cached, err := s.cache.UserRooms(userID)
			if err != nil {
				log.Warnf("chatsync: cannot read cached rooms of %s: %s", userID, err)
			} else if len(cached) > 0 {
				send(cached)
			}
		}
		s.run(ctx, sub, "subscribe rooms", "", q, func(docs []remote.DocumentSnapshot) {
			rooms := make([]directory.Room, 0, len(docs))
			for _, doc := range docs {
				rooms = append(rooms, directory.RoomFromDocument(doc))
			}
			if s.cache != nil {
				if err := s.cache.ReplaceUserRooms(userID, rooms); err != nil {
					log.Warnf("chatsync: cannot cache rooms of %s: %s", userID, err)
				}
			}
			send(rooms)
		})
	}()
	return &RoomSubscription{Subscription: sub, C: c}
}

// run listens to q until ctx is done and calls emit for every snapshot. A
// failed listener is replaced after a backoff delay.
func (s *Syncer) run(
	ctx context.Context,
	sub *Subscription,
	op, roomID string,
	q remote.Query,
	emit func(docs []remote.DocumentSnapshot),
) {
	b := &backoff.Backoff{
		Min:    s.opts.BackoffMin,
		Max:    s.opts.BackoffMax,
		Factor: s.opts.BackoffFactor,
		Jitter: true,
	}
	for {
		err := s.listen(ctx, q, b, emit)
		if ctx.Err() != nil {
			return
		}
		d := b.Duration()
		log.Warnf("chatsync: %s %s failed, resubscribing in %s: %s", op, q.Collection, d, err)
		sub.report(&Error{Op: op, RoomID: roomID, Err: err})
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// listen runs a single listener until it fails or ctx is done.
func (s *Syncer) listen(
	ctx context.Context,
	q remote.Query,
	b *backoff.Backoff,
	emit func(docs []remote.DocumentSnapshot),
) error {
	l, err := s.store.Listen(ctx, q)
	if err != nil {
		return err
	}
	defer l.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-l.C:
			if !ok {
				return remote.ErrUnavailable
			}
			if snap.Err != nil {
				return snap.Err
			}
			b.Reset()
			emit(snap.Docs)
		}
	}
}
