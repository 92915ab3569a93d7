// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workhubapp/workhub/def"
	"github.com/workhubapp/workhub/keystore"
	ksmem "github.com/workhubapp/workhub/keystore/memstore"
	"github.com/workhubapp/workhub/remote"
	"github.com/workhubapp/workhub/remote/memstore"
)

func TestRoomID(t *testing.T) {
	assert.Equal(t, "u2-u1", RoomID("u1", "u2"))
	assert.Equal(t, "u2-u1", RoomID("u2", "u1"))
	assert.Equal(t, "a-a", RoomID("a", "a"))
	pairs := [][2]string{
		{"alice", "bob"},
		{"", "x"},
		{"Zed", "abe"},
		{"user-1", "user-10"},
	}
	for _, p := range pairs {
		assert.Equal(t, RoomID(p[0], p[1]), RoomID(p[1], p[0]))
	}
}

func TestRoomPeer(t *testing.T) {
	r := Room{ID: "u2-u1", Participants: []string{"u1", "u2"}}
	assert.Equal(t, "u2", r.Peer("u1"))
	assert.Equal(t, "u1", r.Peer("u2"))
	r = Room{ID: "u2-u1"}
	assert.Equal(t, "u1", r.Peer("u2"))
	assert.Equal(t, "u2", r.Peer("u1"))
}

func newDirectory(t *testing.T) (*Directory, *memstore.MemStore) {
	ms := memstore.New()
	d := New(ms, keystore.New(ksmem.New()))
	ctx := context.Background()
	for _, u := range []UserIdentity{
		{UID: "u1", Email: "alice@example.com", DisplayName: "alice"},
		{UID: "u2", Email: "bob@example.com", DisplayName: "bob"},
	} {
		_, err := d.CreateUser(ctx, u)
		require.NoError(t, err)
	}
	return d, ms
}

func TestCreateUser(t *testing.T) {
	d, _ := newDirectory(t)
	u, err := d.User(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "alice", u.DisplayName)
	assert.NotEmpty(t, u.PublicKey)
	assert.Empty(t, u.Friends)

	pub, err := d.PublicKey(context.Background(), "u1")
	require.NoError(t, err)
	kp, err := d.keys.LookupKeyPair("u1")
	require.NoError(t, err)
	assert.Zero(t, kp.Public.N.Cmp(pub.N))
}

func TestEstablishFriendship(t *testing.T) {
	d, ms := newDirectory(t)
	ctx := context.Background()
	require.NoError(t, d.EstablishFriendship(ctx, "u1", "u2"))
	require.NoError(t, d.EstablishFriendship(ctx, "u1", "u2"))
	require.NoError(t, d.EstablishFriendship(ctx, "u2", "u1"))

	assert.Equal(t, 1, ms.Count(def.ChatRoomsCollection))
	alice, err := d.User(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, alice.Friends)
	bob, err := d.User(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, bob.Friends)

	doc, err := ms.Get(ctx, RoomPath("u2-u1"))
	require.NoError(t, err)
	room := RoomFromDocument(*doc)
	assert.Equal(t, "u2-u1", room.ID)
	assert.ElementsMatch(t, []string{"u1", "u2"}, room.Participants)
	assert.Equal(t, def.ConversationStarted, room.LastMessage)
	assert.NotNil(t, room.LastMessageTime)
}

func TestEstablishFriendshipKeepsLastMessage(t *testing.T) {
	d, ms := newDirectory(t)
	ctx := context.Background()
	require.NoError(t, d.EstablishFriendship(ctx, "u1", "u2"))
	err := ms.RunTransaction(ctx, func(tx remote.Tx) error {
		return tx.Set(RoomPath("u2-u1"), remote.Document{
			FieldLastMessage:     "later",
			FieldLastSenderID:    "u1",
			FieldLastMessageTime: remote.ServerTimestamp,
		}, remote.Merge)
	})
	require.NoError(t, err)
	require.NoError(t, d.EstablishFriendship(ctx, "u2", "u1"))
	doc, err := ms.Get(ctx, RoomPath("u2-u1"))
	require.NoError(t, err)
	room := RoomFromDocument(*doc)
	assert.Equal(t, "later", room.LastMessage)
	assert.Equal(t, "u1", room.LastSenderID)
}

func TestEstablishFriendshipAtomic(t *testing.T) {
	d, ms := newDirectory(t)
	ctx := context.Background()
	err := d.EstablishFriendship(ctx, "u1", "ghost")
	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, ErrUserNotFound, de.Err)
	assert.Equal(t, 0, ms.Count(def.ChatRoomsCollection))
	alice, err := d.User(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, alice.Friends)

	ms.SetFailure(remote.ErrUnavailable)
	err = d.EstablishFriendship(ctx, "u1", "u2")
	assert.True(t, errors.Is(err, remote.ErrUnavailable))
	ms.SetFailure(nil)
	assert.Equal(t, 0, ms.Count(def.ChatRoomsCollection))

	err = d.EstablishFriendship(ctx, "u1", "u1")
	assert.True(t, errors.Is(err, ErrSelfFriendship))
}

func TestSyncPublicKey(t *testing.T) {
	d, _ := newDirectory(t)
	ctx := context.Background()
	changed, err := d.SyncPublicKey(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = d.keys.RotateKeyPair("u1")
	require.NoError(t, err)
	changed, err = d.SyncPublicKey(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, changed)
	kp, err := d.keys.LookupKeyPair("u1")
	require.NoError(t, err)
	pub, err := d.PublicKey(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, kp.Public.N.Cmp(pub.N))

	_, err = d.SyncPublicKey(ctx, "ghost")
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestPublicKeyMissing(t *testing.T) {
	d, ms := newDirectory(t)
	ctx := context.Background()
	err := ms.RunTransaction(ctx, func(tx remote.Tx) error {
		return tx.Set(UserPath("u3"), remote.Document{"uid": "u3"})
	})
	require.NoError(t, err)
	_, err = d.PublicKey(ctx, "u3")
	assert.True(t, errors.Is(err, ErrNoPublicKey))
	_, err = d.PublicKey(ctx, "ghost")
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestAddPushToken(t *testing.T) {
	d, _ := newDirectory(t)
	ctx := context.Background()
	require.NoError(t, d.AddPushToken(ctx, "u1", "tok"))
	require.NoError(t, d.AddPushToken(ctx, "u1", "tok"))
	u, err := d.User(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok"}, u.FCMTokens)
	assert.Error(t, d.AddPushToken(ctx, "ghost", "tok"))
}

func TestRoomFromDocument(t *testing.T) {
	ts := time.Unix(7, 0)
	r := RoomFromDocument(remote.DocumentSnapshot{
		ID: "b-a",
		Data: remote.Document{
			FieldParticipants:    []interface{}{"a", "b"},
			FieldLastMessage:     "hi",
			FieldLastSenderID:    "a",
			FieldLastMessageTime: ts,
		},
	})
	assert.Equal(t, []string{"a", "b"}, r.Participants)
	assert.Equal(t, "hi", r.LastMessage)
	require.NotNil(t, r.LastMessageTime)
	assert.True(t, ts.Equal(*r.LastMessageTime))
}
