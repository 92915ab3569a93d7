// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workhubapp/workhub/chatsync"
	"github.com/workhubapp/workhub/cipher"
	"github.com/workhubapp/workhub/cryptengine"
	"github.com/workhubapp/workhub/def"
	"github.com/workhubapp/workhub/directory"
	"github.com/workhubapp/workhub/keystore"
	ksmem "github.com/workhubapp/workhub/keystore/memstore"
	"github.com/workhubapp/workhub/msg"
	"github.com/workhubapp/workhub/remote"
	"github.com/workhubapp/workhub/remote/memstore"
)

var syncOptions = chatsync.Options{
	BackoffMin:    time.Millisecond,
	BackoffMax:    10 * time.Millisecond,
	BackoffFactor: 2,
}

// device is the client of one user on its own device.
type device struct {
	deps Deps
}

func newDevice(t *testing.T, ms *memstore.MemStore, uid string) *device {
	keys := keystore.New(ksmem.New())
	d := &device{
		deps: Deps{
			Keys:      keys,
			Codec:     msg.NewCodec(cryptengine.New(keys)),
			Directory: directory.New(ms, keys),
			Sync:      chatsync.New(ms, nil, syncOptions),
		},
	}
	_, err := d.deps.Directory.CreateUser(context.Background(), directory.UserIdentity{UID: uid})
	require.NoError(t, err)
	return d
}

func waitState(t *testing.T, c *Controller, state State) {
	deadline := time.Now().Add(5 * time.Second)
	for c.State() != state {
		if time.Now().After(deadline) {
			t.Fatalf("state %s not reached, still %s", state, c.State())
		}
		time.Sleep(time.Millisecond)
	}
}

// waitBodies waits for an update with the given bodies.
func waitBodies(t *testing.T, c *Controller, bodies ...string) []msg.PlaintextMessage {
	timeout := time.After(5 * time.Second)
	for {
		select {
		case msgs, ok := <-c.Updates():
			require.True(t, ok, "updates closed")
			if len(msgs) != len(bodies) {
				continue
			}
			match := true
			for i := range msgs {
				if msgs[i].Body != bodies[i] {
					match = false
				}
			}
			if match {
				return msgs
			}
		case <-timeout:
			t.Fatalf("no update with bodies %v", bodies)
		}
	}
}

func setup(t *testing.T) (*memstore.MemStore, *device, *device) {
	ms := memstore.New()
	alice := newDevice(t, ms, "u1")
	bob := newDevice(t, ms, "u2")
	require.NoError(t, alice.deps.Directory.EstablishFriendship(context.Background(), "u1", "u2"))
	return ms, alice, bob
}

func TestAliceAndBob(t *testing.T) {
	ms, alice, bob := setup(t)
	ctx := context.Background()
	ac, err := New(alice.deps, "u1", "u2", Options{})
	require.NoError(t, err)
	defer ac.Close()
	bc, err := New(bob.deps, "u2", "u1", Options{})
	require.NoError(t, err)
	defer bc.Close()
	assert.Equal(t, "u2-u1", ac.RoomID())
	assert.Equal(t, ac.RoomID(), bc.RoomID())

	waitState(t, ac, Live)
	assert.False(t, ac.Degraded())
	require.NoError(t, ac.Send(ctx, "hello"))
	assert.Empty(t, ac.Outbox())

	msgs := waitBodies(t, bc, "hello")
	assert.Equal(t, "u1", msgs[0].SenderID)
	assert.False(t, msgs[0].Undecryptable)
	assert.False(t, msgs[0].Timestamp.IsZero())
	waitBodies(t, ac, "hello")

	require.NoError(t, bc.Send(ctx, "hi alice"))
	require.NoError(t, ac.Send(ctx, "how are you?"))
	waitBodies(t, bc, "hello", "hi alice", "how are you?")
	msgs = waitBodies(t, ac, "hello", "hi alice", "how are you?")
	assert.Equal(t, msgs, ac.Messages())

	// the preview does not leak the plaintext
	doc, err := ms.Get(ctx, directory.RoomPath("u2-u1"))
	require.NoError(t, err)
	room := directory.RoomFromDocument(*doc)
	assert.Equal(t, def.EncryptedPreview, room.LastMessage)
	assert.Equal(t, "u1", room.LastSenderID)
}

func TestPlaintextPreview(t *testing.T) {
	ms, alice, _ := setup(t)
	ctx := context.Background()
	ac, err := New(alice.deps, "u1", "u2", Options{PlaintextPreview: true})
	require.NoError(t, err)
	defer ac.Close()
	waitState(t, ac, Live)
	require.NoError(t, ac.Send(ctx, "visible"))
	doc, err := ms.Get(ctx, directory.RoomPath("u2-u1"))
	require.NoError(t, err)
	assert.Equal(t, "visible", directory.RoomFromDocument(*doc).LastMessage)
}

func TestSendBlank(t *testing.T) {
	ms, alice, _ := setup(t)
	ac, err := New(alice.deps, "u1", "u2", Options{})
	require.NoError(t, err)
	defer ac.Close()
	waitState(t, ac, Live)
	require.NoError(t, ac.Send(context.Background(), " \t\n"))
	require.NoError(t, ac.Send(context.Background(), ""))
	assert.Empty(t, ac.Outbox())
	assert.Equal(t, 0, ms.Count(directory.MessagesCollection("u2-u1")))
}

func TestSendFailure(t *testing.T) {
	ms, alice, _ := setup(t)
	ctx := context.Background()
	ac, err := New(alice.deps, "u1", "u2", Options{})
	require.NoError(t, err)
	defer ac.Close()
	waitState(t, ac, Live)

	ms.SetFailure(remote.ErrUnavailable)
	err = ac.Send(ctx, "lost?")
	var se *SendError
	require.True(t, errors.As(err, &se))
	assert.True(t, errors.Is(err, remote.ErrUnavailable))
	outbox := ac.Outbox()
	require.Len(t, outbox, 1)
	assert.Equal(t, se.MessageID, outbox[0].ID)
	assert.Equal(t, Failed, outbox[0].Status)
	assert.Equal(t, "lost?", outbox[0].Body)
	assert.Empty(t, ac.Messages())

	ms.SetFailure(nil)
	assert.Equal(t, ErrUnknownMessage, ac.Resend(ctx, "unknown"))
	require.NoError(t, ac.Resend(ctx, se.MessageID))
	assert.Empty(t, ac.Outbox())
	msgs := waitBodies(t, ac, "lost?")
	assert.Equal(t, se.MessageID, msgs[0].ID)
}

func TestDegraded(t *testing.T) {
	ms, alice, _ := setup(t)
	ctx := context.Background()
	// u3 has no directory entry, but a message from u3 wrapped for u1
	ac, err := New(alice.deps, "u1", "u3", Options{})
	require.NoError(t, err)
	defer ac.Close()
	waitState(t, ac, Live)
	assert.True(t, ac.Degraded())
	assert.True(t, errors.Is(ac.PeerKeyError(), directory.ErrUserNotFound))
	assert.Equal(t, ErrNoPeerKey, ac.Send(ctx, "hello"))
	assert.Empty(t, ac.Outbox())

	u3Keys := keystore.New(ksmem.New())
	u3, err := u3Keys.GetOrCreateKeyPair("u3")
	require.NoError(t, err)
	u1, err := alice.deps.Keys.LookupKeyPair("u1")
	require.NoError(t, err)
	w, err := msg.NewCodec(cryptengine.New(u3Keys)).EncodeOutbound("from u3", "u3", "u1", u3.Public, u1.Public)
	require.NoError(t, err)
	s := chatsync.New(ms, nil, syncOptions)
	require.NoError(t, s.SendMessage(ctx, ac.RoomID(), w, def.EncryptedPreview))
	msgs := waitBodies(t, ac, "from u3")
	assert.False(t, msgs[0].Undecryptable)
}

func TestRotatedKeyPlaceholder(t *testing.T) {
	_, alice, bob := setup(t)
	ctx := context.Background()
	ac, err := New(alice.deps, "u1", "u2", Options{})
	require.NoError(t, err)
	defer ac.Close()
	waitState(t, ac, Live)
	require.NoError(t, ac.Send(ctx, "before rotation"))

	// bob reinstalls: new key pair, old messages cannot be decrypted
	_, err = bob.deps.Keys.RotateKeyPair("u2")
	require.NoError(t, err)
	bc, err := New(bob.deps, "u2", "u1", Options{})
	require.NoError(t, err)
	defer bc.Close()
	msgs := waitBodies(t, bc, def.UndecryptableBody)
	assert.True(t, msgs[0].Undecryptable)
	waitBodies(t, ac, "before rotation")
}

func TestKeyStoreUnavailable(t *testing.T) {
	ms := memstore.New()
	secrets := ksmem.New()
	secrets.SetFailure(errors.New("locked"))
	keys := keystore.New(secrets)
	deps := Deps{
		Keys:      keys,
		Codec:     msg.NewCodec(cryptengine.New(keys)),
		Directory: directory.New(ms, keys),
		Sync:      chatsync.New(ms, nil, syncOptions),
	}
	_, err := New(deps, "u1", "u2", Options{})
	assert.True(t, errors.Is(err, keystore.ErrUnavailable))
	assert.Equal(t, 0, ms.Listeners())
}

func TestClose(t *testing.T) {
	ms, alice, _ := setup(t)
	ac, err := New(alice.deps, "u1", "u2", Options{})
	require.NoError(t, err)
	waitState(t, ac, Live)
	ac.Close()
	ac.Close()
	assert.Equal(t, Terminated, ac.State())
	_, ok := <-ac.Updates()
	assert.False(t, ok)
	assert.Equal(t, 0, ms.Listeners())
	assert.Equal(t, ErrClosed, ac.Send(context.Background(), "hello"))

	// closing while the key fetch is still in flight
	bc, err := New(alice.deps, "u1", "u2", Options{})
	require.NoError(t, err)
	bc.Close()
	assert.Equal(t, Terminated, bc.State())
	assert.Equal(t, 0, ms.Listeners())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Initializing", Initializing.String())
	assert.Equal(t, "KeyLoaded", KeyLoaded.String())
	assert.Equal(t, "Live", Live.String())
	assert.Equal(t, "Terminated", Terminated.String())
	assert.Equal(t, "Unknown", State(42).String())
	assert.Equal(t, "Failed", Failed.String())
	assert.Equal(t, "Pending", Pending.String())
}

// gatedStore holds back document reads, and with them the key fetch, until
// release is closed.
type gatedStore struct {
	remote.Store
	release chan struct{}
}

func (s *gatedStore) Get(ctx context.Context, path string) (*remote.DocumentSnapshot, error) {
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.Store.Get(ctx, path)
}

// silentStore never delivers a snapshot.
type silentStore struct {
	remote.Store
}

func (silentStore) Listen(ctx context.Context, q remote.Query) (*remote.Listener, error) {
	return remote.NewListener(make(chan remote.Snapshot), func() {}), nil
}

// gatedReader blocks reads until release is closed and reports the first
// read on started.
type gatedReader struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (r *gatedReader) Read(p []byte) (int, error) {
	r.once.Do(func() { close(r.started) })
	<-r.release
	return cipher.RandReader.Read(p)
}

func sendFrom(t *testing.T, ms *memstore.MemStore, from, to *device, fromID, toID, body string) {
	fromKP, err := from.deps.Keys.LookupKeyPair(fromID)
	require.NoError(t, err)
	toKP, err := to.deps.Keys.LookupKeyPair(toID)
	require.NoError(t, err)
	w, err := from.deps.Codec.EncodeOutbound(body, fromID, toID, fromKP.Public, toKP.Public)
	require.NoError(t, err)
	s := chatsync.New(ms, nil, syncOptions)
	require.NoError(t, s.SendMessage(context.Background(), directory.RoomID(fromID, toID), w, def.EncryptedPreview))
}

func TestSnapshotBeforeKey(t *testing.T) {
	ms, alice, bob := setup(t)
	sendFrom(t, ms, bob, alice, "u2", "u1", "early")

	release := make(chan struct{})
	deps := alice.deps
	deps.Directory = directory.New(&gatedStore{Store: ms, release: release}, deps.Keys)
	ac, err := New(deps, "u1", "u2", Options{})
	require.NoError(t, err)
	defer ac.Close()

	// the snapshot arrives, but is not shown without the key of the peer
	deadline := time.Now().Add(5 * time.Second)
	for ms.Listeners() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no listener")
		}
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, Initializing, ac.State())
	assert.Empty(t, ac.Messages())
	assert.Equal(t, ErrNoPeerKey, ac.Send(context.Background(), "too early"))

	close(release)
	msgs := waitBodies(t, ac, "early")
	assert.Equal(t, "u2", msgs[0].SenderID)
	assert.Equal(t, Live, ac.State())
	assert.False(t, ac.Degraded())
}

func TestKeyLoadedWithoutSnapshot(t *testing.T) {
	ms, alice, _ := setup(t)
	deps := alice.deps
	deps.Sync = chatsync.New(silentStore{Store: ms}, nil, syncOptions)
	ac, err := New(deps, "u1", "u2", Options{})
	require.NoError(t, err)
	defer ac.Close()

	waitState(t, ac, KeyLoaded)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, KeyLoaded, ac.State())
	assert.Empty(t, ac.Messages())

	// the key is known, so sending works before the first snapshot
	require.NoError(t, ac.Send(context.Background(), "hello"))
	assert.Empty(t, ac.Outbox())
	assert.Equal(t, 1, ms.Count(directory.MessagesCollection("u2-u1")))
}

func TestSyncError(t *testing.T) {
	ms, alice, _ := setup(t)
	deps := alice.deps
	deps.Sync = chatsync.New(ms, nil, chatsync.Options{
		BackoffMin:    300 * time.Millisecond,
		BackoffMax:    300 * time.Millisecond,
		BackoffFactor: 2,
	})
	ac, err := New(deps, "u1", "u2", Options{})
	require.NoError(t, err)
	defer ac.Close()
	waitState(t, ac, Live)
	assert.NoError(t, ac.SyncError())

	ms.Disconnect()
	deadline := time.Now().Add(5 * time.Second)
	for ac.SyncError() == nil {
		if time.Now().After(deadline) {
			t.Fatal("no sync error")
		}
		time.Sleep(time.Millisecond)
	}
	var se *chatsync.Error
	require.True(t, errors.As(ac.SyncError(), &se))
	assert.Equal(t, "u2-u1", se.RoomID)
	assert.True(t, errors.Is(ac.SyncError(), remote.ErrUnavailable))

	// the next snapshot clears it
	deadline = time.Now().Add(5 * time.Second)
	for ac.SyncError() != nil {
		if time.Now().After(deadline) {
			t.Fatal("sync error not cleared")
		}
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, Live, ac.State())
	assert.Equal(t, 1, ms.Listeners())
}

func TestCloseDuringSend(t *testing.T) {
	ms, alice, _ := setup(t)
	r := &gatedReader{started: make(chan struct{}), release: make(chan struct{})}
	deps := alice.deps
	deps.Codec = msg.NewCodec(cryptengine.NewWithReader(deps.Keys, r))
	ac, err := New(deps, "u1", "u2", Options{})
	require.NoError(t, err)
	waitState(t, ac, Live)

	errc := make(chan error, 1)
	go func() {
		errc <- ac.Send(context.Background(), "too late")
	}()
	<-r.started
	ac.Close()
	close(r.release)
	assert.Equal(t, ErrClosed, <-errc)
	assert.Empty(t, ac.Outbox())
	assert.Equal(t, 0, ms.Count(directory.MessagesCollection("u2-u1")))
}
