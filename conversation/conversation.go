// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conversation implements the controller of a single open chat
// conversation: it loads the public key of the peer, decrypts the live
// message stream of the room, and sends encrypted messages.
package conversation

import (
	"context"
	"crypto/rsa"
	"strings"
	"sync"

	"github.com/workhubapp/workhub/chatsync"
	"github.com/workhubapp/workhub/def"
	"github.com/workhubapp/workhub/directory"
	"github.com/workhubapp/workhub/keystore"
	"github.com/workhubapp/workhub/log"
	"github.com/workhubapp/workhub/msg"
)

// Deps are the collaborators of a Controller. They can be shared between
// controllers.
type Deps struct {
	Keys      *keystore.Store
	Codec     *msg.Codec
	Directory *directory.Directory
	Sync      *chatsync.Syncer
}

// Options configure a Controller.
type Options struct {
	// PlaintextPreview stores the plaintext of sent messages as the room
	// preview. Otherwise def.EncryptedPreview is stored.
	PlaintextPreview bool
}

// OutboxEntry is an outbound message which is not committed yet.
type OutboxEntry struct {
	ID     string
	Body   string
	Status Status
	Err    error // set if Failed

	wire *msg.WireMessage
}

// Controller controls the conversation of a viewer with a peer.
type Controller struct {
	deps     Deps
	viewerID string
	peerID   string
	roomID   string
	opts     Options

	mu        sync.Mutex
	state     State
	degraded  bool
	keyErr    error
	syncErr   error
	peerKey   *rsa.PublicKey
	pending   []*msg.WireMessage // snapshot received before the key
	havePend  bool
	messages  []msg.PlaintextMessage
	outbox    []*OutboxEntry
	updates   chan []msg.PlaintextMessage
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// New opens the conversation of viewerID with peerID. It fetches the public
// key of the peer and subscribes to the messages of their room
// concurrently. The key pair of viewerID is created if necessary, New fails
// if the secret store cannot be used.
func New(deps Deps, viewerID, peerID string, opts Options) (*Controller, error) {
	if _, err := deps.Keys.GetOrCreateKeyPair(viewerID); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		deps:     deps,
		viewerID: viewerID,
		peerID:   peerID,
		roomID:   directory.RoomID(viewerID, peerID),
		opts:     opts,
		state:    Initializing,
		updates:  make(chan []msg.PlaintextMessage, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go c.run(ctx)
	log.Debugf("conversation: opened room %s", c.roomID)
	return c, nil
}

type keyResult struct {
	pub *rsa.PublicKey
	err error
}

// run multiplexes the key fetch and the message subscription until ctx is
// done.
func (c *Controller) run(ctx context.Context) {
	defer close(c.done)
	keyc := make(chan keyResult, 1)
	go func() {
		pub, err := c.deps.Directory.PublicKey(ctx, c.peerID)
		keyc <- keyResult{pub: pub, err: err}
	}()
	sub := c.deps.Sync.SubscribeRoomMessages(ctx, c.roomID)
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-keyc:
			keyc = nil
			c.keyLoaded(r)
		case wires, ok := <-sub.C:
			if !ok {
				return
			}
			c.snapshot(wires)
		case err, ok := <-sub.Errors:
			if !ok {
				return
			}
			c.mu.Lock()
			c.syncErr = err
			c.mu.Unlock()
		}
	}
}

func (c *Controller) keyLoaded(r keyResult) {
	c.mu.Lock()
	if c.state == Terminated {
		c.mu.Unlock()
		return
	}
	if r.err != nil {
		log.Warnf("conversation: room %s is read-only: %s", c.roomID, r.err)
		c.keyErr = r.err
		c.degraded = true
		c.state = Live
	} else {
		c.peerKey = r.pub
		c.state = KeyLoaded
	}
	pending, havePend := c.pending, c.havePend
	c.pending = nil
	c.havePend = false
	c.mu.Unlock()
	if havePend {
		c.publish(pending)
	}
}

func (c *Controller) snapshot(wires []*msg.WireMessage) {
	c.mu.Lock()
	switch c.state {
	case Terminated:
		c.mu.Unlock()
		return
	case Initializing:
		c.pending = wires
		c.havePend = true
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.publish(wires)
}

// publish decodes wires and delivers the result. It is only called from
// run, decryption happens without holding c.mu.
func (c *Controller) publish(wires []*msg.WireMessage) {
	msgs := c.deps.Codec.DecodeAll(wires, c.viewerID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Terminated {
		return
	}
	c.messages = msgs
	c.state = Live
	c.syncErr = nil
	select {
	case <-c.updates:
	default:
	}
	c.updates <- c.copyMessages()
}

// copyMessages must be called with c.mu held.
func (c *Controller) copyMessages() []msg.PlaintextMessage {
	return append([]msg.PlaintextMessage(nil), c.messages...)
}

// RoomID returns the ID of the chat room of the conversation.
func (c *Controller) RoomID() string {
	return c.roomID
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Degraded reports whether the public key of the peer could not be loaded.
// A degraded conversation shows messages but cannot send.
func (c *Controller) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

// PeerKeyError returns the reason the conversation is degraded, if any.
func (c *Controller) PeerKeyError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyErr
}

// SyncError returns the last sync error since messages were last
// delivered. If it is set the shown messages may be out of date.
func (c *Controller) SyncError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncErr
}

// Updates delivers the decrypted messages of the room, oldest first, every
// time they change. Only the latest undelivered list is kept. The channel
// is closed by Close.
func (c *Controller) Updates() <-chan []msg.PlaintextMessage {
	return c.updates
}

// Messages returns the current decrypted messages of the room, oldest
// first.
func (c *Controller) Messages() []msg.PlaintextMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyMessages()
}

// Outbox returns the outbound messages which are not committed yet.
func (c *Controller) Outbox() []OutboxEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := make([]OutboxEntry, 0, len(c.outbox))
	for _, e := range c.outbox {
		entries = append(entries, *e)
	}
	return entries
}

// Send encrypts body and sends it to the peer. A blank body is ignored.
// The message is kept in the outbox until it is committed, if that fails a
// *SendError is returned and the message stays in the outbox as failed.
func (c *Controller) Send(ctx context.Context, body string) error {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	c.mu.Lock()
	state, peerKey := c.state, c.peerKey
	c.mu.Unlock()
	if state == Terminated {
		return ErrClosed
	}
	if peerKey == nil {
		return ErrNoPeerKey
	}
	kp, err := c.deps.Keys.GetOrCreateKeyPair(c.viewerID)
	if err != nil {
		return err
	}
	w, err := c.deps.Codec.EncodeOutbound(body, c.viewerID, c.peerID, kp.Public, peerKey)
	if err != nil {
		return err
	}
	e := &OutboxEntry{ID: w.MessageID, Body: body, Status: Pending, wire: w}
	c.mu.Lock()
	if c.state == Terminated {
		c.mu.Unlock()
		return ErrClosed
	}
	c.outbox = append(c.outbox, e)
	c.mu.Unlock()
	return c.commit(ctx, e)
}

// Resend sends a failed message from the outbox again.
func (c *Controller) Resend(ctx context.Context, messageID string) error {
	c.mu.Lock()
	if c.state == Terminated {
		c.mu.Unlock()
		return ErrClosed
	}
	var e *OutboxEntry
	for _, entry := range c.outbox {
		if entry.ID == messageID && entry.Status == Failed {
			e = entry
			e.Status = Pending
			e.Err = nil
			break
		}
	}
	c.mu.Unlock()
	if e == nil {
		return ErrUnknownMessage
	}
	return c.commit(ctx, e)
}

func (c *Controller) commit(ctx context.Context, e *OutboxEntry) error {
	preview := def.EncryptedPreview
	if c.opts.PlaintextPreview {
		preview = e.Body
	}
	err := c.deps.Sync.SendMessage(ctx, c.roomID, e.wire, preview)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		e.Status = Failed
		e.Err = err
		return &SendError{MessageID: e.ID, Err: err}
	}
	for i, entry := range c.outbox {
		if entry == e {
			c.outbox = append(c.outbox[:i], c.outbox[i+1:]...)
			break
		}
	}
	return nil
}

// Close terminates the conversation. The key fetch and the message
// subscription are stopped together, nothing is delivered after Close
// returns. It is safe to call Close more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = Terminated
		c.mu.Unlock()
		c.cancel()
		<-c.done
		select {
		case <-c.updates:
		default:
		}
		close(c.updates)
		log.Debugf("conversation: closed room %s", c.roomID)
	})
}
