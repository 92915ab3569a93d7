// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package directory implements the chat room directory: users, their public
// keys and friend lists, and the metadata of chat rooms.
package directory

import (
	"context"
	"crypto/rsa"

	"github.com/workhubapp/workhub/cipher"
	"github.com/workhubapp/workhub/def"
	"github.com/workhubapp/workhub/encode/base64"
	"github.com/workhubapp/workhub/keystore"
	"github.com/workhubapp/workhub/log"
	"github.com/workhubapp/workhub/remote"
)

// Directory accesses users and chat rooms in the remote store.
type Directory struct {
	store remote.Store
	keys  *keystore.Store
}

// New returns a new Directory on store. keys holds the key pairs of the
// local users.
func New(store remote.Store, keys *keystore.Store) *Directory {
	return &Directory{store: store, keys: keys}
}

// UserPath returns the path of the document of userID.
func UserPath(userID string) string {
	return remote.Path(def.UsersCollection, userID)
}

func fail(op string, err error) error {
	if err == remote.ErrNotFound {
		err = ErrUserNotFound
	}
	return log.Error(&Error{Op: op, Err: err})
}

// EstablishFriendship adds currentUserID and friendID to each other's
// friend list and creates their chat room, all in one transaction. An
// existing room keeps its last message. Calling it again for an established
// pair changes nothing.
func (d *Directory) EstablishFriendship(ctx context.Context, currentUserID, friendID string) error {
	if currentUserID == friendID {
		return log.Error(&Error{Op: "establish friendship", Err: ErrSelfFriendship})
	}
	roomID := RoomID(currentUserID, friendID)
	err := d.store.RunTransaction(ctx, func(tx remote.Tx) error {
		room, err := tx.Get(RoomPath(roomID))
		if err != nil && err != remote.ErrNotFound {
			return err
		}
		if err := tx.Update(UserPath(currentUserID), remote.Document{
			FieldFriends: remote.ArrayUnion(friendID),
		}); err != nil {
			return err
		}
		if err := tx.Update(UserPath(friendID), remote.Document{
			FieldFriends: remote.ArrayUnion(currentUserID),
		}); err != nil {
			return err
		}
		fields := remote.Document{
			FieldParticipants: remote.ArrayUnion(currentUserID, friendID),
		}
		if room == nil {
			fields[FieldLastMessage] = def.ConversationStarted
			fields[FieldLastSenderID] = ""
			fields[FieldLastMessageTime] = remote.ServerTimestamp
		}
		return tx.Set(RoomPath(roomID), fields, remote.Merge)
	})
	if err != nil {
		return fail("establish friendship", err)
	}
	log.Infof("directory: friendship established in room %s", roomID)
	return nil
}

// CreateUser publishes the identity of a new user. The public key is taken
// from the local key pair of u.UID, which is created if necessary.
func (d *Directory) CreateUser(ctx context.Context, u UserIdentity) (*UserIdentity, error) {
	kp, err := d.keys.GetOrCreateKeyPair(u.UID)
	if err != nil {
		return nil, err
	}
	u.PublicKey, err = kp.PublicKeyBase64()
	if err != nil {
		return nil, err
	}
	err = d.store.RunTransaction(ctx, func(tx remote.Tx) error {
		return tx.Set(UserPath(u.UID), u.toDocument(), remote.Merge)
	})
	if err != nil {
		return nil, fail("create user", err)
	}
	return &u, nil
}

// SyncPublicKey uploads the public key of the local key pair of userID if
// it differs from the published one. It reports whether it did.
func (d *Directory) SyncPublicKey(ctx context.Context, userID string) (bool, error) {
	kp, err := d.keys.GetOrCreateKeyPair(userID)
	if err != nil {
		return false, err
	}
	local, err := kp.PublicKeyBase64()
	if err != nil {
		return false, err
	}
	var changed bool
	err = d.store.RunTransaction(ctx, func(tx remote.Tx) error {
		doc, err := tx.Get(UserPath(userID))
		if err != nil {
			return err
		}
		if published, _ := doc.Data[FieldPublicKey].(string); published == local {
			return nil
		}
		changed = true
		return tx.Update(UserPath(userID), remote.Document{FieldPublicKey: local})
	})
	if err != nil {
		return false, fail("sync public key", err)
	}
	if changed {
		log.Infof("directory: published new public key of %s", userID)
	}
	return changed, nil
}

// User returns the identity of userID.
func (d *Directory) User(ctx context.Context, userID string) (*UserIdentity, error) {
	doc, err := d.store.Get(ctx, UserPath(userID))
	if err != nil {
		return nil, fail("get user", err)
	}
	return userFromDocument(doc), nil
}

// PublicKey returns the published public key of userID.
func (d *Directory) PublicKey(ctx context.Context, userID string) (*rsa.PublicKey, error) {
	u, err := d.User(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.PublicKey == "" {
		return nil, log.Error(&Error{Op: "get public key", Err: ErrNoPublicKey})
	}
	der, err := base64.Decode(u.PublicKey)
	if err != nil {
		return nil, log.Error(&Error{Op: "get public key", Err: cipher.ErrInvalidPublicKey})
	}
	pub, err := cipher.ParsePublicKey(der)
	if err != nil {
		return nil, &Error{Op: "get public key", Err: err}
	}
	return pub, nil
}

// AddPushToken adds a push delivery token to userID.
func (d *Directory) AddPushToken(ctx context.Context, userID, token string) error {
	err := d.store.RunTransaction(ctx, func(tx remote.Tx) error {
		return tx.Update(UserPath(userID), remote.Document{
			FieldFCMTokens: remote.ArrayUnion(token),
		})
	})
	if err != nil {
		return fail("add push token", err)
	}
	return nil
}
