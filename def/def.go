// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package def defines all default values used in WorkHub.
package def

import (
	"time"

	"github.com/workhubapp/workhub/def/version"
)

// Version is the version of the WorkHub chat core.
const Version = version.Number

// Secret store aliases.
const (
	// UserKeyAliasPrefix is prepended to a user ID to build the secret store
	// alias of that user's RSA key pair.
	UserKeyAliasPrefix = "user_key_"
	// VaultKeyAlias is the alias of the single AES key of the file vault,
	// shared by all users on the device.
	VaultKeyAlias = "workhub_vault_key"
)

// Remote document store collections and room ID separator.
const (
	UsersCollection     = "users"
	ChatRoomsCollection = "chat_rooms"
	ChatsCollection     = "chats"
	MessagesCollection  = "messages"
	RoomIDSeparator     = "-"
)

// Texts shown in place of message content.
const (
	// ConversationStarted is the initial last message of a new chat room.
	ConversationStarted = "Conversation started"
	// UndecryptableBody replaces the body of a message this device cannot
	// decrypt.
	UndecryptableBody = "[Message could not be decrypted]"
	// EncryptedPreview is the room preview stored remotely unless plaintext
	// previews are enabled.
	EncryptedPreview = "Encrypted message"
)

// KDFIterations is the default number of PBKDF2 iterations for the
// passphrases of encrypted databases.
var KDFIterations = 64000

// Resubscription backoff of the remote sync layer.
var (
	ResubscribeMin    = 100 * time.Millisecond
	ResubscribeMax    = 30 * time.Second
	ResubscribeFactor = 2.0
)

// Database file names below the home directory.
const (
	KeyDBName   = "keys"
	CacheDBName = "cache"
	VaultDir    = "vault"
)
