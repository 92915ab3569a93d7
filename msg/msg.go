// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package msg implements the wire format of encrypted chat messages and the
// codec which turns plaintext bodies into wire messages and back.
//
// Every message body is encrypted with a fresh AES-256 session key. The
// session key is wrapped twice with RSA, once for the sender and once for
// the receiver, so that both parties can read the message with nothing but
// their own private key.
package msg

import (
	"time"

	"github.com/fatih/structs"
)

// WireMessage is a chat message as it is stored in the remote document store
// and in the local cache. All binary fields are base64 encoded.
type WireMessage struct {
	MessageID               string     `structs:"messageId"`
	SenderID                string     `structs:"senderId"`
	ReceiverID              string     `structs:"receiverId"`
	Timestamp               *time.Time `structs:"-"` // assigned by the server, nil until committed
	EncryptedMessage        string     `structs:"encryptedMessage"`
	IV                      string     `structs:"iv"`
	EncryptedKeyForSender   string     `structs:"encryptedKeyForSender"`
	EncryptedKeyForReceiver string     `structs:"encryptedKeyForReceiver"`
}

// TimestampField is the document field which holds the server timestamp.
const TimestampField = "timestamp"

// ToDocument returns the document fields of w, without the timestamp.
func (w *WireMessage) ToDocument() map[string]interface{} {
	return structs.Map(w)
}

// WireMessageFromDocument parses the fields of a message document with the
// given document ID. Missing fields are left empty, such a message simply
// decodes to a placeholder.
func WireMessageFromDocument(id string, doc map[string]interface{}) *WireMessage {
	w := &WireMessage{
		MessageID:               stringField(doc, "messageId"),
		SenderID:                stringField(doc, "senderId"),
		ReceiverID:              stringField(doc, "receiverId"),
		EncryptedMessage:        stringField(doc, "encryptedMessage"),
		IV:                      stringField(doc, "iv"),
		EncryptedKeyForSender:   stringField(doc, "encryptedKeyForSender"),
		EncryptedKeyForReceiver: stringField(doc, "encryptedKeyForReceiver"),
	}
	if w.MessageID == "" {
		w.MessageID = id
	}
	if ts, ok := doc[TimestampField].(time.Time); ok {
		w.Timestamp = &ts
	}
	return w
}

func stringField(doc map[string]interface{}, field string) string {
	s, _ := doc[field].(string)
	return s
}

// PlaintextMessage is a decrypted chat message. It only ever lives in memory.
type PlaintextMessage struct {
	ID         string
	SenderID   string
	ReceiverID string
	Body       string
	Timestamp  time.Time // zero if the server has not assigned one yet
	// Undecryptable is set for placeholders of messages which could not be
	// decrypted on this device. Body then holds a human-readable marker.
	Undecryptable bool
}
