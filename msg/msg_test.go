// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToDocument(t *testing.T) {
	ts := time.Now()
	w := &WireMessage{
		MessageID:  "m1",
		SenderID:   "alice",
		ReceiverID: "bob",
		Timestamp:  &ts,
		IV:         "aXY=",
	}
	doc := w.ToDocument()
	assert.Equal(t, "m1", doc["messageId"])
	assert.Equal(t, "alice", doc["senderId"])
	assert.Equal(t, "aXY=", doc["iv"])
	_, ok := doc[TimestampField]
	assert.False(t, ok)
	assert.Len(t, doc, 7)
}

func TestWireMessageFromDocument(t *testing.T) {
	ts := time.Unix(1000, 0)
	w := WireMessageFromDocument("doc1", map[string]interface{}{
		"senderId":         "alice",
		"receiverId":       "bob",
		"iv":               "aXY=",
		TimestampField:     ts,
		"unknownField":     42,
		"encryptedMessage": 7, // wrong type is ignored
	})
	assert.Equal(t, "doc1", w.MessageID)
	assert.Equal(t, "alice", w.SenderID)
	assert.Equal(t, "bob", w.ReceiverID)
	assert.Equal(t, "", w.EncryptedMessage)
	if assert.NotNil(t, w.Timestamp) {
		assert.True(t, ts.Equal(*w.Timestamp))
	}

	w = WireMessageFromDocument("doc2", map[string]interface{}{"messageId": "m2"})
	assert.Equal(t, "m2", w.MessageID)
	assert.Nil(t, w.Timestamp)
}
