// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msg

import (
	"crypto/rsa"

	"github.com/google/uuid"
	"github.com/workhubapp/workhub/cipher"
	"github.com/workhubapp/workhub/cryptengine"
	"github.com/workhubapp/workhub/def"
	"github.com/workhubapp/workhub/encode/base64"
	"github.com/workhubapp/workhub/log"
	"github.com/workhubapp/workhub/util/bzero"
)

// Codec encodes outbound and decodes inbound chat messages.
// A Codec is safe for concurrent use.
type Codec struct {
	engine *cryptengine.Engine
}

// NewCodec returns a new Codec on top of the cipher engine.
func NewCodec(engine *cryptengine.Engine) *Codec {
	return &Codec{engine: engine}
}

// EncodeOutbound encrypts body from senderID to receiverID. A fresh session
// key and IV are used for every call, the session key is wrapped for
// senderPub and for receiverPub. The returned message has a fresh unique
// message ID and no timestamp.
func (c *Codec) EncodeOutbound(
	body, senderID, receiverID string,
	senderPub, receiverPub *rsa.PublicKey,
) (*WireMessage, error) {
	if senderPub == nil || receiverPub == nil {
		return nil, log.Error(ErrNoPublicKey)
	}
	sessionKey, err := c.engine.GenerateSessionKey()
	if err != nil {
		return nil, err
	}
	defer bzero.Bytes(sessionKey)
	iv, ciphertext, err := c.engine.AESEncrypt([]byte(body), sessionKey)
	if err != nil {
		return nil, err
	}
	forSender, err := c.engine.RSAEncrypt(sessionKey, senderPub)
	if err != nil {
		return nil, err
	}
	forReceiver, err := c.engine.RSAEncrypt(sessionKey, receiverPub)
	if err != nil {
		return nil, err
	}
	return &WireMessage{
		MessageID:               uuid.New().String(),
		SenderID:                senderID,
		ReceiverID:              receiverID,
		EncryptedMessage:        base64.Encode(ciphertext),
		IV:                      base64.Encode(iv),
		EncryptedKeyForSender:   base64.Encode(forSender),
		EncryptedKeyForReceiver: base64.Encode(forReceiver),
	}, nil
}

// DecodeInbound decrypts w for viewerID with the private key of viewerID.
// DecodeInbound never fails: if the message cannot be decrypted a
// placeholder with Undecryptable set is returned instead.
func (c *Codec) DecodeInbound(w *WireMessage, viewerID string) PlaintextMessage {
	pm := PlaintextMessage{
		ID:         w.MessageID,
		SenderID:   w.SenderID,
		ReceiverID: w.ReceiverID,
	}
	if w.Timestamp != nil {
		pm.Timestamp = *w.Timestamp
	}
	body, err := c.decrypt(w, viewerID)
	if err != nil {
		log.Debugf("msg: message %s undecryptable for %s: %s", w.MessageID, viewerID, err)
		pm.Body = def.UndecryptableBody
		pm.Undecryptable = true
		return pm
	}
	pm.Body = body
	return pm
}

// DecodeAll decodes a snapshot of wire messages for viewerID. The order of
// the messages is preserved.
func (c *Codec) DecodeAll(ws []*WireMessage, viewerID string) []PlaintextMessage {
	pms := make([]PlaintextMessage, 0, len(ws))
	for _, w := range ws {
		pms = append(pms, c.DecodeInbound(w, viewerID))
	}
	return pms
}

func (c *Codec) decrypt(w *WireMessage, viewerID string) (string, error) {
	var slot string
	switch viewerID {
	case w.SenderID:
		slot = w.EncryptedKeyForSender
	case w.ReceiverID:
		slot = w.EncryptedKeyForReceiver
	default:
		return "", ErrNotParticipant
	}
	wrapped, err := base64.Decode(slot)
	if err != nil {
		return "", cipher.ErrDecryption
	}
	sessionKey, err := c.engine.RSADecrypt(wrapped, viewerID)
	if err != nil {
		return "", err
	}
	if sessionKey == nil {
		return "", ErrNoPrivateKey
	}
	defer bzero.Bytes(sessionKey)
	if len(sessionKey) != cipher.SessionKeySize {
		return "", ErrBadSessionKey
	}
	iv, err := base64.Decode(w.IV)
	if err != nil {
		return "", cipher.ErrDecryption
	}
	ciphertext, err := base64.Decode(w.EncryptedMessage)
	if err != nil {
		return "", cipher.ErrDecryption
	}
	plaintext, err := c.engine.AESDecrypt(ciphertext, iv, sessionKey)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
