// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cryptengine implements the cipher engine of the chat core: AES
// session keys and bodies, and RSA wrapping of session keys, where private
// keys are looked up by user ID in the key store.
//
// An Engine has no mutable state of its own and can be shared by all open
// conversations.
package cryptengine

import (
	"crypto/rsa"
	"io"

	"github.com/workhubapp/workhub/cipher"
	"github.com/workhubapp/workhub/keystore"
)

// Engine is the cipher engine.
type Engine struct {
	keys *keystore.Store
	rand io.Reader
}

// New returns a new Engine which looks up private keys in keys.
func New(keys *keystore.Store) *Engine {
	return NewWithReader(keys, cipher.RandReader)
}

// NewWithReader returns a new Engine which reads session keys, IVs and RSA
// padding from rand.
func NewWithReader(keys *keystore.Store, rand io.Reader) *Engine {
	return &Engine{keys: keys, rand: rand}
}

// GenerateSessionKey returns a fresh random AES-256 session key.
func (e *Engine) GenerateSessionKey() ([]byte, error) {
	return cipher.GenerateSessionKey(e.rand)
}

// AESEncrypt encrypts plaintext with key in CBC mode with PKCS#7 padding
// under a fresh random IV.
func (e *Engine) AESEncrypt(plaintext, key []byte) (iv, ciphertext []byte, err error) {
	return cipher.AES256CBCEncryptPKCS7(key, plaintext, e.rand)
}

// AESDecrypt is the inverse of AESEncrypt. It returns cipher.ErrDecryption if
// the padding does not check out.
func (e *Engine) AESDecrypt(ciphertext, iv, key []byte) ([]byte, error) {
	if len(key) != cipher.SessionKeySize {
		return nil, cipher.ErrDecryption
	}
	return cipher.AES256CBCDecryptPKCS7(key, iv, ciphertext)
}

// RSAEncrypt wraps data (a session key) for the owner of pub.
func (e *Engine) RSAEncrypt(data []byte, pub *rsa.PublicKey) ([]byte, error) {
	return cipher.RSAEncrypt(pub, data, e.rand)
}

// RSADecrypt unwraps ciphertext with the private key of userID.
// If this device holds no private key for userID, RSADecrypt returns nil
// and no error: the message was wrapped for a key this device never had.
// A key store failure is returned as *keystore.Error, a wrong key or corrupt
// ciphertext as cipher.ErrDecryption.
func (e *Engine) RSADecrypt(ciphertext []byte, userID string) ([]byte, error) {
	kp, err := e.keys.LookupKeyPair(userID)
	if err != nil {
		return nil, err
	}
	if kp == nil {
		return nil, nil
	}
	return kp.Decrypt(ciphertext)
}
