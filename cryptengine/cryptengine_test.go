// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cryptengine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workhubapp/workhub/cipher"
	"github.com/workhubapp/workhub/keystore"
	"github.com/workhubapp/workhub/keystore/memstore"
)

func TestSessionKeyRoundTrip(t *testing.T) {
	keys := keystore.New(memstore.New())
	ce := New(keys)
	kp, err := keys.GetOrCreateKeyPair("u1")
	require.NoError(t, err)

	sessionKey, err := ce.GenerateSessionKey()
	require.NoError(t, err)
	require.Len(t, sessionKey, 32)
	iv, ciphertext, err := ce.AESEncrypt([]byte("hello"), sessionKey)
	require.NoError(t, err)
	wrapped, err := ce.RSAEncrypt(sessionKey, kp.Public)
	require.NoError(t, err)

	unwrapped, err := ce.RSADecrypt(wrapped, "u1")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(sessionKey, unwrapped))
	plaintext, err := ce.AESDecrypt(ciphertext, iv, unwrapped)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plaintext))
}

func TestRSADecryptUnknownUser(t *testing.T) {
	ce := New(keystore.New(memstore.New()))
	plaintext, err := ce.RSADecrypt([]byte("whatever"), "stranger")
	assert.NoError(t, err)
	assert.Nil(t, plaintext)
}

func TestRSADecryptWrongKey(t *testing.T) {
	keys := keystore.New(memstore.New())
	ce := New(keys)
	other, err := cipher.RSAGenerateKey(cipher.RandReader)
	require.NoError(t, err)
	_, err = keys.GetOrCreateKeyPair("u1")
	require.NoError(t, err)
	sessionKey, _ := ce.GenerateSessionKey()
	wrapped, err := ce.RSAEncrypt(sessionKey, &other.PublicKey)
	require.NoError(t, err)
	_, err = ce.RSADecrypt(wrapped, "u1")
	assert.Equal(t, cipher.ErrDecryption, err)
}

func TestAESDecryptBadKeyLength(t *testing.T) {
	ce := New(keystore.New(memstore.New()))
	_, err := ce.AESDecrypt(make([]byte, 16), make([]byte, 16), make([]byte, 7))
	assert.Equal(t, cipher.ErrDecryption, err)
}
