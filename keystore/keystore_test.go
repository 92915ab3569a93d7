// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package keystore_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workhubapp/workhub/cipher"
	"github.com/workhubapp/workhub/def"
	"github.com/workhubapp/workhub/keystore"
	"github.com/workhubapp/workhub/keystore/memstore"
)

func TestGetOrCreateKeyPairIdempotent(t *testing.T) {
	secrets := memstore.New()
	ks := keystore.New(secrets)
	kp1, err := ks.GetOrCreateKeyPair("u1")
	require.NoError(t, err)
	kp2, err := ks.GetOrCreateKeyPair("u1")
	require.NoError(t, err)
	assert.Equal(t, 0, kp1.Public.N.Cmp(kp2.Public.N))

	// a fresh adapter on the same secret store sees the same key
	kp3, err := keystore.New(secrets).GetOrCreateKeyPair("u1")
	require.NoError(t, err)
	assert.Equal(t, 0, kp1.Public.N.Cmp(kp3.Public.N))
	assert.Equal(t, 1, secrets.Len())

	value, err := secrets.GetSecret(def.UserKeyAliasPrefix + "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, value)
}

func TestGetOrCreateKeyPairConcurrent(t *testing.T) {
	ks := keystore.New(memstore.New())
	var wg sync.WaitGroup
	keys := make([]*keystore.KeyPair, 4)
	errs := make([]error, 4)
	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			keys[i], errs[i] = ks.GetOrCreateKeyPair("u1")
		}(i)
	}
	wg.Wait()
	for i := range keys {
		require.NoError(t, errs[i])
		assert.Equal(t, 0, keys[0].Public.N.Cmp(keys[i].Public.N))
	}
}

func TestLookupKeyPair(t *testing.T) {
	ks := keystore.New(memstore.New())
	kp, err := ks.LookupKeyPair("nobody")
	require.NoError(t, err)
	assert.Nil(t, kp)
	_, err = ks.LookupKeyPair("")
	assert.Error(t, err)
}

func TestExportPublicKeyAndDecrypt(t *testing.T) {
	ks := keystore.New(memstore.New())
	der, err := ks.ExportPublicKey("u1")
	require.NoError(t, err)
	pub, err := cipher.ParsePublicKey(der)
	require.NoError(t, err)
	sessionKey, err := cipher.GenerateSessionKey(cipher.RandReader)
	require.NoError(t, err)
	wrapped, err := cipher.RSAEncrypt(pub, sessionKey, cipher.RandReader)
	require.NoError(t, err)
	kp, err := ks.LookupKeyPair("u1")
	require.NoError(t, err)
	unwrapped, err := kp.Decrypt(wrapped)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(sessionKey, unwrapped))

	b64, err := kp.PublicKeyBase64()
	require.NoError(t, err)
	assert.NotEmpty(t, b64)
}

func TestRotateKeyPair(t *testing.T) {
	ks := keystore.New(memstore.New())
	old, err := ks.GetOrCreateKeyPair("u1")
	require.NoError(t, err)
	rotated, err := ks.RotateKeyPair("u1")
	require.NoError(t, err)
	assert.NotEqual(t, 0, old.Public.N.Cmp(rotated.Public.N))
	current, err := ks.GetOrCreateKeyPair("u1")
	require.NoError(t, err)
	assert.Equal(t, 0, rotated.Public.N.Cmp(current.Public.N))
}

func TestUnavailableSecretStore(t *testing.T) {
	secrets := memstore.New()
	secrets.SetFailure(errors.New("secure element locked"))
	ks := keystore.New(secrets)
	_, err := ks.GetOrCreateKeyPair("u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, keystore.ErrUnavailable))
	var ksErr *keystore.Error
	require.True(t, errors.As(err, &ksErr))
	assert.Equal(t, keystore.Alias("u1"), ksErr.Alias)
	_, err = ks.VaultKey()
	assert.True(t, errors.Is(err, keystore.ErrUnavailable))
}

func TestCorruptedSecret(t *testing.T) {
	secrets := memstore.New()
	require.NoError(t, secrets.PutSecret(keystore.Alias("u1"), "bm90IGEga2V5"))
	_, err := keystore.New(secrets).LookupKeyPair("u1")
	assert.True(t, errors.Is(err, keystore.ErrUnavailable))
	assert.True(t, errors.Is(err, keystore.ErrCorrupted))
	var ksErr *keystore.Error
	require.True(t, errors.As(err, &ksErr))
	assert.Equal(t, keystore.Alias("u1"), ksErr.Alias)

	// not even base64
	require.NoError(t, secrets.PutSecret(keystore.Alias("u2"), "!!!"))
	_, err = keystore.New(secrets).LookupKeyPair("u2")
	assert.True(t, errors.Is(err, keystore.ErrCorrupted))
}

func TestVaultKey(t *testing.T) {
	secrets := memstore.New()
	ks := keystore.New(secrets)
	k1, err := ks.VaultKey()
	require.NoError(t, err)
	assert.Len(t, k1, 32)
	k2, err := keystore.New(secrets).VaultKey()
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	value, err := secrets.GetSecret(def.VaultKeyAlias)
	require.NoError(t, err)
	assert.NotEmpty(t, value)
}
