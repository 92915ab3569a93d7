// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package keystore manages the device-bound RSA key pairs of WorkHub users
// and the AES key of the file vault.
//
// All key material lives in a SecretStore. Private keys never leave the
// package: callers get a KeyPair which exposes the public key and a Decrypt
// method, but not the private key itself.
package keystore

import (
	"crypto/rsa"
	"io"
	"sync"

	"github.com/workhubapp/workhub/cipher"
	"github.com/workhubapp/workhub/def"
	"github.com/workhubapp/workhub/encode/base64"
	"github.com/workhubapp/workhub/log"
	"github.com/workhubapp/workhub/util/bzero"
)

// The SecretStore interface is implemented by the platform secret stores
// (see packages keydb and keystore/memstore). Implementations must be safe
// for concurrent use.
type SecretStore interface {
	// GetSecret returns the secret stored under alias or "" if there is none.
	GetSecret(alias string) (string, error)
	// PutSecret stores value under alias, replacing any previous value.
	PutSecret(alias, value string) error
	// DeleteSecret removes the secret stored under alias, if any.
	DeleteSecret(alias string) error
}

// Alias returns the secret store alias of the key pair of userID.
func Alias(userID string) string {
	return def.UserKeyAliasPrefix + userID
}

// KeyPair is the RSA key pair of a user on this device.
type KeyPair struct {
	UserID  string
	Public  *rsa.PublicKey
	private *rsa.PrivateKey
}

// PublicKeyDER returns the PKIX DER encoding of the public key.
func (kp *KeyPair) PublicKeyDER() ([]byte, error) {
	return cipher.MarshalPublicKey(kp.Public)
}

// PublicKeyBase64 returns the base64 encoded PKIX DER public key, the form
// in which public keys are published in the user directory.
func (kp *KeyPair) PublicKeyBase64() (string, error) {
	der, err := kp.PublicKeyDER()
	if err != nil {
		return "", err
	}
	return base64.Encode(der), nil
}

// Decrypt unwraps a session key which was encrypted for this key pair.
func (kp *KeyPair) Decrypt(ciphertext []byte) ([]byte, error) {
	return cipher.RSADecrypt(kp.private, ciphertext)
}

// Store is the key store adapter on top of a SecretStore.
type Store struct {
	secrets SecretStore
	rand    io.Reader
	mu      sync.Mutex          // serializes key creation and rotation
	cacheMu sync.RWMutex        // protects cache
	cache   map[string]*KeyPair // parsed key pairs, by user ID
}

// New returns a new key store which keeps its keys in secrets.
func New(secrets SecretStore) *Store {
	return &Store{
		secrets: secrets,
		rand:    cipher.RandReader,
		cache:   make(map[string]*KeyPair),
	}
}

// LookupKeyPair returns the key pair of userID or nil, if this device holds
// no key pair for userID. It never creates a key pair.
func (s *Store) LookupKeyPair(userID string) (*KeyPair, error) {
	if userID == "" {
		return nil, log.Error("keystore: user ID must be defined")
	}
	s.cacheMu.RLock()
	kp := s.cache[userID]
	s.cacheMu.RUnlock()
	if kp != nil {
		return kp, nil
	}
	alias := Alias(userID)
	value, err := s.secrets.GetSecret(alias)
	if err != nil {
		return nil, log.Error(&Error{Alias: alias, Err: err})
	}
	if value == "" {
		return nil, nil
	}
	der, err := base64.Decode(value)
	if err != nil {
		return nil, log.Error(&Error{Alias: alias, Err: ErrCorrupted})
	}
	defer bzero.Bytes(der)
	priv, err := cipher.ParsePrivateKey(der)
	if err != nil {
		return nil, log.Error(&Error{Alias: alias, Err: ErrCorrupted})
	}
	kp = &KeyPair{UserID: userID, Public: &priv.PublicKey, private: priv}
	s.cacheMu.Lock()
	s.cache[userID] = kp
	s.cacheMu.Unlock()
	return kp, nil
}

// GetOrCreateKeyPair returns the key pair of userID. If the device holds no
// key pair for userID a new RSA-2048 key pair is generated and persisted in
// the secret store first. Repeated calls return the same key material.
func (s *Store) GetOrCreateKeyPair(userID string) (*KeyPair, error) {
	kp, err := s.LookupKeyPair(userID)
	if err != nil || kp != nil {
		return kp, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// another goroutine might have won the race
	kp, err = s.LookupKeyPair(userID)
	if err != nil || kp != nil {
		return kp, err
	}
	log.Infof("keystore: generating key pair for %s", userID)
	return s.generate(userID)
}

// RotateKeyPair replaces the key pair of userID with a new one. Messages
// wrapped for the old public key cannot be decrypted on this device anymore.
func (s *Store) RotateKeyPair(userID string) (*KeyPair, error) {
	if userID == "" {
		return nil, log.Error("keystore: user ID must be defined")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Infof("keystore: rotating key pair for %s", userID)
	return s.generate(userID)
}

// generate must be called with s.mu held.
func (s *Store) generate(userID string) (*KeyPair, error) {
	priv, err := cipher.RSAGenerateKey(s.rand)
	if err != nil {
		return nil, err
	}
	der := cipher.MarshalPrivateKey(priv)
	defer bzero.Bytes(der)
	alias := Alias(userID)
	if err := s.secrets.PutSecret(alias, base64.Encode(der)); err != nil {
		return nil, log.Error(&Error{Alias: alias, Err: err})
	}
	kp := &KeyPair{UserID: userID, Public: &priv.PublicKey, private: priv}
	s.cacheMu.Lock()
	s.cache[userID] = kp
	s.cacheMu.Unlock()
	return kp, nil
}

// ExportPublicKey returns the PKIX DER encoding of the public key of userID,
// creating the key pair if necessary.
func (s *Store) ExportPublicKey(userID string) ([]byte, error) {
	kp, err := s.GetOrCreateKeyPair(userID)
	if err != nil {
		return nil, err
	}
	return kp.PublicKeyDER()
}

// VaultKey returns the AES-256 key of the file vault, creating it on first
// use.
func (s *Store) VaultKey() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, err := s.secrets.GetSecret(def.VaultKeyAlias)
	if err != nil {
		return nil, log.Error(&Error{Alias: def.VaultKeyAlias, Err: err})
	}
	if value != "" {
		key, err := base64.Decode(value)
		if err != nil || len(key) != cipher.SessionKeySize {
			return nil, log.Error(&Error{Alias: def.VaultKeyAlias, Err: ErrCorrupted})
		}
		return key, nil
	}
	key, err := cipher.GenerateSessionKey(s.rand)
	if err != nil {
		return nil, err
	}
	if err := s.secrets.PutSecret(def.VaultKeyAlias, base64.Encode(key)); err != nil {
		return nil, log.Error(&Error{Alias: def.VaultKeyAlias, Err: err})
	}
	return key, nil
}
