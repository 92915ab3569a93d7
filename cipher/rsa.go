// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cipher

import (
	"crypto/rsa"
	"crypto/x509"
	"io"

	"github.com/workhubapp/workhub/log"
)

// RSAKeySize is the modulus size of user key pairs in bits.
const RSAKeySize = 2048

// RSAGenerateKey generates a new RSA-2048 key pair.
func RSAGenerateKey(rand io.Reader) (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand, RSAKeySize)
	if err != nil {
		return nil, log.Error(err)
	}
	return key, nil
}

// RSAEncrypt wraps data under pub with RSA/PKCS#1 v1.5 padding.
// Only session keys are wrapped this way, larger payloads are refused.
func RSAEncrypt(pub *rsa.PublicKey, data []byte, rand io.Reader) ([]byte, error) {
	if pub == nil {
		return nil, log.Error(ErrInvalidPublicKey)
	}
	if len(data) > SessionKeySize {
		return nil, log.Error(ErrPayloadTooLarge)
	}
	ciphertext, err := rsa.EncryptPKCS1v15(rand, pub, data)
	if err != nil {
		return nil, log.Error(err)
	}
	return ciphertext, nil
}

// RSADecrypt unwraps ciphertext with priv. Any failure is reported as
// ErrDecryption and not logged, undecryptable messages are an expected
// condition.
func RSADecrypt(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	plaintext, err := rsa.DecryptPKCS1v15(nil, priv, ciphertext)
	if err != nil {
		return nil, ErrDecryption
	}
	return plaintext, nil
}

// MarshalPublicKey returns the PKIX (SubjectPublicKeyInfo) DER encoding of pub.
func MarshalPublicKey(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, log.Error(err)
	}
	return der, nil
}

// ParsePublicKey parses a PKIX DER encoded RSA public key.
func ParsePublicKey(der []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, log.Error(ErrInvalidPublicKey)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, log.Error(ErrInvalidPublicKey)
	}
	return pub, nil
}

// MarshalPrivateKey returns the PKCS#1 DER encoding of priv.
// The result must only ever be handed to a secret store.
func MarshalPrivateKey(priv *rsa.PrivateKey) []byte {
	return x509.MarshalPKCS1PrivateKey(priv)
}

// ParsePrivateKey parses a PKCS#1 DER encoded RSA private key.
func ParsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	priv, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, log.Error(err)
	}
	return priv, nil
}
