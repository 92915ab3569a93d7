// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"io"

	"github.com/workhubapp/workhub/log"
)

// SessionKeySize is the size of an AES-256 session key in bytes.
const SessionKeySize = 32

// GenerateSessionKey returns a fresh random AES-256 key read from rand.
func GenerateSessionKey(rand io.Reader) ([]byte, error) {
	key := make([]byte, SessionKeySize)
	if _, err := io.ReadFull(rand, key); err != nil {
		return nil, log.Error(err)
	}
	return key, nil
}

// AES256CBCEncryptPKCS7 pads plaintext with PKCS#7 and encrypts it with
// AES-256 in CBC mode. The IV is read from rand for every call and returned
// separately from the ciphertext. The key must be 32 bytes long.
func AES256CBCEncryptPKCS7(key, plaintext []byte, rand io.Reader) (iv, ciphertext []byte, err error) {
	if len(key) != SessionKeySize {
		panic(log.Critical("cipher: AES-256 key is not 32 bytes long"))
	}
	block, _ := aes.NewCipher(key) // key length was enforced above
	iv = make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand, iv); err != nil {
		return nil, nil, log.Error(err)
	}
	ciphertext = pkcs7Pad(plaintext, aes.BlockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, ciphertext)
	return iv, ciphertext, nil
}

// AES256CBCDecryptPKCS7 decrypts ciphertext with AES-256 in CBC mode and
// removes the PKCS#7 padding. A malformed IV, ciphertext length or padding
// results in ErrDecryption. The key must be 32 bytes long.
func AES256CBCDecryptPKCS7(key, iv, ciphertext []byte) ([]byte, error) {
	if len(key) != SessionKeySize {
		panic(log.Critical("cipher: AES-256 key is not 32 bytes long"))
	}
	block, _ := aes.NewCipher(key) // key length was enforced above
	if len(iv) != aes.BlockSize {
		return nil, ErrDecryption
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrDecryption
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)
	return pkcs7Unpad(plaintext, aes.BlockSize)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrDecryption
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrDecryption
	}
	pad := data[len(data)-n:]
	for i := range pad {
		if subtle.ConstantTimeByteEq(pad[i], byte(n)) != 1 {
			return nil, ErrDecryption
		}
	}
	return data[:len(data)-n], nil
}
