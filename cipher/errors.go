// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cipher

import (
	"errors"
)

// ErrDecryption is returned if a ciphertext cannot be decrypted, because the
// key is wrong or the ciphertext is corrupted. The CBC padding check makes
// this a padding oracle, which is a known limitation of the wire format.
var ErrDecryption = errors.New("cipher: decryption failed")

// ErrPayloadTooLarge is returned if RSAEncrypt is asked to encrypt more than
// a session key.
var ErrPayloadTooLarge = errors.New("cipher: RSA payload larger than a session key")

// ErrInvalidPublicKey is returned if a public key cannot be parsed or is not
// an RSA key.
var ErrInvalidPublicKey = errors.New("cipher: invalid RSA public key")
