// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encdb

import (
	"crypto/sha256"
	"encoding/binary"
	"io"
	"os"

	"github.com/workhubapp/workhub/cipher"
	"github.com/workhubapp/workhub/log"
	"github.com/workhubapp/workhub/util"
	"github.com/workhubapp/workhub/util/bzero"
	"golang.org/x/crypto/pbkdf2"
)

/*
Format of keyfile:

 0                   1                   2                   3
 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
|          number of iterations for PBKDF2 (big endian)         |
|                                                               |
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
|                    salt for PBKDF2 (32 bytes)                 |
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
|                     IV for AES-256 (16 bytes)                 |
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
|     AES-256-CBC encrypted database key, PKCS#7 (48 bytes)     |
+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
*/

const (
	saltSize   = 32
	ivSize     = 16
	encKeySize = 48
	maxIter    = 2147483647
)

func deriveKey(passphrase, salt []byte, iter int) []byte {
	return pbkdf2.Key(passphrase, salt, iter, 32, sha256.New)
}

// writeKeyfile writes key encrypted under passphrase to filename.
func writeKeyfile(filename string, passphrase []byte, iter int, key []byte) error {
	if err := util.MustNotExist(filename); err != nil {
		return err
	}
	if iter <= 0 || iter > maxIter {
		return log.Errorf("encdb: invalid iter value %d", iter)
	}
	if len(key) != 32 {
		return log.Error("encdb: len(key) != 32")
	}
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(cipher.RandReader, salt); err != nil {
		return log.Error(err)
	}
	dk := deriveKey(passphrase, salt, iter)
	defer bzero.Bytes(dk)
	iv, encKey, err := cipher.AES256CBCEncryptPKCS7(dk, key, cipher.RandReader)
	if err != nil {
		return err
	}
	buf := make([]byte, 8, 8+saltSize+ivSize+encKeySize)
	binary.BigEndian.PutUint64(buf, uint64(iter))
	buf = append(buf, salt...)
	buf = append(buf, iv...)
	buf = append(buf, encKey...)
	fp, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return log.Error(err)
	}
	if _, err := fp.Write(buf); err != nil {
		fp.Close()
		return log.Error(err)
	}
	if err := fp.Close(); err != nil {
		return log.Error(err)
	}
	return nil
}

// generateKeyfile generates a random database key, stores it encrypted in
// filename and returns it in unencrypted form.
func generateKeyfile(filename string, passphrase []byte, iter int) ([]byte, error) {
	key, err := cipher.GenerateSessionKey(cipher.RandReader)
	if err != nil {
		return nil, err
	}
	if err := writeKeyfile(filename, passphrase, iter, key); err != nil {
		return nil, err
	}
	return key, nil
}

// readKeyfile returns the unencrypted database key stored in filename.
func readKeyfile(filename string, passphrase []byte) ([]byte, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, log.Error(err)
	}
	defer fp.Close()
	buf := make([]byte, 8+saltSize+ivSize+encKeySize)
	if _, err := io.ReadFull(fp, buf); err != nil {
		return nil, log.Error(err)
	}
	uiter := binary.BigEndian.Uint64(buf[:8])
	if uiter == 0 || uiter > maxIter {
		return nil, log.Error("encdb: keyfile has invalid iter value")
	}
	salt := buf[8 : 8+saltSize]
	iv := buf[8+saltSize : 8+saltSize+ivSize]
	encKey := buf[8+saltSize+ivSize:]
	dk := deriveKey(passphrase, salt, int(uiter))
	defer bzero.Bytes(dk)
	key, err := cipher.AES256CBCDecryptPKCS7(dk, iv, encKey)
	if err != nil || len(key) != 32 {
		return nil, log.Error("encdb: cannot decrypt keyfile (wrong passphrase?)")
	}
	return key, nil
}

func replaceKeyfile(filename string, oldPassphrase, newPassphrase []byte, newIter int) error {
	key, err := readKeyfile(filename, oldPassphrase)
	if err != nil {
		return err
	}
	defer bzero.Bytes(key)
	tmpfile := filename + ".new"
	os.Remove(tmpfile) // ignore error
	if err := writeKeyfile(tmpfile, newPassphrase, newIter, key); err != nil {
		return err
	}
	if err := os.Rename(tmpfile, filename); err != nil {
		return log.Error(err)
	}
	return nil
}
