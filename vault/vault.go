// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vault implements an encrypted file vault. All files are encrypted
// with the single vault key of the device.
package vault

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/frankbraun/codechain/util/file"
	"github.com/workhubapp/workhub/cipher"
	"github.com/workhubapp/workhub/keystore"
	"github.com/workhubapp/workhub/log"
	"github.com/workhubapp/workhub/util/bzero"
)

// Suffix is appended to the names of vault files.
const Suffix = ".enc"

// ErrInvalidName is returned for file names which could escape the vault
// directory.
var ErrInvalidName = errors.New("vault: invalid file name")

// ErrNotFound is returned if a file is not in the vault.
var ErrNotFound = errors.New("vault: file not found")

// Vault is an encrypted file vault in a directory.
type Vault struct {
	keys *keystore.Store
	dir  string
}

// New returns a vault in dir which encrypts with the vault key in keys.
func New(keys *keystore.Store, dir string) *Vault {
	return &Vault{keys: keys, dir: dir}
}

func checkName(name string) error {
	if name == "" || strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, "/\\") || filepath.Base(name) != name {
		return log.Error(ErrInvalidName)
	}
	return nil
}

func (v *Vault) filename(name string) string {
	return filepath.Join(v.dir, name+Suffix)
}

// Put stores data encrypted under name, replacing an existing file.
func (v *Vault) Put(name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	key, err := v.keys.VaultKey()
	if err != nil {
		return err
	}
	defer bzero.Bytes(key)
	iv, ciphertext, err := cipher.AES256CBCEncryptPKCS7(key, data, cipher.RandReader)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(v.dir, 0700); err != nil {
		return log.Error(err)
	}
	tmp := v.filename(name) + ".tmp"
	if err := ioutil.WriteFile(tmp, append(iv, ciphertext...), 0600); err != nil {
		return log.Error(err)
	}
	if err := os.Rename(tmp, v.filename(name)); err != nil {
		os.Remove(tmp)
		return log.Error(err)
	}
	return nil
}

// Get returns the decrypted content of name.
func (v *Vault) Get(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	filename := v.filename(name)
	exists, err := file.Exists(filename)
	if err != nil {
		return nil, log.Error(err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	content, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, log.Error(err)
	}
	if len(content) < 16 {
		return nil, log.Error(cipher.ErrDecryption)
	}
	key, err := v.keys.VaultKey()
	if err != nil {
		return nil, err
	}
	defer bzero.Bytes(key)
	return cipher.AES256CBCDecryptPKCS7(key, content[:16], content[16:])
}

// List returns the names of all files in the vault, sorted.
func (v *Vault) List() ([]string, error) {
	infos, err := ioutil.ReadDir(v.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, log.Error(err)
	}
	var names []string
	for _, fi := range infos {
		if fi.Mode().IsRegular() && strings.HasSuffix(fi.Name(), Suffix) {
			names = append(names, strings.TrimSuffix(fi.Name(), Suffix))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes name from the vault.
func (v *Vault) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := os.Remove(v.filename(name))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return log.Error(err)
	}
	return nil
}
