// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memstore implements a keystore.SecretStore in memory (for testing
// purposes).
package memstore

import (
	"sync"
)

// MemStore implements the keystore.SecretStore interface in memory.
type MemStore struct {
	mu      sync.Mutex
	secrets map[string]string
	fail    error
}

// New returns a new MemStore.
func New() *MemStore {
	return &MemStore{secrets: make(map[string]string)}
}

// SetFailure makes all subsequent calls fail with err, until it is called
// with nil.
func (ms *MemStore) SetFailure(err error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.fail = err
}

// Len returns the number of stored secrets.
func (ms *MemStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.secrets)
}

// GetSecret implemented in memory.
func (ms *MemStore) GetSecret(alias string) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.fail != nil {
		return "", ms.fail
	}
	return ms.secrets[alias], nil
}

// PutSecret implemented in memory.
func (ms *MemStore) PutSecret(alias, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.fail != nil {
		return ms.fail
	}
	ms.secrets[alias] = value
	return nil
}

// DeleteSecret implemented in memory.
func (ms *MemStore) DeleteSecret(alias string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.fail != nil {
		return ms.fail
	}
	delete(ms.secrets, alias)
	return nil
}
