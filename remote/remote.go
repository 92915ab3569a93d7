// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package remote defines the interface to the remote document store which
// holds users, chat rooms, and encrypted messages.
//
// Documents live at slash separated paths like "chat_rooms/u2-u1" and are
// grouped in collections, the parent path of a document. Live queries
// deliver full snapshots of the query result, never deltas.
package remote

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned if a document does not exist.
var ErrNotFound = errors.New("remote: document not found")

// ErrUnavailable is returned if the remote store cannot be reached.
var ErrUnavailable = errors.New("remote: store unavailable")

// Document holds the fields of a remote document.
type Document map[string]interface{}

// Clone returns a copy of d. Array values are copied as well.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	c := make(Document, len(d))
	for k, v := range d {
		if a, ok := v.([]interface{}); ok {
			v = append([]interface{}(nil), a...)
		}
		c[k] = v
	}
	return c
}

// DocumentSnapshot is a document read from the store.
type DocumentSnapshot struct {
	ID   string // last path segment
	Path string
	Data Document
}

// Path joins path segments.
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}

// Split splits a document path into its collection and document ID.
func Split(path string) (collection, id string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// Direction is the sort direction of a query.
type Direction int

// Sort directions.
const (
	Asc Direction = iota
	Desc
)

// Query is a live query on a single collection.
type Query struct {
	Collection string
	// If ArrayContainsField is set only documents whose array field contains
	// ArrayContainsValue are returned.
	ArrayContainsField string
	ArrayContainsValue interface{}
	OrderBy            string
	Direction          Direction
}

// Snapshot is a full query result. If Err is set the listener failed and
// delivers no further snapshots.
type Snapshot struct {
	Docs []DocumentSnapshot
	Err  error
}

// Listener delivers the snapshots of a live query.
type Listener struct {
	C <-chan Snapshot

	stopOnce sync.Once
	stop     func()
}

// NewListener returns a listener delivering on c which calls stop once when
// it is stopped.
func NewListener(c <-chan Snapshot, stop func()) *Listener {
	return &Listener{C: c, stop: stop}
}

// Stop releases the listener. It is safe to call Stop more than once.
func (l *Listener) Stop() {
	l.stopOnce.Do(l.stop)
}

// SetOption modifies Tx.Set.
type SetOption int

// Merge makes Tx.Set merge the given fields into an existing document
// instead of replacing it.
const Merge SetOption = 1

// Tx is a transaction. Writes become visible atomically when the
// transaction function returns without error.
type Tx interface {
	Get(path string) (*DocumentSnapshot, error)
	Set(path string, data Document, opts ...SetOption) error
	Update(path string, data Document) error
}

// Store is a remote document store.
type Store interface {
	// Get returns the document at path or ErrNotFound.
	Get(ctx context.Context, path string) (*DocumentSnapshot, error)
	// RunTransaction runs fn in a transaction.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
	// Listen starts a live query. The first snapshot is delivered
	// immediately. The listener is stopped when ctx is done.
	Listen(ctx context.Context, q Query) (*Listener, error)
}
