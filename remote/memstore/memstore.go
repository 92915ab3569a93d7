// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memstore implements a remote.Store in memory (for testing
// purposes).
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/workhubapp/workhub/remote"
)

// MemStore implements the remote.Store interface in memory.
// Transactions are serialized, listeners receive conflated snapshots: a
// listener which does not keep up only sees the latest one.
type MemStore struct {
	mu        sync.Mutex
	docs      map[string]remote.Document
	last      time.Time
	listeners map[*listener]struct{}
	fail      error
}

type listener struct {
	q      remote.Query
	c      chan remote.Snapshot
	done   chan struct{}
	closed bool
}

// New returns a new MemStore.
func New() *MemStore {
	return &MemStore{
		docs:      make(map[string]remote.Document),
		listeners: make(map[*listener]struct{}),
	}
}

// SetFailure makes all subsequent calls fail with err, until it is called
// with nil. Running listeners are not affected, see Disconnect.
func (ms *MemStore) SetFailure(err error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.fail = err
}

// Disconnect fails all running listeners with remote.ErrUnavailable.
func (ms *MemStore) Disconnect() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for l := range ms.listeners {
		l.deliver(remote.Snapshot{Err: remote.ErrUnavailable})
		ms.removeListener(l)
	}
}

// Listeners returns the number of running listeners.
func (ms *MemStore) Listeners() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.listeners)
}

// Count returns the number of documents in collection.
func (ms *MemStore) Count(collection string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var n int
	for path := range ms.docs {
		if c, _ := remote.Split(path); c == collection {
			n++
		}
	}
	return n
}

// Get implemented in memory.
func (ms *MemStore) Get(ctx context.Context, path string) (*remote.DocumentSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.fail != nil {
		return nil, ms.fail
	}
	return ms.get(path)
}

func (ms *MemStore) get(path string) (*remote.DocumentSnapshot, error) {
	doc, ok := ms.docs[path]
	if !ok {
		return nil, remote.ErrNotFound
	}
	_, id := remote.Split(path)
	return &remote.DocumentSnapshot{ID: id, Path: path, Data: doc.Clone()}, nil
}

// now returns a strictly increasing commit time.
func (ms *MemStore) now() time.Time {
	now := time.Now().UTC()
	if !now.After(ms.last) {
		now = ms.last.Add(time.Microsecond)
	}
	ms.last = now
	return now
}

type write struct {
	path   string
	data   remote.Document
	merge  bool
	update bool
}

type tx struct {
	ms     *MemStore
	writes []write
}

func (t *tx) Get(path string) (*remote.DocumentSnapshot, error) {
	return t.ms.get(path)
}

func (t *tx) Set(path string, data remote.Document, opts ...remote.SetOption) error {
	w := write{path: path, data: data}
	for _, opt := range opts {
		if opt == remote.Merge {
			w.merge = true
		}
	}
	t.writes = append(t.writes, w)
	return nil
}

func (t *tx) Update(path string, data remote.Document) error {
	t.writes = append(t.writes, write{path: path, data: data, update: true})
	return nil
}

// RunTransaction implemented in memory. Either all writes of fn are applied
// or none.
func (ms *MemStore) RunTransaction(ctx context.Context, fn func(tx remote.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.fail != nil {
		return ms.fail
	}
	t := &tx{ms: ms}
	if err := fn(t); err != nil {
		return err
	}
	// check before applying anything
	staged := make(map[string]bool)
	for _, w := range t.writes {
		if _, ok := ms.docs[w.path]; w.update && !ok && !staged[w.path] {
			return remote.ErrNotFound
		}
		staged[w.path] = true
	}
	now := ms.now()
	changed := make(map[string]bool)
	for _, w := range t.writes {
		doc, ok := ms.docs[w.path]
		if !ok || !(w.merge || w.update) {
			doc = make(remote.Document)
		} else {
			doc = doc.Clone()
		}
		remote.ApplyFields(doc, w.data, now)
		ms.docs[w.path] = doc
		c, _ := remote.Split(w.path)
		changed[c] = true
	}
	for l := range ms.listeners {
		if changed[l.q.Collection] {
			l.deliver(ms.run(l.q))
		}
	}
	return nil
}

// Listen implemented in memory.
func (ms *MemStore) Listen(ctx context.Context, q remote.Query) (*remote.Listener, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.fail != nil {
		return nil, ms.fail
	}
	l := &listener{
		q:    q,
		c:    make(chan remote.Snapshot, 1),
		done: make(chan struct{}),
	}
	ms.listeners[l] = struct{}{}
	l.deliver(ms.run(q))
	stop := func() {
		ms.mu.Lock()
		defer ms.mu.Unlock()
		ms.removeListener(l)
	}
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-l.done:
		}
	}()
	return remote.NewListener(l.c, stop), nil
}

// removeListener must be called with ms.mu held.
func (ms *MemStore) removeListener(l *listener) {
	if l.closed {
		return
	}
	delete(ms.listeners, l)
	l.closed = true
	close(l.done)
	close(l.c)
}

// deliver replaces a pending snapshot, if any. Must be called with ms.mu
// held, which makes the send below non-blocking.
func (l *listener) deliver(snap remote.Snapshot) {
	if l.closed {
		return
	}
	select {
	case <-l.c:
	default:
	}
	l.c <- snap
}

// run evaluates q. Must be called with ms.mu held.
func (ms *MemStore) run(q remote.Query) remote.Snapshot {
	var docs []remote.DocumentSnapshot
	for path, doc := range ms.docs {
		c, id := remote.Split(path)
		if c != q.Collection {
			continue
		}
		if q.ArrayContainsField != "" &&
			!remote.ArrayContains(doc, q.ArrayContainsField, q.ArrayContainsValue) {
			continue
		}
		docs = append(docs, remote.DocumentSnapshot{
			ID:   id,
			Path: path,
			Data: doc.Clone(),
		})
	}
	sort.Slice(docs, func(i, j int) bool {
		if q.OrderBy != "" {
			c := compare(docs[i].Data[q.OrderBy], docs[j].Data[q.OrderBy])
			if q.Direction == remote.Desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return docs[i].ID < docs[j].ID
	})
	return remote.Snapshot{Docs: docs}
}

// compare orders field values. Missing values sort first.
func compare(a, b interface{}) int {
	switch x := a.(type) {
	case nil:
		if b == nil {
			return 0
		}
		return -1
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 1
		}
		switch {
		case x.Before(y):
			return -1
		case x.After(y):
			return 1
		}
		return 0
	case string:
		y, ok := b.(string)
		if !ok {
			return 1
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case int64:
		y, ok := b.(int64)
		if !ok {
			return 1
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	if b == nil {
		return 1
	}
	return 0
}
