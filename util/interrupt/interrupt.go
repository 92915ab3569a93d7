// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package interrupt allows to handle interrupts.
package interrupt

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/workhubapp/workhub/log"
)

// ShutdownChannel is used to signal that shutdown is in progress.
var ShutdownChannel = make(chan error)

var (
	mu       sync.Mutex
	handlers []func()
	started  bool
)

// listen invokes the registered handlers on SIGINT or SIGTERM and then
// signals the main goroutine to shut down.
func listen(sigc <-chan os.Signal) {
	sig := <-sigc
	log.Infof("received %s, shutting down...", sig)
	mu.Lock()
	callbacks := append([]func(){}, handlers...)
	mu.Unlock()
	// in reverse order of registration, like deferred calls
	for i := len(callbacks) - 1; i >= 0; i-- {
		callbacks[i]()
	}
	ShutdownChannel <- nil
}

// AddInterruptHandler adds a handler to call when a SIGINT (Ctrl+C) or
// SIGTERM is received.
func AddInterruptHandler(handler func()) {
	mu.Lock()
	defer mu.Unlock()
	if !started {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
		go listen(sigc)
		started = true
	}
	handlers = append(handlers, handler)
}
