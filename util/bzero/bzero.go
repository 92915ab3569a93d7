// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bzero defines helper functions to zero sensitive memory, like
// session keys after a message has been encrypted or decrypted.
package bzero

// Bytes sets all entries in the given byte slice buffer to zero.
func Bytes(buffer []byte) {
	for i := range buffer {
		buffer[i] = 0
	}
}
