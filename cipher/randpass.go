// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cipher

import (
	"encoding/base64"
	"io"

	"github.com/workhubapp/workhub/log"
)

// RandPass returns a random 256-bit passphrase in base64 encoding.
func RandPass(rand io.Reader) string {
	var pass = make([]byte, 32)
	if _, err := io.ReadFull(rand, pass); err != nil {
		panic(log.Critical(err))
	}
	return base64.StdEncoding.EncodeToString(pass)
}
