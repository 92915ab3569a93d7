// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encdb

import (
	"encoding/hex"
	"fmt"
)

// dsn returns the data source name which opens dbfile with the raw key.
func dsn(dbfile string, key []byte) string {
	return dbfile + fmt.Sprintf("?_pragma_key=x'%s'&_pragma_cipher_page_size=4096",
		hex.EncodeToString(key))
}
