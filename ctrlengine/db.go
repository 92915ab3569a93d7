// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctrlengine

import (
	"bytes"
	"fmt"

	"github.com/urfave/cli"
	"github.com/workhubapp/workhub/cipher"
	"github.com/workhubapp/workhub/keydb"
	"github.com/workhubapp/workhub/log"
	"github.com/workhubapp/workhub/msgdb"
	"github.com/workhubapp/workhub/util"
	"github.com/workhubapp/workhub/util/bzero"
)

func (ce *CtrlEngine) readPassphrases(prompt ...string) ([][]byte, error) {
	for _, p := range prompt {
		fmt.Fprintf(ce.fds.StatusFP, "read %s from passphrase-fd\n", p)
	}
	log.Infof("read %d passphrase(s) from passphrase-fd", len(prompt))
	return util.ReadLines(ce.fds.PassphraseFP, len(prompt))
}

// dbCreate creates a new key database and a new cache.
func (ce *CtrlEngine) dbCreate(c *cli.Context) error {
	var err error
	var pps [][]byte
	if c.Bool("generate") {
		pp := []byte(cipher.RandPass(cipher.RandReader))
		pps = [][]byte{pp, append([]byte(nil), pp...)}
		fmt.Fprintf(ce.fds.StatusFP, "generated passphrase written to output-fd, keep it safe\n")
		fmt.Fprintln(ce.fds.OutputFP, string(pp))
	} else {
		pps, err = ce.readPassphrases("passphrase", "passphrase again")
		if err != nil {
			return err
		}
	}
	defer bzero.Bytes(pps[0])
	defer bzero.Bytes(pps[1])
	if !bytes.Equal(pps[0], pps[1]) {
		return log.Error(ErrPassphrasesDiffer)
	}
	iter := ce.iterations(c)
	log.Infof("create keyDB '%s'", ce.keyDBName())
	if err := keydb.Create(ce.keyDBName(), pps[0], iter); err != nil {
		return err
	}
	log.Infof("create cache '%s'", ce.cacheDBName())
	if err := msgdb.Create(ce.cacheDBName(), pps[0], iter); err != nil {
		return err
	}
	fmt.Fprintf(ce.fds.StatusFP, "database files created\n")
	log.Info("database files created")
	return nil
}

// dbRekey rekeys the key database and the cache.
func (ce *CtrlEngine) dbRekey(c *cli.Context) error {
	pps, err := ce.readPassphrases("old passphrase", "new passphrase",
		"new passphrase again")
	if err != nil {
		return err
	}
	for _, pp := range pps {
		defer bzero.Bytes(pp)
	}
	if !bytes.Equal(pps[1], pps[2]) {
		return log.Error(ErrPassphrasesDiffer)
	}
	iter := ce.iterations(c)
	log.Infof("rekey keyDB '%s'", ce.keyDBName())
	if err := keydb.Rekey(ce.keyDBName(), pps[0], pps[1], iter); err != nil {
		return err
	}
	log.Infof("rekey cache '%s'", ce.cacheDBName())
	if err := msgdb.Rekey(ce.cacheDBName(), pps[0], pps[1], iter); err != nil {
		return err
	}
	fmt.Fprintf(ce.fds.StatusFP, "database files rekeyed\n")
	return nil
}

// openKeyDB opens the key database, if necessary.
func (ce *CtrlEngine) openKeyDB() (*keydb.KeyDB, error) {
	if ce.keyDB != nil {
		return ce.keyDB, nil
	}
	pps, err := ce.readPassphrases("passphrase")
	if err != nil {
		return nil, err
	}
	ce.passphrase = pps[0]
	log.Infof("open keyDB '%s'", ce.keyDBName())
	ce.keyDB, err = keydb.Open(ce.keyDBName(), ce.passphrase)
	if err != nil {
		return nil, err
	}
	return ce.keyDB, nil
}

// openCache opens the cache with the passphrase of the key database, if
// necessary.
func (ce *CtrlEngine) openCache() (*msgdb.MsgDB, error) {
	if ce.cache != nil {
		return ce.cache, nil
	}
	if _, err := ce.openKeyDB(); err != nil {
		return nil, err
	}
	log.Infof("open cache '%s'", ce.cacheDBName())
	cache, err := msgdb.Open(ce.cacheDBName(), ce.passphrase)
	if err != nil {
		return nil, err
	}
	ce.cache = cache
	return ce.cache, nil
}
