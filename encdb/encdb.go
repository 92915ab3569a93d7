// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package encdb defines the encrypted SQLite databases used by WorkHub on a
device. An encrypted database with name "dbname" consists of two files:

  dbname.db
  dbname.key

The file "dbname.db" is an SQLCipher database managed by the package
"github.com/mutecomm/go-sqlcipher". The file "dbname.key" holds the randomly
generated raw key of "dbname.db", encrypted with AES-256 under a key derived
from a passphrase with PBKDF2. Changing the passphrase therefore only rewrites
the small key file, the database itself is left untouched.

WorkHub keeps two such databases: the device secret store (package keydb) and
the local message cache (package msgdb).
*/
package encdb

import (
	"database/sql"
	"os"

	"github.com/mutecomm/go-sqlcipher"
	"github.com/workhubapp/workhub/log"
	"github.com/workhubapp/workhub/util"
)

// DBSuffix defines the suffix for database files.
const DBSuffix = ".db"

// KeySuffix defines the suffix for key files.
const KeySuffix = ".key"

// Create creates an encrypted database protected by passphrase (processed
// with iter many PBKDF2 iterations) and initializes it with createStmts.
// The files dbname.db and dbname.key must not exist already.
func Create(dbname string, passphrase []byte, iter int, createStmts []string) error {
	dbfile := dbname + DBSuffix
	keyfile := dbname + KeySuffix
	if err := util.MustNotExist(dbfile, keyfile); err != nil {
		return err
	}
	key, err := generateKeyfile(keyfile, passphrase, iter)
	if err != nil {
		return err
	}
	db, err := sql.Open("sqlite3", dsn(dbfile, key))
	if err != nil {
		return log.Error(err)
	}
	if _, err := db.Exec("PRAGMA auto_vacuum = full;"); err != nil {
		db.Close()
		return log.Error(err)
	}
	for _, stmt := range createStmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return log.Errorf("encdb: %q: %s", err, stmt)
		}
	}
	if err := db.Close(); err != nil {
		return log.Error(err)
	}
	return checkEncrypted(dbfile)
}

// Open opens the encrypted database dbname with passphrase. Foreign key
// support is enabled. A wrong passphrase results in an error.
func Open(dbname string, passphrase []byte) (*sql.DB, error) {
	dbfile := dbname + DBSuffix
	keyfile := dbname + KeySuffix
	for _, f := range []string{dbfile, keyfile} {
		if _, err := os.Stat(f); err != nil {
			return nil, log.Error(err)
		}
	}
	if err := checkEncrypted(dbfile); err != nil {
		return nil, err
	}
	key, err := readKeyfile(keyfile, passphrase)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn(dbfile, key)+"&_foreign_keys=1")
	if err != nil {
		return nil, log.Error(err)
	}
	// test key
	if _, err := db.Exec("SELECT count(*) FROM sqlite_master;"); err != nil {
		db.Close()
		return nil, log.Error(err)
	}
	return db, nil
}

// Rekey replaces the passphrase of the encrypted database dbname. The
// correct oldPassphrase must be supplied. Only dbname.key is rewritten.
func Rekey(dbname string, oldPassphrase, newPassphrase []byte, newIter int) error {
	db, err := Open(dbname, oldPassphrase)
	if err != nil {
		return err
	}
	defer db.Close()
	return replaceKeyfile(dbname+KeySuffix, oldPassphrase, newPassphrase, newIter)
}

func checkEncrypted(dbfile string) error {
	encrypted, err := sqlite3.IsEncrypted(dbfile)
	if err != nil {
		return log.Error(err)
	}
	if !encrypted {
		return log.Errorf("encdb: dbfile '%s' is not encrypted", dbfile)
	}
	return nil
}
