// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package keydb defines the encrypted database used as the device secret
// store. It implements keystore.SecretStore.
package keydb

import (
	"database/sql"
	"time"

	"github.com/workhubapp/workhub/encdb"
	"github.com/workhubapp/workhub/log"
)

// Version is the current keydb version.
const Version = "1"

// Entries in KeyValueTable.
const (
	DBVersion = "Version" // version string of keydb
)

const (
	createQueryKeyValue = `
CREATE TABLE KeyValueStore (
  KeyEntry   TEXT NOT NULL UNIQUE,
  ValueEntry TEXT NOT NULL
);`
	createQuerySecrets = `
CREATE TABLE Secrets (
  ID      INTEGER PRIMARY KEY,
  Alias   TEXT    NOT NULL UNIQUE, -- "user_key_<uid>" or the vault key alias
  Secret  TEXT    NOT NULL,        -- base64 encoded key material
  Created INTEGER NOT NULL         -- Unix time the secret was stored
);`
	updateValueQuery  = "UPDATE KeyValueStore SET ValueEntry=? WHERE KeyEntry=?;"
	insertValueQuery  = "INSERT INTO KeyValueStore (KeyEntry, ValueEntry) VALUES (?, ?);"
	getValueQuery     = "SELECT ValueEntry FROM KeyValueStore WHERE KeyEntry=?;"
	putSecretQuery    = "INSERT OR REPLACE INTO Secrets (Alias, Secret, Created) VALUES (?, ?, ?);"
	getSecretQuery    = "SELECT Secret FROM Secrets WHERE Alias=?;"
	deleteSecretQuery = "DELETE FROM Secrets WHERE Alias=?;"
	getAliasesQuery   = "SELECT Alias FROM Secrets ORDER BY Alias ASC;"
)

// KeyDB is a handle for the encrypted secret store database.
type KeyDB struct {
	encDB             *sql.DB
	updateValueQuery  *sql.Stmt
	insertValueQuery  *sql.Stmt
	getValueQuery     *sql.Stmt
	putSecretQuery    *sql.Stmt
	getSecretQuery    *sql.Stmt
	deleteSecretQuery *sql.Stmt
	getAliasesQuery   *sql.Stmt
}

// Create creates a new key database with the given dbname.
// It is encrypted by passphrase (processed by a KDF with iter many iterations).
func Create(dbname string, passphrase []byte, iter int) error {
	err := encdb.Create(dbname, passphrase, iter, []string{
		createQueryKeyValue,
		createQuerySecrets,
	})
	if err != nil {
		return err
	}
	keyDB, err := Open(dbname, passphrase)
	if err != nil {
		return err
	}
	defer keyDB.Close()
	return keyDB.AddValue(DBVersion, Version)
}

// Open opens the key database with dbname and passphrase.
func Open(dbname string, passphrase []byte) (*KeyDB, error) {
	encDB, err := encdb.Open(dbname, passphrase)
	if err != nil {
		return nil, err
	}
	keyDB := &KeyDB{encDB: encDB}
	stmts := []struct {
		stmt  **sql.Stmt
		query string
	}{
		{&keyDB.updateValueQuery, updateValueQuery},
		{&keyDB.insertValueQuery, insertValueQuery},
		{&keyDB.getValueQuery, getValueQuery},
		{&keyDB.putSecretQuery, putSecretQuery},
		{&keyDB.getSecretQuery, getSecretQuery},
		{&keyDB.deleteSecretQuery, deleteSecretQuery},
		{&keyDB.getAliasesQuery, getAliasesQuery},
	}
	for _, s := range stmts {
		if *s.stmt, err = encDB.Prepare(s.query); err != nil {
			encDB.Close()
			return nil, log.Error(err)
		}
	}
	return keyDB, nil
}

// Close the key database.
func (keyDB *KeyDB) Close() error {
	return keyDB.encDB.Close()
}

// Rekey tries to rekey the key database dbname with the newPassphrase
// (processed by a KDF with iter many iterations). The supplied oldPassphrase
// must be correct, otherwise an error is returned.
func Rekey(dbname string, oldPassphrase, newPassphrase []byte, newIter int) error {
	return encdb.Rekey(dbname, oldPassphrase, newPassphrase, newIter)
}

// Version returns the version of keyDB.
func (keyDB *KeyDB) Version() (string, error) {
	return keyDB.GetValue(DBVersion)
}

// GetSecret returns the secret stored under alias or "" if there is none.
func (keyDB *KeyDB) GetSecret(alias string) (string, error) {
	if alias == "" {
		return "", log.Error("keydb: alias must be defined")
	}
	var secret string
	err := keyDB.getSecretQuery.QueryRow(alias).Scan(&secret)
	switch {
	case err == sql.ErrNoRows:
		return "", nil
	case err != nil:
		return "", log.Error(err)
	default:
		return secret, nil
	}
}

// PutSecret stores secret under alias, replacing a previous one.
func (keyDB *KeyDB) PutSecret(alias, secret string) error {
	if alias == "" {
		return log.Error("keydb: alias must be defined")
	}
	if secret == "" {
		return log.Error("keydb: secret must be defined")
	}
	if _, err := keyDB.putSecretQuery.Exec(alias, secret, time.Now().UTC().Unix()); err != nil {
		return log.Error(err)
	}
	return nil
}

// DeleteSecret removes the secret stored under alias.
func (keyDB *KeyDB) DeleteSecret(alias string) error {
	if _, err := keyDB.deleteSecretQuery.Exec(alias); err != nil {
		return log.Error(err)
	}
	return nil
}

// Aliases returns the aliases of all stored secrets, sorted.
func (keyDB *KeyDB) Aliases() ([]string, error) {
	rows, err := keyDB.getAliasesQuery.Query()
	if err != nil {
		return nil, log.Error(err)
	}
	defer rows.Close()
	var aliases []string
	for rows.Next() {
		var alias string
		if err := rows.Scan(&alias); err != nil {
			return nil, log.Error(err)
		}
		aliases = append(aliases, alias)
	}
	if err := rows.Err(); err != nil {
		return nil, log.Error(err)
	}
	return aliases, nil
}
