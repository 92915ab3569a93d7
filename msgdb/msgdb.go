// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package msgdb defines the encrypted database used as the local cache of
// chat rooms and messages. Messages are cached in their encrypted wire form,
// plaintext is never stored.
package msgdb

import (
	"database/sql"
	"sync"

	"github.com/workhubapp/workhub/encdb"
	"github.com/workhubapp/workhub/log"
)

// Version is the current msgdb version.
const Version = "1"

// Entries in KeyValueTable.
const (
	DBVersion = "Version"   // version string of msgdb
	ActiveUID = "ActiveUID" // the active UID
)

const (
	createQueryKeyValue = `
CREATE TABLE KeyValueStore (
  KeyEntry   TEXT NOT NULL UNIQUE,
  ValueEntry TEXT NOT NULL
);`
	createQueryRooms = `
CREATE TABLE Rooms (
  ID              INTEGER PRIMARY KEY,
  UserID          TEXT    NOT NULL, -- the user whose room list this is
  RoomID          TEXT    NOT NULL,
  Participants    TEXT    NOT NULL, -- JSON array of user IDs
  LastMessage     TEXT    NOT NULL,
  LastSenderID    TEXT    NOT NULL,
  LastMessageTime INTEGER,          -- Unix nanoseconds, NULL if not assigned yet
  UNIQUE         (UserID, RoomID)
);`
	createQueryMessages = `
CREATE TABLE Messages (
  ID                      INTEGER PRIMARY KEY,
  RoomID                  TEXT    NOT NULL,
  MessageID               TEXT    NOT NULL,
  SenderID                TEXT    NOT NULL,
  ReceiverID              TEXT    NOT NULL,
  Timestamp               INTEGER,          -- Unix nanoseconds, NULL if not committed yet
  EncryptedMessage        TEXT    NOT NULL, -- base64
  IV                      TEXT    NOT NULL, -- base64
  EncryptedKeyForSender   TEXT    NOT NULL, -- base64
  EncryptedKeyForReceiver TEXT    NOT NULL, -- base64
  UNIQUE                 (RoomID, MessageID)
);`
	updateValueQuery   = "UPDATE KeyValueStore SET ValueEntry=? WHERE KeyEntry=?;"
	insertValueQuery   = "INSERT INTO KeyValueStore (KeyEntry, ValueEntry) VALUES (?, ?);"
	getValueQuery      = "SELECT ValueEntry FROM KeyValueStore WHERE KeyEntry=?;"
	deleteRoomsQuery   = "DELETE FROM Rooms WHERE UserID=?;"
	addRoomQuery       = "INSERT INTO Rooms (UserID, RoomID, Participants, LastMessage, LastSenderID, LastMessageTime) VALUES (?, ?, ?, ?, ?, ?);"
	getRoomsQuery      = "SELECT RoomID, Participants, LastMessage, LastSenderID, LastMessageTime FROM Rooms WHERE UserID=? ORDER BY LastMessageTime DESC, RoomID ASC;"
	deleteMsgsQuery    = "DELETE FROM Messages WHERE RoomID=?;"
	addMsgQuery        = "INSERT INTO Messages (RoomID, MessageID, SenderID, ReceiverID, Timestamp, EncryptedMessage, IV, EncryptedKeyForSender, EncryptedKeyForReceiver) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);"
	getMsgsQuery       = "SELECT MessageID, SenderID, ReceiverID, Timestamp, EncryptedMessage, IV, EncryptedKeyForSender, EncryptedKeyForReceiver FROM Messages WHERE RoomID=? ORDER BY Timestamp IS NULL, Timestamp ASC, ID ASC;"
	getRoomMsgNumQuery = "SELECT COUNT(*) FROM Messages WHERE RoomID=?;"
)

// MsgDB is a handle for the encrypted cache database.
type MsgDB struct {
	encDB              *sql.DB
	updateValueQuery   *sql.Stmt
	insertValueQuery   *sql.Stmt
	getValueQuery      *sql.Stmt
	deleteRoomsQuery   *sql.Stmt
	addRoomQuery       *sql.Stmt
	getRoomsQuery      *sql.Stmt
	deleteMsgsQuery    *sql.Stmt
	addMsgQuery        *sql.Stmt
	getMsgsQuery       *sql.Stmt
	getRoomMsgNumQuery *sql.Stmt

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per room and per room list
}

// Create creates a new message database with the given dbname.
// It is encrypted by passphrase (processed by a KDF with iter many iterations).
func Create(dbname string, passphrase []byte, iter int) error {
	err := encdb.Create(dbname, passphrase, iter, []string{
		createQueryKeyValue,
		createQueryRooms,
		createQueryMessages,
	})
	if err != nil {
		return err
	}
	msgDB, err := Open(dbname, passphrase)
	if err != nil {
		return err
	}
	defer msgDB.Close()
	return msgDB.AddValue(DBVersion, Version)
}

// Open opens the message database with dbname and passphrase.
func Open(dbname string, passphrase []byte) (*MsgDB, error) {
	encDB, err := encdb.Open(dbname, passphrase)
	if err != nil {
		return nil, err
	}
	msgDB := &MsgDB{
		encDB: encDB,
		locks: make(map[string]*sync.Mutex),
	}
	stmts := []struct {
		stmt  **sql.Stmt
		query string
	}{
		{&msgDB.updateValueQuery, updateValueQuery},
		{&msgDB.insertValueQuery, insertValueQuery},
		{&msgDB.getValueQuery, getValueQuery},
		{&msgDB.deleteRoomsQuery, deleteRoomsQuery},
		{&msgDB.addRoomQuery, addRoomQuery},
		{&msgDB.getRoomsQuery, getRoomsQuery},
		{&msgDB.deleteMsgsQuery, deleteMsgsQuery},
		{&msgDB.addMsgQuery, addMsgQuery},
		{&msgDB.getMsgsQuery, getMsgsQuery},
		{&msgDB.getRoomMsgNumQuery, getRoomMsgNumQuery},
	}
	for _, s := range stmts {
		if *s.stmt, err = encDB.Prepare(s.query); err != nil {
			encDB.Close()
			return nil, log.Error(err)
		}
	}
	return msgDB, nil
}

// Close the message database.
func (msgDB *MsgDB) Close() error {
	return msgDB.encDB.Close()
}

// Rekey tries to rekey the message database dbname with the newPassphrase
// (processed by a KDF with iter many iterations). The supplied oldPassphrase
// must be correct, otherwise an error is returned.
func Rekey(dbname string, oldPassphrase, newPassphrase []byte, newIter int) error {
	return encdb.Rekey(dbname, oldPassphrase, newPassphrase, newIter)
}

// Version returns the version of msgDB.
func (msgDB *MsgDB) Version() (string, error) {
	return msgDB.GetValue(DBVersion)
}

// lock serializes writes per key and returns the unlock function.
func (msgDB *MsgDB) lock(key string) func() {
	msgDB.mu.Lock()
	l, ok := msgDB.locks[key]
	if !ok {
		l = new(sync.Mutex)
		msgDB.locks[key] = l
	}
	msgDB.mu.Unlock()
	l.Lock()
	return l.Unlock
}
