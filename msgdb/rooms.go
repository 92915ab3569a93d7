// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msgdb

import (
	"database/sql"
	"encoding/json"

	"github.com/workhubapp/workhub/directory"
	"github.com/workhubapp/workhub/log"
)

// ReplaceUserRooms replaces the cached room list of userID with rooms in a
// single transaction.
func (msgDB *MsgDB) ReplaceUserRooms(userID string, rooms []directory.Room) error {
	if userID == "" {
		return log.Error("msgdb: userID must be defined")
	}
	defer msgDB.lock("user:" + userID)()
	tx, err := msgDB.encDB.Begin()
	if err != nil {
		return log.Error(err)
	}
	if _, err := tx.Stmt(msgDB.deleteRoomsQuery).Exec(userID); err != nil {
		tx.Rollback()
		return log.Error(err)
	}
	add := tx.Stmt(msgDB.addRoomQuery)
	for _, r := range rooms {
		participants, err := json.Marshal(r.Participants)
		if err != nil {
			tx.Rollback()
			return log.Error(err)
		}
		_, err = add.Exec(userID, r.ID, string(participants),
			r.LastMessage, r.LastSenderID, nullTime(r.LastMessageTime))
		if err != nil {
			tx.Rollback()
			return log.Error(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return log.Error(err)
	}
	return nil
}

// UserRooms returns the cached room list of userID, most recent
// conversation first.
func (msgDB *MsgDB) UserRooms(userID string) ([]directory.Room, error) {
	rows, err := msgDB.getRoomsQuery.Query(userID)
	if err != nil {
		return nil, log.Error(err)
	}
	defer rows.Close()
	var rooms []directory.Room
	for rows.Next() {
		var (
			r            directory.Room
			participants string
			ts           sql.NullInt64
		)
		err := rows.Scan(&r.ID, &participants, &r.LastMessage,
			&r.LastSenderID, &ts)
		if err != nil {
			return nil, log.Error(err)
		}
		if err := json.Unmarshal([]byte(participants), &r.Participants); err != nil {
			return nil, log.Error(err)
		}
		r.LastMessageTime = timePtr(ts)
		rooms = append(rooms, r)
	}
	if err := rows.Err(); err != nil {
		return nil, log.Error(err)
	}
	return rooms, nil
}
