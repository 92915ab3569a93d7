// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msgdb

import (
	"database/sql"
	"time"

	"github.com/workhubapp/workhub/log"
	"github.com/workhubapp/workhub/msg"
)

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(0, n.Int64).UTC()
	return &t
}

// ReplaceRoomMessages replaces all cached messages of roomID with msgs in a
// single transaction. Writes to the same room are serialized.
func (msgDB *MsgDB) ReplaceRoomMessages(roomID string, msgs []*msg.WireMessage) error {
	if roomID == "" {
		return log.Error("msgdb: roomID must be defined")
	}
	defer msgDB.lock("room:" + roomID)()
	tx, err := msgDB.encDB.Begin()
	if err != nil {
		return log.Error(err)
	}
	if _, err := tx.Stmt(msgDB.deleteMsgsQuery).Exec(roomID); err != nil {
		tx.Rollback()
		return log.Error(err)
	}
	add := tx.Stmt(msgDB.addMsgQuery)
	for _, m := range msgs {
		_, err := add.Exec(roomID, m.MessageID, m.SenderID, m.ReceiverID,
			nullTime(m.Timestamp), m.EncryptedMessage, m.IV,
			m.EncryptedKeyForSender, m.EncryptedKeyForReceiver)
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

// RoomMessages returns the cached messages of roomID, ordered by timestamp.
// Messages without timestamp come last.
func (msgDB *MsgDB) RoomMessages(roomID string) ([]*msg.WireMessage, error) {
	rows, err := msgDB.getMsgsQuery.Query(roomID)
	if err != nil {
		return nil, log.Error(err)
	}
	defer rows.Close()
	var msgs []*msg.WireMessage
	for rows.Next() {
		var (
			m  msg.WireMessage
			ts sql.NullInt64
		)
		err := rows.Scan(&m.MessageID, &m.SenderID, &m.ReceiverID, &ts,
			&m.EncryptedMessage, &m.IV, &m.EncryptedKeyForSender,
			&m.EncryptedKeyForReceiver)
		if err != nil {
			return nil, log.Error(err)
		}
		m.Timestamp = timePtr(ts)
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, log.Error(err)
	}
	return msgs, nil
}

// NumRoomMessages returns the number of cached messages of roomID.
func (msgDB *MsgDB) NumRoomMessages(roomID string) (int64, error) {
	var num int64
	if err := msgDB.getRoomMsgNumQuery.QueryRow(roomID).Scan(&num); err != nil {
		return 0, log.Error(err)
	}
	return num, nil
}
