// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package push parses inbound push notification payloads and resolves the
// conversation they belong to.
package push

import (
	"encoding/json"
	"errors"

	"github.com/workhubapp/workhub/directory"
	"github.com/workhubapp/workhub/log"
)

// ErrMissingField is returned if a payload lacks the sender or the
// receiver.
var ErrMissingField = errors.New("push: payload lacks senderId or currentUserUid")

// Payload is the data of a chat push notification.
type Payload struct {
	Title          string `json:"title"`
	Body           string `json:"body"`
	SenderID       string `json:"senderId"`
	CurrentUserUID string `json:"currentUserUid"`
}

// Parse parses a JSON encoded payload.
func Parse(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, log.Error(err)
	}
	return &p, nil
}

// FromMap returns the payload contained in the data map of a notification.
func FromMap(data map[string]string) *Payload {
	return &Payload{
		Title:          data["title"],
		Body:           data["body"],
		SenderID:       data["senderId"],
		CurrentUserUID: data["currentUserUid"],
	}
}

// RoomID returns the ID of the chat room the notification refers to.
func (p *Payload) RoomID() (string, error) {
	if p.SenderID == "" || p.CurrentUserUID == "" {
		return "", ErrMissingField
	}
	return directory.RoomID(p.SenderID, p.CurrentUserUID), nil
}
