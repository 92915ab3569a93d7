// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	p, err := Parse([]byte(`{"title":"bob","body":"New message","senderId":"u2","currentUserUid":"u1"}`))
	require.NoError(t, err)
	assert.Equal(t, "bob", p.Title)
	roomID, err := p.RoomID()
	require.NoError(t, err)
	assert.Equal(t, "u2-u1", roomID)

	_, err = Parse([]byte("{"))
	assert.Error(t, err)
}

func TestFromMap(t *testing.T) {
	p := FromMap(map[string]string{
		"senderId":       "u1",
		"currentUserUid": "u2",
	})
	roomID, err := p.RoomID()
	require.NoError(t, err)
	assert.Equal(t, "u2-u1", roomID)

	p = FromMap(map[string]string{"senderId": "u1"})
	_, err = p.RoomID()
	assert.Equal(t, ErrMissingField, err)
}
