// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package directory

import (
	"github.com/fatih/structs"
	"github.com/workhubapp/workhub/remote"
)

// User document fields which are not covered by struct tags.
const (
	FieldPublicKey = "publicKey"
	FieldFriends   = "friends"
	FieldFCMTokens = "fcmTokens"
)

// UserIdentity is the public profile of a user in the directory.
type UserIdentity struct {
	UID         string   `structs:"uid"`
	Email       string   `structs:"email"`
	DisplayName string   `structs:"displayName"`
	PhotoURL    string   `structs:"photoUrl"`
	PublicKey   string   `structs:"publicKey"` // base64 SPKI DER
	Friends     []string `structs:"-"`
	FCMTokens   []string `structs:"-"`
}

// toDocument returns the user document. Array fields are merged with
// existing ones.
func (u *UserIdentity) toDocument() remote.Document {
	doc := remote.Document(structs.Map(u))
	doc[FieldFriends] = remote.ArrayUnion(toValues(u.Friends)...)
	doc[FieldFCMTokens] = remote.ArrayUnion(toValues(u.FCMTokens)...)
	return doc
}

func userFromDocument(doc *remote.DocumentSnapshot) *UserIdentity {
	u := &UserIdentity{
		UID:       doc.ID,
		Friends:   remote.Strings(doc.Data, FieldFriends),
		FCMTokens: remote.Strings(doc.Data, FieldFCMTokens),
	}
	u.Email, _ = doc.Data["email"].(string)
	u.DisplayName, _ = doc.Data["displayName"].(string)
	u.PhotoURL, _ = doc.Data["photoUrl"].(string)
	u.PublicKey, _ = doc.Data[FieldPublicKey].(string)
	return u
}

func toValues(s []string) []interface{} {
	v := make([]interface{}, 0, len(s))
	for _, e := range s {
		v = append(v, e)
	}
	return v
}
