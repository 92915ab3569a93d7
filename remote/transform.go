// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remote

import (
	"reflect"
	"time"
)

type serverTimestamp struct{}

// ServerTimestamp is a field value which is replaced by the commit time.
var ServerTimestamp interface{} = serverTimestamp{}

type arrayUnion struct {
	values []interface{}
}

// ArrayUnion returns a field value which adds the given values to an array
// field. Values already present are not added again.
func ArrayUnion(values ...interface{}) interface{} {
	return arrayUnion{values: values}
}

// ApplyFields writes fields into dst and resolves field transforms against
// the current content of dst. now is the commit time.
func ApplyFields(dst, fields Document, now time.Time) {
	for k, v := range fields {
		switch t := v.(type) {
		case serverTimestamp:
			dst[k] = now
		case arrayUnion:
			a, _ := dst[k].([]interface{})
			a = append([]interface{}(nil), a...)
			for _, value := range t.values {
				if !containsValue(a, value) {
					a = append(a, value)
				}
			}
			dst[k] = a
		default:
			dst[k] = v
		}
	}
}

// ArrayContains reports whether the array field of doc contains value.
func ArrayContains(doc Document, field string, value interface{}) bool {
	a, _ := doc[field].([]interface{})
	return containsValue(a, value)
}

func containsValue(a []interface{}, value interface{}) bool {
	for _, v := range a {
		if reflect.DeepEqual(v, value) {
			return true
		}
	}
	return false
}

// Strings returns the string elements of an array field.
func Strings(doc Document, field string) []string {
	a, _ := doc[field].([]interface{})
	var s []string
	for _, v := range a {
		if str, ok := v.(string); ok {
			s = append(s, str)
		}
	}
	return s
}
