// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid issues and checks the identifiers used across the identity service.

Version 7 values are used everywhere an id is minted: user and role primary
keys, token jtis and request ids. Their millisecond prefix keeps B-tree
inserts append-only and makes ids roughly sortable by creation time.
*/
package uuid

import "github.com/google/uuid"

// New returns a fresh UUIDv7 in canonical string form.
//
// It panics if the system entropy source fails, which the process cannot
// recover from anyway.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate v7: " + err.Error())
	}
	return id.String()
}

// IsValid reports whether s is a canonical UUID of any version.
func IsValid(s string) bool {
	return uuid.Validate(s) == nil && len(s) == 36
}
