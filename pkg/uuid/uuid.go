// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package uuid generates time-ordered identifiers.

CoPla uses them where an opaque unique string is needed: login session ids
(the jti of a session token) and the jti of provider DPoP proofs.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// It panics only if the OS random source is unavailable.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}
