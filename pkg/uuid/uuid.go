// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for the harvester.

Version 7 values are used for persisted primary keys and for sweep ids, so
both database rows and log lines sort naturally by creation time.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// Random generates a random (version 4) UUID string without dashes.
// It is used where ordering must not leak, such as request nonces.
func Random() string {
	id := uuid.New()
	out := make([]byte, 0, 32)
	for _, r := range id.String() {
		if r != '-' {
			out = append(out, byte(r))
		}
	}
	return string(out)
}
