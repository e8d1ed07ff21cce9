// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package harvest

import "errors"

var (
	// ErrSweepInProgress is returned when a trigger arrives while a sweep runs.
	ErrSweepInProgress = errors.New("harvest: sweep already in progress")

	// ErrAlreadyStored is returned when a record's identity is already persisted.
	ErrAlreadyStored = errors.New("harvest: record already stored")
)
