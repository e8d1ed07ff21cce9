// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package harvest

import (
	"fmt"

	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
)

// State is the durable cursor of the sweep.
//
// Position is the 1-based catalog page still to be read; it counts down
// toward page 1, which always holds the newest items. Zero means the cursor
// was never initialised. LastKnownTotalPages is the remote page count seen at
// the last reconciliation.
//
// Invariant: 0 <= Position <= current remote total.
type State struct {
	Position            int `json:"cursor"`
	LastKnownTotalPages int `json:"lastTotalPages"`
}

// Initialized reports whether the cursor has ever been positioned.
func (state State) Initialized() bool {
	return state.Position > 0
}

// Initialize positions a fresh cursor at the oldest page so the historical
// backlog is walked first. It is a no-op on an initialised cursor.
func (state *State) Initialize(total int) bool {
	if state.Initialized() || total <= 0 {
		return false
	}
	state.Position = total
	state.LastKnownTotalPages = total
	return true
}

// Reconcile adjusts the cursor to a new remote total.
//
// Growth prepends pages, shifting unseen content back by delta pages, so the
// position moves back by the same amount. The result is always clamped to
// the new total.
//
// A shrink also lowers LastKnownTotalPages, unlike a growth-only rule that
// would keep the old total. A later regrowth is then measured from the
// shrunken total: {8,10} shrinking to 6 becomes {6,6}, and growing back to
// 10 becomes {10,10}.
func (state *State) Reconcile(total int) bool {
	if total < 0 {
		total = 0
	}

	changed := false

	if delta := total - state.LastKnownTotalPages; delta != 0 {
		if delta > 0 {
			state.Position += delta
		}
		state.LastKnownTotalPages = total
		changed = true
	}

	if state.Position > total {
		state.Position = total
		changed = true
	}

	return changed
}

// Advance moves the cursor one page toward the newest content.
func (state *State) Advance() {
	if state.Position > 0 {
		state.Position--
	}
}

// Complete parks a drained cursor on page 1, keeping 0 reserved for a cursor
// that was never initialised. The next sweep re-reads page 1 and then any
// pages prepended in between.
func (state *State) Complete() {
	if state.Position <= 0 && state.LastKnownTotalPages > 0 {
		state.Position = 1
	}
}

// Validate checks the cursor invariant against its own recorded total.
func (state State) Validate() error {
	if state.Position < 0 || state.LastKnownTotalPages < 0 {
		return apperr.ValidationError("cursor values must not be negative")
	}
	if state.Position > state.LastKnownTotalPages {
		return apperr.ValidationError(fmt.Sprintf(
			"cursor position %d exceeds total pages %d", state.Position, state.LastKnownTotalPages,
		))
	}
	return nil
}
