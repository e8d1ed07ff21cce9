// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package harvest

import (
	"context"
	"fmt"
	"sync"

	"github.com/taibuivan/yomira-harvester/internal/platform/metrics"
)

// Tracker holds the live cursor outside the sweep's call stack so that a
// termination signal handler can flush it while a sweep is running.
//
// Only the active sweep mutates the state; the mutex serialises that writer
// with readers (status endpoint) and with concurrent flushes.
type Tracker struct {
	mu      sync.Mutex
	state   State
	store   CursorStore
	metrics *metrics.Metrics
}

// NewTracker creates a tracker persisting through store.
func NewTracker(store CursorStore, m *metrics.Metrics) *Tracker {
	return &Tracker{store: store, metrics: m}
}

// Load replaces the live state with the persisted one.
func (tracker *Tracker) Load(ctx context.Context) (State, error) {
	state, err := tracker.store.Load(ctx)
	if err != nil {
		return State{}, fmt.Errorf("tracker: load: %w", err)
	}

	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	tracker.state = state
	tracker.metrics.SetCursor(state.Position, state.LastKnownTotalPages)
	return state, nil
}

// Snapshot returns a copy of the live state.
func (tracker *Tracker) Snapshot() State {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.state
}

// Update applies mutate to the live state and returns the result.
// It does not persist; call [Tracker.Flush] at checkpoints.
func (tracker *Tracker) Update(mutate func(*State)) State {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	mutate(&tracker.state)
	tracker.metrics.SetCursor(tracker.state.Position, tracker.state.LastKnownTotalPages)
	return tracker.state
}

// Flush persists the live state. Writes are serialised so an older snapshot
// never overwrites a newer one.
func (tracker *Tracker) Flush(ctx context.Context) error {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	if err := tracker.store.Save(ctx, tracker.state); err != nil {
		return fmt.Errorf("tracker: save: %w", err)
	}
	return nil
}

// Override validates and persists an operator-supplied state.
func (tracker *Tracker) Override(ctx context.Context, state State) error {
	if err := state.Validate(); err != nil {
		return err
	}

	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	if err := tracker.store.Save(ctx, state); err != nil {
		return fmt.Errorf("tracker: save: %w", err)
	}
	tracker.state = state
	tracker.metrics.SetCursor(state.Position, state.LastKnownTotalPages)
	return nil
}
