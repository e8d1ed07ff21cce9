// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package harvest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taibuivan/yomira-harvester/pkg/fsutil"
)

// CursorStore persists the [State] between sweeps and process runs.
type CursorStore interface {
	// Load returns the persisted state, or the zero State when none exists.
	Load(ctx context.Context) (State, error)
	// Save replaces the persisted state.
	Save(ctx context.Context, state State) error
}

// FileCursorStore keeps the state as a small JSON document
// ({"cursor":n,"lastTotalPages":m}) inside the data directory.
type FileCursorStore struct {
	path string
}

// NewFileCursorStore creates a store backed by path.
func NewFileCursorStore(path string) *FileCursorStore {
	return &FileCursorStore{path: path}
}

// Load reads the state file. A missing file yields the zero State.
func (store *FileCursorStore) Load(_ context.Context) (State, error) {
	data, ok, err := fsutil.ReadOptional(store.path)
	if err != nil || !ok {
		return State{}, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("cursor: decode %s: %w", store.path, err)
	}
	return state, nil
}

// Save atomically replaces the state file.
func (store *FileCursorStore) Save(_ context.Context, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("cursor: encode: %w", err)
	}
	return fsutil.WriteAtomic(store.path, data, 0o644)
}
