// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package harvest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-harvester/internal/harvest"
)

/*
TestFileCursorStore verifies the on-disk cursor document.
*/
func TestFileCursorStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor.json")
	store := harvest.NewFileCursorStore(path)
	ctx := context.Background()

	state, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, harvest.State{}, state)

	require.NoError(t, store.Save(ctx, harvest.State{Position: 42, LastKnownTotalPages: 57}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cursor":42,"lastTotalPages":57}`, string(raw))

	state, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, harvest.State{Position: 42, LastKnownTotalPages: 57}, state)
}

func TestFileCursorStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := harvest.NewFileCursorStore(path).Load(context.Background())
	assert.Error(t, err)
}

/*
TestTracker_FlushAndOverride verifies the shared holder used by signal handlers.
*/
func TestTracker_FlushAndOverride(t *testing.T) {
	store := &memoryCursorStore{state: harvest.State{Position: 4, LastKnownTotalPages: 9}}
	tracker := harvest.NewTracker(store, nil)
	ctx := context.Background()

	loaded, err := tracker.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Position)

	tracker.Update(func(state *harvest.State) { state.Advance() })
	assert.Equal(t, 3, tracker.Snapshot().Position)
	assert.Equal(t, 4, store.State().Position, "updates are not persisted until flushed")

	require.NoError(t, tracker.Flush(ctx))
	assert.Equal(t, 3, store.State().Position)

	assert.Error(t, tracker.Override(ctx, harvest.State{Position: 10, LastKnownTotalPages: 9}))
	require.NoError(t, tracker.Override(ctx, harvest.State{Position: 9, LastKnownTotalPages: 9}))
	assert.Equal(t, harvest.State{Position: 9, LastKnownTotalPages: 9}, store.State())
	assert.Equal(t, 9, tracker.Snapshot().Position)

	store.saveErr = errors.New("read-only filesystem")
	assert.Error(t, tracker.Flush(ctx))
}

/*
TestRedisCursorStore runs against a real server when HARVESTER_TEST_REDIS_URL is set.
*/
func TestRedisCursorStore(t *testing.T) {
	redisURL := os.Getenv("HARVESTER_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("HARVESTER_TEST_REDIS_URL not set")
	}

	options, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(options)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Del(ctx, "harvest:cursor").Err())

	store := harvest.NewRedisCursorStore(client)
	state, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, harvest.State{}, state)

	require.NoError(t, store.Save(ctx, harvest.State{Position: 2, LastKnownTotalPages: 3}))
	state, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, harvest.State{Position: 2, LastKnownTotalPages: 3}, state)
}
