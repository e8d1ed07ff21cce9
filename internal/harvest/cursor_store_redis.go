// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package harvest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-harvester/internal/platform/constants"
)

// RedisCursorStore keeps the state as a JSON value under a single key.
type RedisCursorStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisCursorStore creates a Redis-backed [CursorStore].
func NewRedisCursorStore(client redis.Cmdable) *RedisCursorStore {
	return &RedisCursorStore{client: client, key: constants.RedisKeyCursor}
}

/*
Load retrieves the persisted cursor.

Returns:
  - State: The stored cursor, or the zero State when the key is absent
  - error: Connectivity or decoding errors
*/
func (repository *RedisCursorStore) Load(context context.Context) (State, error) {
	raw, err := repository.client.Get(context, repository.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("redis_cursor_get_failed: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, fmt.Errorf("redis_cursor_decode_failed: %w", err)
	}
	return state, nil
}

// Save replaces the persisted cursor. The key never expires.
func (repository *RedisCursorStore) Save(context context.Context, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("redis_cursor_encode_failed: %w", err)
	}
	if err := repository.client.Set(context, repository.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis_cursor_set_failed: %w", err)
	}
	return nil
}
