// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-harvester/internal/platform/constants"
)

// RedisTokenStore keeps the token under a single Redis key.
type RedisTokenStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisTokenStore creates a Redis-backed [TokenStore].
func NewRedisTokenStore(client redis.Cmdable) *RedisTokenStore {
	return &RedisTokenStore{client: client, key: constants.RedisKeyToken}
}

/*
Load retrieves the persisted token.

Returns:
  - string: The token, or "" when the key is absent
  - error: Connectivity errors
*/
func (repository *RedisTokenStore) Load(context context.Context) (string, error) {
	token, err := repository.client.Get(context, repository.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis_session_token_get_failed: %w", err)
	}
	return token, nil
}

/*
Save replaces the persisted token. The key never expires; the token's own
exp claim decides when it is discarded.
*/
func (repository *RedisTokenStore) Save(context context.Context, token string) error {
	if err := repository.client.Set(context, repository.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis_session_token_set_failed: %w", err)
	}
	return nil
}
