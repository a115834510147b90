// Copyright (c) 2026 CoPla. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/copla/copla/internal/platform/constants"
)

// RedisSessionRepository implements SessionRepository with expiring Redis keys.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new Redis-backed SessionRepository.
func NewSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionKey(sessionID string) string {
	return constants.RedisPrefixSession + sessionID
}

/*
Create stores the session with its owner and TTL.

Parameters:
  - context: context.Context
  - sessionID: string (jti of the issued token)
  - userID: int64
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisSessionRepository) Create(context context.Context, sessionID string, userID int64, ttl time.Duration) error {
	if err := repository.client.Set(context, sessionKey(sessionID), strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_create_failed: %w", err)
	}
	return nil
}

// Exists reports whether the session key is still present.
func (repository *RedisSessionRepository) Exists(context context.Context, sessionID string) (bool, error) {
	count, err := repository.client.Exists(context, sessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_session_exists_failed: %w", err)
	}
	return count == 1, nil
}

// Revoke deletes the session key.
func (repository *RedisSessionRepository) Revoke(context context.Context, sessionID string) error {
	if err := repository.client.Del(context, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis_session_revoke_failed: %w", err)
	}
	return nil
}
