package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "reelcut:snapshot:"

// RedisStore keeps snapshots in Redis with a sliding expiry, so an idle
// session disappears after ttl.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (s *RedisStore) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKey(snap.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadSnapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	data, err := s.rdb.Get(ctx, redisKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("redis get snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.ttl > 0 {
		_ = s.rdb.Expire(ctx, redisKey(sessionID), s.ttl).Err()
	}
	return snap, nil
}

func (s *RedisStore) DeleteSnapshot(ctx context.Context, sessionID string) error {
	n, err := s.rdb.Del(ctx, redisKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("redis delete snapshot: %w", err)
	}
	if n == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}
