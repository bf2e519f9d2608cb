package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"lofmon/pkg/logger"
)

// RedisStore is a Store implementation backed by Redis. Redis expiry mirrors
// the envelope TTL, so expired entries normally vanish on their own; the
// envelope check catches version bumps and clock drift.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
	log    *logger.Logger
}

// NewRedisStore creates a Redis-backed cache store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		now:    time.Now,
		log:    logger.Get().With("component", "redis_cache"),
	}
}

func (s *RedisStore) key(key string) string {
	return KeyPrefix + key
}

// Get retrieves a live entry, dropping it on expiry or version mismatch.
func (s *RedisStore) Get(ctx context.Context, key string, dest interface{}) bool {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		s.log.Warnw("Cache read failed", "key", key, "error", err)
		return false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.client.Del(ctx, s.key(key))
		return false
	}
	if env.expired(s.now()) {
		s.client.Del(ctx, s.key(key))
		return false
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		s.log.Warnw("Dropping undecodable cache entry", "key", key, "error", err)
		s.client.Del(ctx, s.key(key))
		return false
	}
	return true
}

// Set stores a value, rejecting oversized payloads.
func (s *RedisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Warnw("Failed to marshal cache value", "key", key, "error", err)
		return false
	}
	if len(data) > MaxItemSize {
		s.log.Warnw("Cache item too large", "key", key, "size", len(data))
		return false
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	env := envelope{
		Data:      data,
		Timestamp: s.now().UnixMilli(),
		ExpiresIn: ttl.Milliseconds(),
		Version:   Version,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return false
	}

	if err := s.client.Set(ctx, s.key(key), payload, ttl).Err(); err != nil {
		s.log.Warnw("Cache write failed", "key", key, "error", err)
		return false
	}
	return true
}

// Remove deletes a single entry.
func (s *RedisStore) Remove(ctx context.Context, key string) {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		s.log.Warnw("Cache delete failed", "key", key, "error", err)
	}
}

// ClearExpired removes expired and version-mismatched entries.
func (s *RedisStore) ClearExpired(ctx context.Context) int {
	cleared := 0
	now := s.now()

	iter := s.client.Scan(ctx, 0, KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil || env.expired(now) {
			if s.client.Del(ctx, key).Err() == nil {
				cleared++
			}
		}
	}
	if err := iter.Err(); err != nil {
		s.log.Warnw("Cache scan failed", "error", err)
	}
	return cleared
}

// ClearAll removes every entry under the cache prefix.
func (s *RedisStore) ClearAll(ctx context.Context) {
	iter := s.client.Scan(ctx, 0, KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		s.client.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.log.Warnw("Cache scan failed", "error", err)
	}
}

// Stats reports size and age information for every entry.
func (s *RedisStore) Stats(ctx context.Context) Stats {
	now := s.now()
	stats := Stats{}

	iter := s.client.Scan(ctx, 0, KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		size := int64(len(env.Data))
		stats.TotalSize += size
		stats.ItemCount++
		stats.Items = append(stats.Items, ItemStat{
			Key:     key[len(KeyPrefix):],
			Size:    size,
			Age:     time.Duration(now.UnixMilli()-env.Timestamp) * time.Millisecond,
			Expired: env.expired(now),
		})
	}
	if err := iter.Err(); err != nil {
		s.log.Warnw("Cache scan failed", "error", err)
	}
	return stats
}
