package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"lofmon/pkg/logger"
)

// MemoryStore is a process-local Store implementation. It backs tests and
// serves as the degraded mode when Redis is not configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]envelope
	now     func() time.Time
	log     *logger.Logger
}

// NewMemoryStore creates an empty in-process cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]envelope),
		now:     time.Now,
		log:     logger.Get().With("component", "memory_cache"),
	}
}

// Get retrieves a live entry, dropping it on expiry or version mismatch.
func (s *MemoryStore) Get(ctx context.Context, key string, dest interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, ok := s.entries[key]
	if !ok {
		return false
	}
	if env.expired(s.now()) {
		delete(s.entries, key)
		return false
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		s.log.Warnw("Dropping undecodable cache entry", "key", key, "error", err)
		delete(s.entries, key)
		return false
	}
	return true
}

// Set stores a value, rejecting oversized payloads.
func (s *MemoryStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
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

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = envelope{
		Data:      data,
		Timestamp: s.now().UnixMilli(),
		ExpiresIn: ttl.Milliseconds(),
		Version:   Version,
	}
	return true
}

// Remove deletes a single entry.
func (s *MemoryStore) Remove(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// ClearExpired removes expired and version-mismatched entries.
func (s *MemoryStore) ClearExpired(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cleared := 0
	for key, env := range s.entries {
		if env.expired(now) {
			delete(s.entries, key)
			cleared++
		}
	}
	return cleared
}

// ClearAll removes every entry.
func (s *MemoryStore) ClearAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]envelope)
}

// Stats reports size and age information for every entry.
func (s *MemoryStore) Stats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	stats := Stats{Items: make([]ItemStat, 0, len(s.entries))}
	for key, env := range s.entries {
		size := int64(len(env.Data))
		stats.TotalSize += size
		stats.ItemCount++
		stats.Items = append(stats.Items, ItemStat{
			Key:     key,
			Size:    size,
			Age:     time.Duration(now.UnixMilli()-env.Timestamp) * time.Millisecond,
			Expired: env.expired(now),
		})
	}
	return stats
}
