// Package cache provides an expiring, version-tagged key-value cache for
// market data snapshots. Entries are wrapped in an envelope carrying their
// write time, TTL and schema version; a version bump invalidates every
// previously cached entry on read.
package cache

import (
	"context"
	"time"
)

const (
	// Version tags every envelope; entries written under a different
	// version are treated as expired.
	Version = "1.0.0"

	// KeyPrefix namespaces cache keys in shared stores.
	KeyPrefix = "lofmon:cache:"

	// DefaultTTL is applied when Set is called with a non-positive TTL.
	DefaultTTL = 5 * time.Minute

	// MaxItemSize is the serialized size limit for a single entry.
	MaxItemSize = 5 * 1024 * 1024
)

// Well-known cache keys.
const (
	KeyIndexLofList = "lof_index_list"
	KeyStockLofList = "lof_stock_list"
	KeyAllLofList   = "lof_all_list"
)

// envelope wraps a cached payload with expiry and version metadata.
type envelope struct {
	Data      []byte `json:"data"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	ExpiresIn int64  `json:"expiresIn"` // milliseconds
	Version   string `json:"version"`
}

func (e envelope) expired(now time.Time) bool {
	if e.Version != Version {
		return true
	}
	age := now.UnixMilli() - e.Timestamp
	return age > e.ExpiresIn
}

// ItemStat describes a single cached entry.
type ItemStat struct {
	Key     string
	Size    int64
	Age     time.Duration
	Expired bool
}

// Stats aggregates cache usage information.
type Stats struct {
	TotalSize int64
	ItemCount int
	Items     []ItemStat
}

// Store is the cache surface used by data-fetch collaborators. Get and Set
// never fail hard: a miss, an expired entry or a storage error all read as
// "not cached".
type Store interface {
	// Get unmarshals the cached value for key into dest and reports whether
	// a live entry was found.
	Get(ctx context.Context, key string, dest interface{}) bool

	// Set stores value under key with the given TTL and reports success.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool

	// Remove deletes a single entry.
	Remove(ctx context.Context, key string)

	// ClearExpired removes expired and version-mismatched entries and
	// returns the number removed.
	ClearExpired(ctx context.Context) int

	// ClearAll removes every entry under the cache prefix.
	ClearAll(ctx context.Context)

	// Stats reports size, count and per-item age information.
	Stats(ctx context.Context) Stats
}
