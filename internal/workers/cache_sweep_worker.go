package workers

import (
	"context"
	"time"

	"lofmon/pkg/cache"
	"lofmon/pkg/format"
)

// CacheSweepWorker evicts expired and version-mismatched cache entries.
// Redis expires entries on its own; the sweep catches version bumps and
// keeps the memory store bounded.
type CacheSweepWorker struct {
	*BaseWorker
	store cache.Store
}

// NewCacheSweepWorker creates the cache sweep worker.
func NewCacheSweepWorker(store cache.Store, interval time.Duration, enabled bool) *CacheSweepWorker {
	return &CacheSweepWorker{
		BaseWorker: NewBaseWorker("cache_sweep", interval, enabled),
		store:      store,
	}
}

// Run clears expired entries once.
func (w *CacheSweepWorker) Run(ctx context.Context) error {
	start := time.Now()

	cleared := w.store.ClearExpired(ctx)
	if cleared > 0 {
		stats := w.store.Stats(ctx)
		w.Log().Infow("Expired cache entries cleared",
			"cleared", cleared,
			"remaining", stats.ItemCount,
			"size", format.Bytes(stats.TotalSize),
		)
	}

	w.RecordRun(time.Since(start))
	return nil
}
