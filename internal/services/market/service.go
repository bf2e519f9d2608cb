// Package market owns the opportunity snapshot: it pulls raw fund lists
// from the feed, caches them, runs them through the normalizer and publishes
// the scored, sorted result.
package market

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"lofmon/internal/domain/feed"
	"lofmon/internal/domain/opportunity"
	"lofmon/internal/metrics"
	"lofmon/pkg/cache"
	"lofmon/pkg/errors"
	"lofmon/pkg/logger"
)

// Fetcher is the market data collaborator. Both lists are fetched per
// refresh and merged.
type Fetcher interface {
	FetchIndexList(ctx context.Context) ([]feed.Record, error)
	FetchStockList(ctx context.Context) ([]feed.Record, error)
}

// Service refreshes and serves the opportunity list. Refreshes are
// last-write-wins: a result is discarded when a newer refresh has started,
// so the snapshot never goes backwards.
type Service struct {
	fetcher    Fetcher
	store      cache.Store
	normalizer *feed.Normalizer
	cacheTTL   time.Duration
	log        *logger.Logger

	generation atomic.Uint64

	mu            sync.RWMutex
	opportunities []opportunity.Opportunity
	lastRefresh   time.Time
}

// NewService constructs a market data service.
func NewService(fetcher Fetcher, store cache.Store, normalizer *feed.Normalizer, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultTTL
	}
	return &Service{
		fetcher:    fetcher,
		store:      store,
		normalizer: normalizer,
		cacheTTL:   cacheTTL,
		log:        logger.Get().With("component", "market_service"),
	}
}

// Refresh rebuilds the opportunity snapshot. Transport failure keeps the
// previous snapshot and returns a non-fatal error for the caller to report.
func (s *Service) Refresh(ctx context.Context) error {
	gen := s.generation.Add(1)
	start := time.Now()

	records, err := s.loadRecords(ctx)
	if err != nil {
		metrics.FeedRefreshes.WithLabelValues("error").Inc()
		return err
	}

	opportunities := s.normalizer.TransformList(records)
	sorted := opportunity.Sort(opportunities, opportunity.SortByScore)

	// A newer refresh superseded this one; drop the result wholesale
	// rather than merging stale data.
	if s.generation.Load() != gen {
		metrics.FeedRefreshes.WithLabelValues("superseded").Inc()
		s.log.Debugw("Refresh superseded, discarding result", "generation", gen)
		return nil
	}

	s.mu.Lock()
	s.opportunities = sorted
	s.lastRefresh = time.Now()
	s.mu.Unlock()

	metrics.FeedRefreshes.WithLabelValues("success").Inc()
	metrics.FeedRefreshDuration.Observe(time.Since(start).Seconds())
	metrics.OpportunityCount.Set(float64(len(sorted)))

	s.log.Infow("Opportunity snapshot refreshed",
		"raw", len(records),
		"kept", len(sorted),
		"duration", time.Since(start),
	)
	return nil
}

// loadRecords returns the merged raw lists, from cache when live.
func (s *Service) loadRecords(ctx context.Context) ([]feed.Record, error) {
	var cached []feed.Record
	if s.store.Get(ctx, cache.KeyAllLofList, &cached) {
		metrics.CacheLookups.WithLabelValues(cache.KeyAllLofList, "hit").Inc()
		return cached, nil
	}
	metrics.CacheLookups.WithLabelValues(cache.KeyAllLofList, "miss").Inc()

	indexRecords, indexErr := s.fetcher.FetchIndexList(ctx)
	stockRecords, stockErr := s.fetcher.FetchStockList(ctx)

	if indexErr != nil && stockErr != nil {
		return nil, errors.Wrapf(errors.ErrFeedUnavailable, "index: %v; stock: %v", indexErr, stockErr)
	}
	if indexErr != nil {
		s.log.Warnw("Index LOF list unavailable, serving stock list only", "error", indexErr)
	}
	if stockErr != nil {
		s.log.Warnw("Stock LOF list unavailable, serving index list only", "error", stockErr)
	}

	records := make([]feed.Record, 0, len(indexRecords)+len(stockRecords))
	records = append(records, indexRecords...)
	records = append(records, stockRecords...)

	s.store.Set(ctx, cache.KeyAllLofList, records, s.cacheTTL)
	return records, nil
}

// Snapshot returns a copy of the current opportunity list.
func (s *Service) Snapshot() []opportunity.Opportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]opportunity.Opportunity, len(s.opportunities))
	copy(out, s.opportunities)
	return out
}

// Lookup finds the current snapshot entry for a fund code.
func (s *Service) Lookup(code string) (*opportunity.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.opportunities {
		if s.opportunities[i].Code == code {
			copied := s.opportunities[i]
			return &copied, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrOpportunityNotFound, "code=%s", code)
}

// LastRefresh returns when the snapshot was last rebuilt.
func (s *Service) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}
