package workers

import (
	"context"
	"time"

	"lofmon/internal/services/market"
	"lofmon/pkg/errors"
)

// OpportunityRefreshWorker periodically rebuilds the opportunity snapshot
// from the market feed. A failed refresh leaves the previous snapshot in
// place; the next tick retries.
type OpportunityRefreshWorker struct {
	*BaseWorker
	service *market.Service
}

// NewOpportunityRefreshWorker creates the feed refresh worker.
func NewOpportunityRefreshWorker(service *market.Service, interval time.Duration, enabled bool) *OpportunityRefreshWorker {
	return &OpportunityRefreshWorker{
		BaseWorker: NewBaseWorker("opportunity_refresh", interval, enabled),
		service:    service,
	}
}

// Run refreshes the opportunity snapshot once.
func (w *OpportunityRefreshWorker) Run(ctx context.Context) error {
	start := time.Now()
	if err := w.service.Refresh(ctx); err != nil {
		w.RecordError(err, time.Since(start))
		return errors.Wrap(err, "refresh opportunities")
	}
	w.RecordRun(time.Since(start))
	return nil
}
