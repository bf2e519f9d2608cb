package workers

import (
	"context"
	"time"

	"lofmon/internal/domain/holding"
	"lofmon/internal/metrics"
	"lofmon/pkg/errors"
)

// HoldingStatusWorker periodically re-derives every active holding's
// lifecycle state from elapsed time. The service only persists when a
// status or redeemability flag actually changed.
type HoldingStatusWorker struct {
	*BaseWorker
	service *holding.Service
}

// NewHoldingStatusWorker creates the holding status worker.
func NewHoldingStatusWorker(service *holding.Service, interval time.Duration, enabled bool) *HoldingStatusWorker {
	return &HoldingStatusWorker{
		BaseWorker: NewBaseWorker("holding_status", interval, enabled),
		service:    service,
	}
}

// Run recomputes holding statuses once.
func (w *HoldingStatusWorker) Run(ctx context.Context) error {
	start := time.Now()

	changed, err := w.service.RefreshStatuses(ctx)
	if err != nil {
		w.RecordError(err, time.Since(start))
		return errors.Wrap(err, "refresh holding statuses")
	}

	if changed > 0 {
		metrics.HoldingStatusChanges.Add(float64(changed))
		w.Log().Infow("Holding statuses advanced", "changed", changed)
	}

	stats := w.service.Stats(ctx)
	metrics.ActiveHoldings.Set(float64(stats.TotalHoldings))

	w.RecordRun(time.Since(start))
	return nil
}
