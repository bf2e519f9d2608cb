package holding

import (
	"fmt"
	"time"
)

// StatusInfo is the full derived lifecycle state of a holding at a point in
// time.
type StatusInfo struct {
	Status      Status
	StatusText  string
	StatusColor StatusColor
	Progress    float64
	CanRedeem   bool
}

// ComputeStatus derives the lifecycle state from elapsed calendar days. It
// is a pure function: callers re-run it on every evaluation tick instead of
// advancing state by assignment. A completed holding stays completed.
//
// Exactly transferDays elapsed means ready, not locked; the locked phase
// progress is capped at 99 so only delivery shows 100.
func ComputeStatus(purchaseDate time.Time, transferDays int, completed bool, now time.Time) StatusInfo {
	if completed {
		return StatusInfo{
			Status:      StatusCompleted,
			StatusText:  "Settled",
			StatusColor: ColorBlue,
			Progress:    100,
			CanRedeem:   false,
		}
	}

	daysPassed := int(now.Sub(purchaseDate).Hours() / 24)
	if daysPassed < 0 {
		daysPassed = 0
	}

	if daysPassed >= transferDays {
		return StatusInfo{
			Status:      StatusReady,
			StatusText:  "Ready to redeem",
			StatusColor: ColorSuccess,
			Progress:    100,
			CanRedeem:   true,
		}
	}

	if daysPassed == 0 {
		return StatusInfo{
			Status:      StatusPending,
			StatusText:  "Awaiting confirmation T+0",
			StatusColor: ColorWarning,
			Progress:    0,
			CanRedeem:   false,
		}
	}

	progress := float64(daysPassed) / float64(transferDays) * 100
	if progress > 99 {
		progress = 99
	}
	return StatusInfo{
		Status:      StatusLocked,
		StatusText:  fmt.Sprintf("Lock-up T+%d", daysPassed),
		StatusColor: ColorSlate,
		Progress:    progress,
		CanRedeem:   false,
	}
}

// applyStatus copies derived lifecycle fields onto the holding and reports
// whether status or redeemability changed.
func (h *Holding) applyStatus(info StatusInfo) bool {
	changed := h.Status != info.Status || h.CanRedeem != info.CanRedeem
	h.Status = info.Status
	h.StatusText = info.StatusText
	h.StatusColor = info.StatusColor
	h.Progress = info.Progress
	h.CanRedeem = info.CanRedeem
	return changed
}
