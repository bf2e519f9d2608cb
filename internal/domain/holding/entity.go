package holding

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lofmon/internal/domain/opportunity"
)

// Status tracks a holding through its settlement lifecycle.
type Status string

const (
	StatusPending   Status = "pending"   // purchased today, not yet confirmed
	StatusLocked    Status = "locked"    // confirmed, shares in transfer
	StatusReady     Status = "ready"     // shares deliverable, redeemable
	StatusCompleted Status = "completed" // sold and settled, terminal
)

// Valid checks if the status is known.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusLocked, StatusReady, StatusCompleted:
		return true
	}
	return false
}

// String returns string representation
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the holding can no longer change state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// StatusColor is the display accent associated with a status.
type StatusColor string

const (
	ColorWarning StatusColor = "warning"
	ColorSlate   StatusColor = "slate"
	ColorSuccess StatusColor = "success"
	ColorBlue    StatusColor = "blue"
)

// Holding is one user-owned arbitrage position, from off-exchange purchase
// through on-exchange sale. Shares and Cost are fixed at creation; valuation
// fields move with marked prices, lifecycle fields with elapsed time.
type Holding struct {
	ID       uuid.UUID            `json:"id"`
	Code     string               `json:"code"`
	Name     string               `json:"name"`
	Exchange opportunity.Exchange `json:"exchange"`

	PurchaseDate   time.Time                `json:"purchaseDate"`
	PurchasePrice  decimal.Decimal          `json:"purchasePrice"` // IOPV at purchase
	PurchaseAmount decimal.Decimal          `json:"purchaseAmount"`
	Shares         int64                    `json:"shares"`
	Fees           opportunity.FeeStructure `json:"fees"` // rate snapshot at purchase
	TransferDays   int                      `json:"transferDays"`

	CurrentPrice            decimal.Decimal `json:"currentPrice"`
	Cost                    decimal.Decimal `json:"cost"` // gross per-share cost
	UnrealizedProfit        decimal.Decimal `json:"unrealizedProfit"`
	UnrealizedProfitPercent decimal.Decimal `json:"unrealizedProfitPercent"`

	Status      Status      `json:"status"`
	StatusText  string      `json:"statusText"`
	StatusColor StatusColor `json:"statusColor"`
	Progress    float64     `json:"progress"` // 0-100
	CanRedeem   bool        `json:"canRedeem"`

	// Settlement fields, set once on completion.
	SellPrice             *decimal.Decimal `json:"sellPrice,omitempty"`
	ActualSellDate        *time.Time       `json:"actualSellDate,omitempty"`
	RealizedProfit        *decimal.Decimal `json:"realizedProfit,omitempty"`
	RealizedProfitPercent *decimal.Decimal `json:"realizedProfitPercent,omitempty"`

	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CostBasis is the total gross cost of the position.
func (h *Holding) CostBasis() decimal.Decimal {
	return h.Cost.Mul(decimal.NewFromInt(h.Shares))
}

// Active reports whether the holding still participates in unrealized P&L.
func (h *Holding) Active() bool {
	return h.Status != StatusCompleted
}
