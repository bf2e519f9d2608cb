package account

import (
	"time"

	"github.com/google/uuid"

	"lofmon/internal/domain/opportunity"
)

// TradingAccount is a broker fee-rate profile. At most one account in the
// registry carries IsDefault; the service enforces that on every mutation.
type TradingAccount struct {
	ID        uuid.UUID                `json:"id"`
	Name      string                   `json:"name"`
	Broker    string                   `json:"broker"`
	Fees      opportunity.FeeStructure `json:"fees"`
	IsDefault bool                     `json:"isDefault"`
	Notes     string                   `json:"notes"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}
