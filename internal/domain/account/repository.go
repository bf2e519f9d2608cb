package account

import "context"

// Repository persists the account collection as a whole, mirroring the
// holding repository's key-value blob surface.
type Repository interface {
	LoadAll(ctx context.Context) ([]*TradingAccount, error)
	SaveAll(ctx context.Context, accounts []*TradingAccount) error
}
