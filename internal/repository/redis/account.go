package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"lofmon/internal/domain/account"
	"lofmon/pkg/errors"
)

const accountsKey = "lofmon:trading_accounts"

// AccountRepository implements account.Repository on Redis with the same
// whole-collection blob shape as holdings.
type AccountRepository struct {
	client *redis.Client
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(client *redis.Client) *AccountRepository {
	return &AccountRepository{client: client}
}

// LoadAll reads the persisted collection; a missing key is an empty
// collection, not an error.
func (r *AccountRepository) LoadAll(ctx context.Context) ([]*account.TradingAccount, error) {
	data, err := r.client.Get(ctx, accountsKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read trading accounts from redis")
	}

	var accounts []*account.TradingAccount
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, errors.Wrap(err, "unmarshal trading accounts")
	}
	return accounts, nil
}

// SaveAll replaces the persisted collection.
func (r *AccountRepository) SaveAll(ctx context.Context, accounts []*account.TradingAccount) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return errors.Wrap(err, "marshal trading accounts")
	}
	if err := r.client.Set(ctx, accountsKey, data, 0).Err(); err != nil {
		return errors.Wrap(err, "write trading accounts to redis")
	}
	return nil
}
