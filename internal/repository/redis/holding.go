package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"lofmon/internal/domain/holding"
	"lofmon/pkg/errors"
)

const holdingsKey = "lofmon:holdings"

// HoldingRepository implements holding.Repository on Redis, storing the
// whole collection as one JSON blob. The owning service serializes writes,
// so replace-on-save is safe.
type HoldingRepository struct {
	client *redis.Client
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(client *redis.Client) *HoldingRepository {
	return &HoldingRepository{client: client}
}

// LoadAll reads the persisted collection; a missing key is an empty
// collection, not an error.
func (r *HoldingRepository) LoadAll(ctx context.Context) ([]*holding.Holding, error) {
	data, err := r.client.Get(ctx, holdingsKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read holdings from redis")
	}

	var holdings []*holding.Holding
	if err := json.Unmarshal(data, &holdings); err != nil {
		return nil, errors.Wrap(err, "unmarshal holdings")
	}
	return holdings, nil
}

// SaveAll replaces the persisted collection.
func (r *HoldingRepository) SaveAll(ctx context.Context, holdings []*holding.Holding) error {
	data, err := json.Marshal(holdings)
	if err != nil {
		return errors.Wrap(err, "marshal holdings")
	}
	if err := r.client.Set(ctx, holdingsKey, data, 0).Err(); err != nil {
		return errors.Wrap(err, "write holdings to redis")
	}
	return nil
}
