package holding

import "context"

// Repository persists the holding collection as a whole. The service is the
// sole writer; load-all/save-all keeps the storage surface a plain
// key-value blob.
type Repository interface {
	LoadAll(ctx context.Context) ([]*Holding, error)
	SaveAll(ctx context.Context, holdings []*Holding) error
}
