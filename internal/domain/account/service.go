package account

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"lofmon/internal/domain/opportunity"
	"lofmon/pkg/errors"
	"lofmon/pkg/logger"
)

// Update carries a partial account edit. Setting IsDefault true moves the
// default flag; setting it false on the current default leaves the registry
// without a default until one is chosen.
type Update struct {
	Name      *string
	Broker    *string
	Fees      *opportunity.FeeStructure
	IsDefault *bool
	Notes     *string
}

// Service is the trading account registry. It owns the collection and the
// single-default invariant: flipping a default on clears every other flag
// in the same logical operation.
type Service struct {
	repo Repository
	log  *logger.Logger

	mu       sync.Mutex
	accounts []*TradingAccount
	loaded   bool

	now func() time.Time
}

// NewService constructs an account registry.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.Get().With("component", "account_service"),
		now:  time.Now,
	}
}

// Load reads the persisted collection.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.repo.LoadAll(ctx)
	if err != nil {
		s.accounts = nil
		s.loaded = true
		return errors.Wrap(err, "load trading accounts")
	}
	s.accounts = accounts
	s.loaded = true
	return nil
}

func (s *Service) ensureLoaded(ctx context.Context) {
	if !s.loaded {
		accounts, err := s.repo.LoadAll(ctx)
		if err != nil {
			s.log.Warnw("Failed to load accounts, starting empty", "error", err)
		} else {
			s.accounts = accounts
		}
		s.loaded = true
	}
}

func (s *Service) persist(ctx context.Context) error {
	if err := s.repo.SaveAll(ctx, s.accounts); err != nil {
		return errors.Wrap(err, "save trading accounts")
	}
	return nil
}

// Add registers a new account. The first account ever added becomes the
// default automatically; a new default demotes the previous holder.
func (s *Service) Add(ctx context.Context, acc *TradingAccount) error {
	if acc == nil {
		return errors.ErrInvalidInput
	}
	if acc.Name == "" {
		return errors.NewValidationError("name", "is required", acc.Name)
	}
	if acc.ID == uuid.Nil {
		acc.ID = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	now := s.now()
	acc.CreatedAt = now
	acc.UpdatedAt = now
	if len(s.accounts) == 0 {
		acc.IsDefault = true
	}
	if acc.IsDefault {
		s.clearDefault()
	}
	s.accounts = append(s.accounts, acc)

	if err := s.persist(ctx); err != nil {
		return err
	}
	s.log.Infow("Trading account added", "id", acc.ID, "name", acc.Name, "default", acc.IsDefault)
	return nil
}

// UpdateAccount applies a partial edit, keeping the single-default
// invariant when the edit promotes the account.
func (s *Service) UpdateAccount(ctx context.Context, id uuid.UUID, update Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	acc := s.find(id)
	if acc == nil {
		return errors.ErrAccountNotFound
	}

	if update.IsDefault != nil && *update.IsDefault {
		s.clearDefault()
	}
	if update.Name != nil {
		acc.Name = *update.Name
	}
	if update.Broker != nil {
		acc.Broker = *update.Broker
	}
	if update.Fees != nil {
		acc.Fees = *update.Fees
	}
	if update.IsDefault != nil {
		acc.IsDefault = *update.IsDefault
	}
	if update.Notes != nil {
		acc.Notes = *update.Notes
	}
	acc.UpdatedAt = s.now()

	return s.persist(ctx)
}

// Delete removes an account. Deleting the default promotes the first
// remaining account, keeping insertion order stable.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	idx := -1
	for i, acc := range s.accounts {
		if acc.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.ErrAccountNotFound
	}

	wasDefault := s.accounts[idx].IsDefault
	s.accounts = append(s.accounts[:idx], s.accounts[idx+1:]...)
	if wasDefault && len(s.accounts) > 0 {
		s.accounts[0].IsDefault = true
		s.accounts[0].UpdatedAt = s.now()
	}

	return s.persist(ctx)
}

// SetDefault atomically moves the default flag to the given account.
func (s *Service) SetDefault(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	target := s.find(id)
	if target == nil {
		return errors.ErrAccountNotFound
	}

	now := s.now()
	for _, acc := range s.accounts {
		wasDefault := acc.IsDefault
		acc.IsDefault = acc.ID == id
		if acc.IsDefault != wasDefault {
			acc.UpdatedAt = now
		}
	}

	return s.persist(ctx)
}

// Default returns the default account: the flagged one, else the first,
// else nil.
func (s *Service) Default(ctx context.Context) *TradingAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	for _, acc := range s.accounts {
		if acc.IsDefault {
			copied := *acc
			return &copied
		}
	}
	if len(s.accounts) > 0 {
		copied := *s.accounts[0]
		return &copied
	}
	return nil
}

// List returns a snapshot copy of the collection.
func (s *Service) List(ctx context.Context) []*TradingAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	out := make([]*TradingAccount, len(s.accounts))
	for i, acc := range s.accounts {
		copied := *acc
		out[i] = &copied
	}
	return out
}

// clearDefault drops the default flag everywhere. Caller holds the lock.
func (s *Service) clearDefault() {
	for _, acc := range s.accounts {
		acc.IsDefault = false
	}
}

// find locates an account by id. Caller holds the lock.
func (s *Service) find(id uuid.UUID) *TradingAccount {
	for _, acc := range s.accounts {
		if acc.ID == id {
			return acc
		}
	}
	return nil
}
