package holding

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lofmon/internal/domain/opportunity"
	"lofmon/pkg/errors"
	"lofmon/pkg/format"
	"lofmon/pkg/logger"
)

var hundred = decimal.NewFromInt(100)

// CreateInput carries the normalized purchase parameters for a new holding.
type CreateInput struct {
	Code           string
	Name           string
	Exchange       opportunity.Exchange
	PurchaseDate   time.Time // zero value means now
	PurchasePrice  decimal.Decimal
	PurchaseAmount decimal.Decimal
	Fees           opportunity.FeeStructure
	TransferDays   int
	Notes          string
}

// Update carries a partial edit. Nil fields are left untouched; lifecycle
// fields are never edited directly, they are re-derived by RefreshStatuses.
type Update struct {
	Name         *string
	Notes        *string
	TransferDays *int
	CurrentPrice *decimal.Decimal
}

// Stats aggregates the portfolio. Counts split by lifecycle phase;
// unrealized figures cover active holdings only, realized figures settled
// ones.
type Stats struct {
	TotalHoldings                int
	PendingCount                 int
	ReadyCount                   int
	CompletedCount               int
	TotalUnrealizedProfit        decimal.Decimal
	TotalRealizedProfit          decimal.Decimal
	TotalUnrealizedProfitPercent decimal.Decimal
}

// Service owns the holding collection. Every mutation funnels through it,
// so a single mutex is enough; external consumers only see snapshots.
type Service struct {
	repo Repository
	log  *logger.Logger

	mu       sync.Mutex
	holdings []*Holding
	loaded   bool

	now func() time.Time
}

// NewService constructs a holding service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.Get().With("component", "holding_service"),
		now:  time.Now,
	}
}

// Load reads the persisted collection. A read failure degrades to an empty
// collection so the process keeps running; the error is surfaced for the
// caller to report.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	holdings, err := s.repo.LoadAll(ctx)
	if err != nil {
		s.holdings = nil
		s.loaded = true
		return errors.Wrap(err, "load holdings")
	}
	s.holdings = holdings
	s.loaded = true
	s.log.Infow("Holdings loaded", "count", len(holdings))
	return nil
}

func (s *Service) ensureLoaded(ctx context.Context) {
	if !s.loaded {
		holdings, err := s.repo.LoadAll(ctx)
		if err != nil {
			s.log.Warnw("Failed to load holdings, starting empty", "error", err)
		} else {
			s.holdings = holdings
		}
		s.loaded = true
	}
}

func (s *Service) persist(ctx context.Context) error {
	if err := s.repo.SaveAll(ctx, s.holdings); err != nil {
		return errors.Wrap(err, "save holdings")
	}
	return nil
}

// Create opens a new holding. Shares are computed once from the net
// subscription amount and floor-rounded; the per-share cost is gross, so
// the purchase fee is carried inside the cost basis.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Holding, error) {
	if !input.PurchasePrice.IsPositive() {
		return nil, errors.NewValidationError("purchasePrice", "must be positive", input.PurchasePrice)
	}
	if !input.PurchaseAmount.IsPositive() {
		return nil, errors.NewValidationError("purchaseAmount", "must be positive", input.PurchaseAmount)
	}
	if input.TransferDays <= 0 {
		return nil, errors.NewValidationError("transferDays", "must be positive", input.TransferDays)
	}

	now := s.now()
	purchaseDate := input.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = now
	}

	feeRate := input.Fees.Purchase.Div(hundred)
	netAmount := input.PurchaseAmount.Mul(decimal.NewFromInt(1).Sub(feeRate))
	shares := netAmount.Div(input.PurchasePrice).Floor().IntPart()
	if shares <= 0 {
		return nil, errors.NewValidationError("purchaseAmount", "too small for a single share", input.PurchaseAmount)
	}
	cost := input.PurchaseAmount.Div(decimal.NewFromInt(shares))

	h := &Holding{
		ID:             uuid.New(),
		Code:           input.Code,
		Name:           input.Name,
		Exchange:       input.Exchange,
		PurchaseDate:   purchaseDate,
		PurchasePrice:  input.PurchasePrice,
		PurchaseAmount: input.PurchaseAmount,
		Shares:         shares,
		Fees:           input.Fees,
		TransferDays:   input.TransferDays,
		CurrentPrice:   input.PurchasePrice,
		Cost:           cost,
		Notes:          input.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	h.UnrealizedProfit = decimal.Zero
	h.UnrealizedProfitPercent = decimal.Zero
	h.applyStatus(ComputeStatus(h.PurchaseDate, h.TransferDays, false, now))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	s.holdings = append([]*Holding{h}, s.holdings...)

	if err := s.persist(ctx); err != nil {
		return h, err
	}

	s.log.Infow("Holding created",
		"id", h.ID,
		"code", h.Code,
		"shares", h.Shares,
		"amount", format.Amount(h.PurchaseAmount),
		"status", h.Status,
	)
	return h, nil
}

// Update applies a partial edit and stamps UpdatedAt. Status is not
// re-derived here; that is the periodic RefreshStatuses pass.
func (s *Service) Update(ctx context.Context, id uuid.UUID, update Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	h := s.find(id)
	if h == nil {
		return errors.ErrHoldingNotFound
	}

	if update.Name != nil {
		h.Name = *update.Name
	}
	if update.Notes != nil {
		h.Notes = *update.Notes
	}
	if update.TransferDays != nil {
		h.TransferDays = *update.TransferDays
	}
	if update.CurrentPrice != nil {
		h.CurrentPrice = *update.CurrentPrice
		s.reprice(h)
	}
	h.UpdatedAt = s.now()

	return s.persist(ctx)
}

// Delete removes a holding unconditionally.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	for i, h := range s.holdings {
		if h.ID == id {
			s.holdings = append(s.holdings[:i], s.holdings[i+1:]...)
			return s.persist(ctx)
		}
	}
	return errors.ErrHoldingNotFound
}

// Settle sells the holding and moves it to the terminal completed state.
// The transition is one-way; settling twice is rejected.
func (s *Service) Settle(ctx context.Context, id uuid.UUID, sellPrice decimal.Decimal) error {
	if !sellPrice.IsPositive() {
		return errors.NewValidationError("sellPrice", "must be positive", sellPrice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	h := s.find(id)
	if h == nil {
		return errors.ErrHoldingNotFound
	}
	if h.Status.IsTerminal() {
		return errors.ErrHoldingSettled
	}

	shares := decimal.NewFromInt(h.Shares)
	totalCost := h.Cost.Mul(shares)
	totalRevenue := sellPrice.Mul(shares)
	tradingFee := totalRevenue.Mul(h.Fees.Trading.Div(hundred))
	netRevenue := totalRevenue.Sub(tradingFee)

	realizedProfit := netRevenue.Sub(totalCost)
	realizedProfitPercent := decimal.Zero
	if totalCost.IsPositive() {
		realizedProfitPercent = realizedProfit.Div(totalCost).Mul(hundred)
	}

	now := s.now()
	h.SellPrice = &sellPrice
	h.ActualSellDate = &now
	h.RealizedProfit = &realizedProfit
	h.RealizedProfitPercent = &realizedProfitPercent
	h.applyStatus(ComputeStatus(h.PurchaseDate, h.TransferDays, true, now))
	h.UpdatedAt = now

	if err := s.persist(ctx); err != nil {
		return err
	}

	s.log.Infow("Holding settled",
		"id", h.ID,
		"code", h.Code,
		"sell_price", sellPrice,
		"realized_profit", realizedProfit.Round(2),
	)
	return nil
}

// MarkPrice updates the market price of every active holding in the given
// fund and recomputes unrealized P&L. Invoked by the price-feed
// collaborator; the lifecycle manager never simulates market movement
// itself.
func (s *Service) MarkPrice(ctx context.Context, code string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return errors.NewValidationError("price", "must be positive", price)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	changed := false
	now := s.now()
	for _, h := range s.holdings {
		if h.Code != code || !h.Active() {
			continue
		}
		if h.CurrentPrice.Equal(price) {
			continue
		}
		h.CurrentPrice = price
		s.reprice(h)
		h.UpdatedAt = now
		changed = true
	}

	if !changed {
		return nil
	}
	return s.persist(ctx)
}

// reprice recomputes unrealized P&L from the current price. Caller holds
// the lock.
func (s *Service) reprice(h *Holding) {
	shares := decimal.NewFromInt(h.Shares)
	h.UnrealizedProfit = h.CurrentPrice.Sub(h.Cost).Mul(shares)
	basis := h.CostBasis()
	if basis.IsPositive() {
		h.UnrealizedProfitPercent = h.UnrealizedProfit.Div(basis).Mul(hundred)
	} else {
		h.UnrealizedProfitPercent = decimal.Zero
	}
}

// RefreshStatuses recomputes every active holding's lifecycle state and
// persists only when at least one status or redeemability flag actually
// changed, avoiding redundant writes on every tick. Returns the number of
// holdings that changed.
func (s *Service) RefreshStatuses(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	now := s.now()
	changed := 0
	for _, h := range s.holdings {
		if h.Status.IsTerminal() {
			continue
		}
		if h.applyStatus(ComputeStatus(h.PurchaseDate, h.TransferDays, false, now)) {
			h.UpdatedAt = now
			changed++
		}
	}

	if changed == 0 {
		return 0, nil
	}
	if err := s.persist(ctx); err != nil {
		return changed, err
	}
	s.log.Infow("Holding statuses refreshed", "changed", changed)
	return changed, nil
}

// GetByID returns a copy of one holding.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	h := s.find(id)
	if h == nil {
		return nil, errors.ErrHoldingNotFound
	}
	copied := *h
	return &copied, nil
}

// List returns a snapshot copy of the collection.
func (s *Service) List(ctx context.Context) []*Holding {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	out := make([]*Holding, len(s.holdings))
	for i, h := range s.holdings {
		copied := *h
		out[i] = &copied
	}
	return out
}

// Stats aggregates the portfolio. The weighted unrealized percent guards
// against a zero cost basis.
func (s *Service) Stats(ctx context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	stats := Stats{
		TotalUnrealizedProfit:        decimal.Zero,
		TotalRealizedProfit:          decimal.Zero,
		TotalUnrealizedProfitPercent: decimal.Zero,
	}

	totalCostBasis := decimal.Zero
	for _, h := range s.holdings {
		switch h.Status {
		case StatusPending:
			stats.PendingCount++
		case StatusReady:
			stats.ReadyCount++
		}

		if h.Active() {
			stats.TotalHoldings++
			stats.TotalUnrealizedProfit = stats.TotalUnrealizedProfit.Add(h.UnrealizedProfit)
			totalCostBasis = totalCostBasis.Add(h.CostBasis())
		} else {
			stats.CompletedCount++
			if h.RealizedProfit != nil {
				stats.TotalRealizedProfit = stats.TotalRealizedProfit.Add(*h.RealizedProfit)
			}
		}
	}

	if totalCostBasis.IsPositive() {
		stats.TotalUnrealizedProfitPercent = stats.TotalUnrealizedProfit.Div(totalCostBasis).Mul(hundred)
	}
	return stats
}

// find locates a holding by id. Caller holds the lock.
func (s *Service) find(id uuid.UUID) *Holding {
	for _, h := range s.holdings {
		if h.ID == id {
			return h
		}
	}
	return nil
}
