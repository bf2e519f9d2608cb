package opportunity

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ExchangeAll and RiskAll are pass-through sentinels for FilterOptions.
const (
	ExchangeAll Exchange  = ""
	RiskAll     RiskLevel = ""
)

// FilterOptions selects opportunities by AND-combining the active
// predicates. Zero values mean pass-through: a nil premium bound defaults to
// the -10/+10 band, zero MaxTransferDays defaults to 3, empty Exchange and
// RiskLevel match everything.
type FilterOptions struct {
	MinPremiumRate  *decimal.Decimal
	MaxPremiumRate  *decimal.Decimal
	MinAmount       decimal.Decimal
	Exchange        Exchange
	OnlyNoLimit     bool
	MaxTransferDays int
	MinScore        int
	RiskLevel       RiskLevel
}

var (
	defaultMinPremium = decimal.NewFromInt(-10)
	defaultMaxPremium = decimal.NewFromInt(10)
)

func (f FilterOptions) withDefaults() FilterOptions {
	if f.MinPremiumRate == nil {
		f.MinPremiumRate = &defaultMinPremium
	}
	if f.MaxPremiumRate == nil {
		f.MaxPremiumRate = &defaultMaxPremium
	}
	if f.MaxTransferDays == 0 {
		f.MaxTransferDays = transferMax
	}
	return f
}

// Filter returns the opportunities matching every active predicate,
// preserving input order.
func Filter(list []Opportunity, opts FilterOptions) []Opportunity {
	opts = opts.withDefaults()

	out := make([]Opportunity, 0, len(list))
	for i := range list {
		o := &list[i]

		if o.PremiumRate.LessThan(*opts.MinPremiumRate) || o.PremiumRate.GreaterThan(*opts.MaxPremiumRate) {
			continue
		}
		if o.Amount.IsPositive() && o.Amount.LessThan(opts.MinAmount) {
			continue
		}
		if opts.Exchange != ExchangeAll && o.Exchange != opts.Exchange {
			continue
		}
		if opts.OnlyNoLimit && !o.NoLimit {
			continue
		}
		if o.TransferDays > opts.MaxTransferDays {
			continue
		}
		if Score(o) < opts.MinScore {
			continue
		}
		if opts.RiskLevel != RiskAll && o.RiskLevel != opts.RiskLevel {
			continue
		}

		out = append(out, *o)
	}
	return out
}

// SortKey selects the ordering of an opportunity list.
type SortKey string

const (
	SortByPremium  SortKey = "premium"  // premium descending
	SortByDiscount SortKey = "discount" // premium ascending, deepest discount first
	SortByAmount   SortKey = "amount"   // traded value descending
	SortByScore    SortKey = "score"    // score descending (default)
	SortByProfit   SortKey = "profit"   // profit potential descending
)

// Sort returns a sorted copy of the list. Ties keep their original relative
// order, so identical inputs always produce identical output.
func Sort(list []Opportunity, key SortKey) []Opportunity {
	sorted := make([]Opportunity, len(list))
	copy(sorted, list)

	switch key {
	case SortByPremium:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].PremiumRate.GreaterThan(sorted[j].PremiumRate)
		})
	case SortByDiscount:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].PremiumRate.LessThan(sorted[j].PremiumRate)
		})
	case SortByAmount:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Amount.GreaterThan(sorted[j].Amount)
		})
	case SortByProfit:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ProfitPotential.GreaterThan(sorted[j].ProfitPotential)
		})
	case SortByScore:
		fallthrough
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return Score(&sorted[i]) > Score(&sorted[j])
		})
	}
	return sorted
}
