package feed

import "github.com/shopspring/decimal"

// Estimator supplies the risk statistics the feed itself does not carry:
// daily volatility, tracking error and the historical percentile of the
// current premium. The heuristic implementation below is a stand-in until a
// historical-statistics collaborator exists; swap it out without touching
// the normalizer.
type Estimator interface {
	Volatility(category Category, priceChangePercent float64) float64
	TrackingError(category Category) float64
	PremiumPercentile(premiumRate decimal.Decimal) float64
}

// HeuristicEstimator derives estimates from the day's price change and the
// fund category only.
type HeuristicEstimator struct{}

// NewHeuristicEstimator creates the default estimator.
func NewHeuristicEstimator() *HeuristicEstimator {
	return &HeuristicEstimator{}
}

// Volatility scales the absolute price change by a category factor: QDII
// funds swing hardest, index trackers a little more than plain equity.
func (e *HeuristicEstimator) Volatility(category Category, priceChangePercent float64) float64 {
	abs := priceChangePercent
	if abs < 0 {
		abs = -abs
	}
	switch category {
	case CategoryQDII:
		return abs * 1.5
	case CategoryIndex:
		return abs * 1.2
	default:
		return abs
	}
}

// TrackingError returns a flat per-category estimate.
func (e *HeuristicEstimator) TrackingError(category Category) float64 {
	switch category {
	case CategoryQDII:
		return 0.6
	case CategoryIndex:
		return 0.3
	default:
		return 0.4
	}
}

var percentileBands = []struct {
	above      decimal.Decimal
	percentile float64
}{
	{decimal.NewFromFloat(2.5), 95},
	{decimal.NewFromFloat(2.0), 90},
	{decimal.NewFromFloat(1.5), 85},
	{decimal.NewFromFloat(1.0), 70},
	{decimal.Zero, 60},
	{decimal.NewFromFloat(-1.0), 40},
	{decimal.NewFromFloat(-1.5), 15},
	{decimal.NewFromFloat(-2.0), 10},
}

// PremiumPercentile buckets the current premium into a rough historical
// percentile. Deep discounts land near zero, extreme premiums near 100.
func (e *HeuristicEstimator) PremiumPercentile(premiumRate decimal.Decimal) float64 {
	for _, band := range percentileBands {
		if premiumRate.GreaterThan(band.above) {
			return band.percentile
		}
	}
	return 5
}
