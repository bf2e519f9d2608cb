package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lofmon/internal/domain/opportunity"
)

// feePolicy holds per-category fee rates in percent.
type feePolicy struct {
	purchase decimal.Decimal
	redeem   decimal.Decimal
	trading  decimal.Decimal
}

// Default fee rates; real rates should eventually come from the provider.
var (
	baseFees = feePolicy{
		purchase: decimal.NewFromFloat(0.12),
		redeem:   decimal.NewFromFloat(0.05),
		trading:  decimal.NewFromFloat(0.03),
	}
	qdiiFees = feePolicy{
		purchase: decimal.NewFromFloat(0.15),
		redeem:   decimal.NewFromFloat(0.10),
		trading:  decimal.NewFromFloat(0.03),
	}
	zeroSubscriptionFees = feePolicy{
		purchase: decimal.Zero,
		redeem:   decimal.Zero,
		trading:  decimal.NewFromFloat(0.03),
	}
)

func feesFor(category Category) opportunity.FeeStructure {
	var p feePolicy
	switch category {
	case CategoryQDII:
		p = qdiiFees
	case CategoryMoneyMarket, CategoryBond:
		p = zeroSubscriptionFees
	default:
		p = baseFees
	}
	return opportunity.NewFeeStructure(p.purchase, p.redeem, p.trading)
}

// transferDaysFor returns the settlement lag in days: T+2 by default,
// T+3 for QDII-class funds settling through overseas markets.
func transferDaysFor(category Category) int {
	if category == CategoryQDII {
		return 3
	}
	return 2
}

// Purchase limit estimation bands, keyed by traded amount.
var (
	limitNoneAbove = decimal.NewFromInt(50_000_000)
	limitTiny      = decimal.NewFromInt(10_000_000)
	limitSmall     = decimal.NewFromInt(30_000_000)
)

// estimateLimit guesses the off-exchange subscription cap (in 10k CNY) from
// traded value. Liquid funds rarely impose one.
func estimateLimit(amount decimal.Decimal) *decimal.Decimal {
	if amount.GreaterThan(limitNoneAbove) {
		return nil
	}
	var limit int64
	switch {
	case amount.LessThan(limitTiny):
		limit = 50
	case amount.LessThan(limitSmall):
		limit = 100
	case amount.LessThan(limitNoneAbove):
		limit = 200
	default:
		limit = 500
	}
	d := decimal.NewFromInt(limit)
	return &d
}

// Normalizer converts raw provider records into scored opportunity
// snapshots. It is a pure transformation: no I/O, no retained state beyond
// its policy collaborators.
type Normalizer struct {
	classifier Classifier
	estimator  Estimator
	now        func() time.Time
}

// NewNormalizer constructs a normalizer. Nil collaborators fall back to the
// keyword classifier and the heuristic estimator.
func NewNormalizer(classifier Classifier, estimator Estimator) *Normalizer {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	if estimator == nil {
		estimator = NewHeuristicEstimator()
	}
	return &Normalizer{
		classifier: classifier,
		estimator:  estimator,
		now:        time.Now,
	}
}

// parseDecimal parses a provider numeric string, tolerating percent signs
// and thousands separators. Malformed input reads as zero.
func parseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseExchange derives the venue from the instrument code prefix. Only a
// case-insensitive "sh" prefix maps to Shanghai; everything else is Shenzhen.
func parseExchange(stockCode string) opportunity.Exchange {
	if strings.HasPrefix(strings.ToUpper(stockCode), "SH") {
		return opportunity.ExchangeSH
	}
	return opportunity.ExchangeSZ
}

// Normalize converts one raw record into a fully derived Opportunity.
func (n *Normalizer) Normalize(rec Record) opportunity.Opportunity {
	price := parseDecimal(rec.Price)
	changePct, _ := parseDecimal(rec.ChangePercent).Float64()
	iopv := parseDecimal(rec.EstimateValue)
	premiumRate := parseDecimal(rec.DiscountRate)
	volume := parseDecimal(rec.Volume)
	amount := parseDecimal(rec.Amount)

	category := n.classifier.Classify(rec.FundName)
	transferDays := transferDaysFor(category)
	arrival := n.now().AddDate(0, 0, transferDays)
	fees := feesFor(category)
	limit := estimateLimit(amount)

	o := opportunity.Opportunity{
		Code:               rec.FundID,
		Name:               rec.FundName,
		Exchange:           parseExchange(rec.StockCode),
		Price:              price,
		PriceChangePercent: changePct,
		IOPV:               iopv,
		PremiumRate:        premiumRate,
		Volume:             volume,
		Amount:             amount,
		Fees:               fees,
		TransferDays:       transferDays,
		ArrivalDays:        fmt.Sprintf("T+%d", transferDays),
		EstimatedArrival:   arrival,
		Volatility:         n.estimator.Volatility(category, changePct),
		TrackingError:      n.estimator.TrackingError(category),
		PremiumPercentile:  n.estimator.PremiumPercentile(premiumRate),
		MinPurchaseAmount:  limit,
		NoLimit:            limit == nil,
	}

	o.ProfitPotential = opportunity.ProfitPotential(o.PremiumRate, o.Fees)
	o.RiskLevel = opportunity.AssessRisk(&o)
	return o
}

// TransformList normalizes a batch and applies the list-building inclusion
// policy: records with unusable prices are dropped, any |premium| >= 1.0%
// stays regardless of the base eligibility verdict (strong signals are shown
// even when secondary checks fail), and everything else must pass
// opportunity.Validate.
func (n *Normalizer) TransformList(records []Record) []opportunity.Opportunity {
	out := make([]opportunity.Opportunity, 0, len(records))
	for _, rec := range records {
		o := n.Normalize(rec)
		if keepInList(&o) {
			out = append(out, o)
		}
	}
	return out
}

// keepInList is the list-stage inclusion policy for one normalized
// opportunity. Unusable prices drop; any |premium| >= 1.0% stays, even when
// the strict eligibility verdict rejects it (suspension included); the rest
// must pass opportunity.Validate.
func keepInList(o *opportunity.Opportunity) bool {
	if !o.Price.IsPositive() || !o.IOPV.IsPositive() {
		return false
	}
	if o.PremiumRate.Abs().GreaterThanOrEqual(inclusionFloor) {
		return true
	}
	return opportunity.Validate(o)
}

// inclusionFloor is the loose list-stage threshold, below the strict
// eligibility minimums on purpose.
var inclusionFloor = decimal.NewFromFloat(1.0)
