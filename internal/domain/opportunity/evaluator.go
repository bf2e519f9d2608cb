package opportunity

import (
	"github.com/shopspring/decimal"
)

// Practitioner thresholds for LOF arbitrage. Amounts are CNY, rates percent.
var (
	amountFloor = decimal.NewFromInt(30_000_000)  // below this liquidity is suspect
	amountSafe  = decimal.NewFromInt(50_000_000)  // comfortable daily turnover
	amountDeep  = decimal.NewFromInt(100_000_000) // deep book

	feeTight = decimal.NewFromFloat(0.3)
	feeFair  = decimal.NewFromFloat(0.5)
	feeCap   = decimal.NewFromFloat(0.6)

	premiumExceptional = decimal.NewFromFloat(3.0)
	premiumStrong      = decimal.NewFromFloat(2.0)
	premiumSolid       = decimal.NewFromFloat(1.5)
	premiumMin         = decimal.NewFromFloat(1.0)
	discountMin        = decimal.NewFromFloat(-0.8)
)

const (
	transferAcceptable = 2 // T+1/T+2 workable
	transferMax        = 3 // beyond T+3 the window usually closes

	volatilityComfort = 0.8
	volatilityMax     = 1.2
	trackingErrorMax  = 0.5
)

// ProfitPotential estimates the per-cycle margin: the absolute premium or
// discount less the round-trip fee total.
func ProfitPotential(premiumRate decimal.Decimal, fees FeeStructure) decimal.Decimal {
	return premiumRate.Abs().Sub(fees.Total)
}

// Score rates an opportunity 0-100 from five weighted factors: premium
// magnitude (40), traded amount (20), transfer speed (15), fee total (15)
// and volatility (10). Deterministic for identical inputs.
func Score(o *Opportunity) int {
	score := 0

	premiumAbs := o.PremiumRate.Abs()
	switch {
	case premiumAbs.GreaterThanOrEqual(premiumExceptional):
		score += 40
	case premiumAbs.GreaterThanOrEqual(premiumStrong):
		score += 30
	case premiumAbs.GreaterThanOrEqual(premiumSolid):
		score += 20
	default:
		score += 10
	}

	switch {
	case o.Amount.GreaterThanOrEqual(amountDeep):
		score += 20
	case o.Amount.GreaterThanOrEqual(amountSafe):
		score += 15
	case o.Amount.GreaterThanOrEqual(amountFloor):
		score += 10
	}

	switch o.TransferDays {
	case 1:
		score += 15
	case 2:
		score += 10
	case 3:
		score += 5
	}

	switch {
	case o.Fees.Total.LessThanOrEqual(feeTight):
		score += 15
	case o.Fees.Total.LessThanOrEqual(feeFair):
		score += 10
	case o.Fees.Total.LessThanOrEqual(feeCap):
		score += 5
	}

	switch {
	case o.Volatility <= volatilityComfort:
		score += 10
	case o.Volatility <= volatilityMax:
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

// AssessRisk classifies execution risk by accumulating penalty points:
// thin liquidity +2, slow transfer +2, high volatility +1, high tracking
// error +1, any subscription/redemption restriction +2.
func AssessRisk(o *Opportunity) RiskLevel {
	risk := 0

	if o.Amount.IsPositive() && o.Amount.LessThan(amountFloor) {
		risk += 2
	}
	if o.TransferDays > transferAcceptable {
		risk += 2
	}
	if o.Volatility > volatilityMax {
		risk++
	}
	if o.TrackingError > trackingErrorMax {
		risk++
	}
	if o.Suspended() {
		risk += 2
	}

	switch {
	case risk <= 1:
		return RiskLow
	case risk <= 3:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Validate is the base eligibility verdict for an opportunity. Suspended
// funds are always rejected, as are funds below the minimum signal
// (premium >= 1.0% or discount <= -0.8%). A strong signal (|premium| >= 2.0%)
// passes unconditionally; weaker signals must additionally clear liquidity,
// transfer-time and cost checks, each with its own premium escape hatch.
//
// A second, looser inclusion stage exists at list-building time: see
// feed.Normalizer.TransformList, which keeps any |premium| >= 1.0% record
// regardless of this verdict.
func Validate(o *Opportunity) bool {
	if o.Suspended() {
		return false
	}

	premiumAbs := o.PremiumRate.Abs()
	isPremiumSignal := o.PremiumRate.GreaterThanOrEqual(premiumMin)
	isDiscountSignal := o.PremiumRate.LessThanOrEqual(discountMin)
	if !isPremiumSignal && !isDiscountSignal {
		return false
	}

	if premiumAbs.GreaterThanOrEqual(premiumStrong) {
		return true
	}

	if o.Amount.IsPositive() && o.Amount.LessThan(amountFloor) {
		if premiumAbs.LessThan(premiumSolid) {
			return false
		}
	}

	if o.TransferDays > transferMax {
		if premiumAbs.LessThan(premiumStrong) {
			return false
		}
	}

	if o.Fees.Total.GreaterThan(feeCap) {
		profit := ProfitPotential(o.PremiumRate, o.Fees)
		if profit.LessThanOrEqual(decimal.Zero) && premiumAbs.LessThan(premiumStrong) {
			return false
		}
	}

	return true
}

// Grade is a coarse quality band derived from the score.
type Grade string

const (
	GradeExcellent Grade = "excellent" // score >= 80
	GradeGood      Grade = "good"      // score >= 60
	GradeFair      Grade = "fair"      // score >= 40
	GradeRisky     Grade = "risky"
)

// GradeFor maps a score to its quality band.
func GradeFor(score int) Grade {
	switch {
	case score >= 80:
		return GradeExcellent
	case score >= 60:
		return GradeGood
	case score >= 40:
		return GradeFair
	default:
		return GradeRisky
	}
}
