package opportunity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Exchange identifies the listing venue of a fund.
type Exchange string

const (
	ExchangeSZ Exchange = "SZ"
	ExchangeSH Exchange = "SH"
)

// Valid checks if the exchange code is known.
func (e Exchange) Valid() bool {
	return e == ExchangeSZ || e == ExchangeSH
}

// String returns string representation
func (e Exchange) String() string {
	return string(e)
}

// RiskLevel classifies an opportunity's execution risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// String returns string representation
func (r RiskLevel) String() string {
	return string(r)
}

// FeeStructure holds the round-trip cost of an arbitrage cycle, in percent.
// Total counts the on-exchange trading commission twice: once to buy in and
// once to sell out.
type FeeStructure struct {
	Purchase decimal.Decimal `json:"purchase"`
	Redeem   decimal.Decimal `json:"redeem"`
	Trading  decimal.Decimal `json:"trading"`
	Total    decimal.Decimal `json:"total"`
}

// NewFeeStructure builds a fee structure with the derived round-trip total.
func NewFeeStructure(purchase, redeem, trading decimal.Decimal) FeeStructure {
	return FeeStructure{
		Purchase: purchase,
		Redeem:   redeem,
		Trading:  trading,
		Total:    purchase.Add(redeem).Add(trading.Mul(decimal.NewFromInt(2))),
	}
}

// Opportunity is an immutable per-fund snapshot produced on every feed
// refresh. PremiumRate is signed: positive means the exchange price trades
// above IOPV, negative means a discount.
type Opportunity struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Exchange Exchange `json:"exchange"`

	Price              decimal.Decimal `json:"price"`
	PriceChangePercent float64         `json:"priceChangePercent"`
	IOPV               decimal.Decimal `json:"iopv"`
	PremiumRate        decimal.Decimal `json:"premiumRate"`

	Volume decimal.Decimal `json:"volume"`
	Amount decimal.Decimal `json:"amount"`

	Fees FeeStructure `json:"fees"`

	TransferDays     int       `json:"transferDays"`
	ArrivalDays      string    `json:"arrivalDays"` // "T+N"
	EstimatedArrival time.Time `json:"estimatedArrival"`

	// Heuristic estimates, see feed.Estimator.
	Volatility        float64 `json:"volatility"`
	TrackingError     float64 `json:"trackingError"`
	PremiumPercentile float64 `json:"premiumPercentile"`

	ProfitPotential decimal.Decimal `json:"profitPotential"`
	RiskLevel       RiskLevel       `json:"riskLevel"`

	PurchaseSuspended bool             `json:"purchaseSuspended"`
	RedeemSuspended   bool             `json:"redeemSuspended"`
	MinPurchaseAmount *decimal.Decimal `json:"minPurchaseAmount,omitempty"`
	NoLimit           bool             `json:"noLimit"`
}

// IsDiscount reports whether the fund trades below its IOPV.
func (o *Opportunity) IsDiscount() bool {
	return o.PremiumRate.IsNegative()
}

// Suspended reports whether either leg of the arbitrage cycle is blocked.
func (o *Opportunity) Suspended() bool {
	return o.PurchaseSuspended || o.RedeemSuspended
}
