package feed

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lofmon/internal/domain/opportunity"
)

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func sampleRecord() Record {
	return Record{
		FundID:        "161725",
		FundName:      "招商中证白酒",
		Price:         "1.250",
		ChangePercent: "1.50%",
		EstimateValue: "1.220",
		DiscountRate:  "2.46%",
		StockCode:     "sz161725",
		Volume:        "125,000",
		Amount:        "65,000,000",
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.25", "1.25"},
		{"2.46%", "2.46"},
		{"-0.85%", "-0.85"},
		{"65,000,000", "65000000"},
		{" 1.5 ", "1.5"},
		{"", "0"},
		{"-", "0"},
		{"N/A", "0"},
		{"abc", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseDecimal(tt.in)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"parseDecimal(%q) = %s, want %s", tt.in, got, tt.want)
		})
	}
}

func TestParseExchange(t *testing.T) {
	assert.Equal(t, opportunity.ExchangeSH, parseExchange("sh501018"))
	assert.Equal(t, opportunity.ExchangeSH, parseExchange("SH501018"))
	assert.Equal(t, opportunity.ExchangeSZ, parseExchange("sz161725"))
	assert.Equal(t, opportunity.ExchangeSZ, parseExchange("161725"))
	assert.Equal(t, opportunity.ExchangeSZ, parseExchange(""))
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer(nil, nil)
	refTime := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	n.now = func() time.Time { return refTime }

	o := n.Normalize(sampleRecord())

	assert.Equal(t, "161725", o.Code)
	assert.Equal(t, "招商中证白酒", o.Name)
	assert.Equal(t, opportunity.ExchangeSZ, o.Exchange)
	assert.True(t, o.Price.Equal(dec(1.25)))
	assert.InDelta(t, 1.5, o.PriceChangePercent, 1e-9)
	assert.True(t, o.IOPV.Equal(dec(1.22)))
	assert.True(t, o.PremiumRate.Equal(dec(2.46)))
	assert.True(t, o.Amount.Equal(decimal.NewFromInt(65_000_000)))

	// Equity fund: T+2, base fee schedule
	assert.Equal(t, 2, o.TransferDays)
	assert.Equal(t, "T+2", o.ArrivalDays)
	assert.Equal(t, refTime.AddDate(0, 0, 2), o.EstimatedArrival)
	assert.True(t, o.Fees.Purchase.Equal(dec(0.12)))
	assert.True(t, o.Fees.Redeem.Equal(dec(0.05)))
	assert.True(t, o.Fees.Total.Equal(dec(0.23)), "got %s", o.Fees.Total)

	// 65M turnover: liquid enough to carry no subscription cap
	assert.Nil(t, o.MinPurchaseAmount)
	assert.True(t, o.NoLimit)

	// Derived fields are populated
	assert.True(t, o.ProfitPotential.Equal(dec(2.23)), "got %s", o.ProfitPotential)
	assert.Equal(t, opportunity.RiskLow, o.RiskLevel)
	assert.InDelta(t, 1.5, o.Volatility, 1e-9)
	assert.InDelta(t, 90.0, o.PremiumPercentile, 1e-9)
}

func TestNormalize_QDII(t *testing.T) {
	n := NewNormalizer(nil, nil)

	rec := sampleRecord()
	rec.FundName = "华宝油气"
	o := n.Normalize(rec)

	assert.Equal(t, 3, o.TransferDays)
	assert.Equal(t, "T+3", o.ArrivalDays)
	assert.True(t, o.Fees.Purchase.Equal(dec(0.15)))
	assert.True(t, o.Fees.Redeem.Equal(dec(0.10)))
	assert.True(t, o.Fees.Total.Equal(dec(0.31)), "got %s", o.Fees.Total)
	assert.InDelta(t, 2.25, o.Volatility, 1e-9) // 1.5 change * 1.5 QDII factor
	assert.InDelta(t, 0.6, o.TrackingError, 1e-9)
}

func TestNormalize_ZeroSubscriptionCategories(t *testing.T) {
	n := NewNormalizer(nil, nil)

	for _, name := range []string{"华宝现金添益货币", "易方达中债新综指"} {
		rec := sampleRecord()
		rec.FundName = name
		o := n.Normalize(rec)

		assert.True(t, o.Fees.Purchase.IsZero(), "%s purchase fee", name)
		assert.True(t, o.Fees.Redeem.IsZero(), "%s redeem fee", name)
		assert.True(t, o.Fees.Total.Equal(dec(0.06)), "%s total, got %s", name, o.Fees.Total)
	}
}

func TestEstimateLimit(t *testing.T) {
	tests := []struct {
		amount int64
		want   int64 // 0 means nil, no cap
	}{
		{200_000_000, 0},
		{50_000_001, 0},
		{50_000_000, 500},
		{35_000_000, 200},
		{29_000_000, 100},
		{10_000_000, 100},
		{9_000_000, 50},
		{0, 50},
	}

	for _, tt := range tests {
		got := estimateLimit(decimal.NewFromInt(tt.amount))
		if tt.want == 0 {
			assert.Nil(t, got, "amount %d", tt.amount)
		} else {
			require.NotNil(t, got, "amount %d", tt.amount)
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)),
				"amount %d: got %s, want %d", tt.amount, got, tt.want)
		}
	}
}

func TestTransformList(t *testing.T) {
	n := NewNormalizer(nil, nil)

	strong := sampleRecord() // premium 2.46, passes everything

	weak := sampleRecord()
	weak.FundID = "160416"
	weak.DiscountRate = "0.40%" // below every threshold

	noPrice := sampleRecord()
	noPrice.FundID = "501018"
	noPrice.Price = "0"

	noIOPV := sampleRecord()
	noIOPV.FundID = "163402"
	noIOPV.EstimateValue = "-"

	got := n.TransformList([]Record{strong, weak, noPrice, noIOPV})

	require.Len(t, got, 1)
	assert.Equal(t, "161725", got[0].Code)
}

func TestTransformList_InclusionOverride(t *testing.T) {
	n := NewNormalizer(nil, nil)

	// A |premium| >= 1.0% keeps the record visible in the list even when the
	// strict eligibility verdict rejects it; here via thin liquidity, the one
	// rejection reason a raw feed record can produce.
	thin := sampleRecord()
	thin.FundID = "160632"
	thin.DiscountRate = "1.10%"
	thin.Amount = "5,000,000" // Validate: thin liquidity, premium < 1.5 -> reject

	deepDiscount := sampleRecord()
	deepDiscount.FundID = "162411"
	deepDiscount.DiscountRate = "-1.30%"
	deepDiscount.Amount = "5,000,000"

	got := n.TransformList([]Record{thin, deepDiscount})

	require.Len(t, got, 2)
	assert.Equal(t, "160632", got[0].Code)
	assert.Equal(t, "162411", got[1].Code)
}

func TestKeepInList_SuspendedWithStrongSignalStaysVisible(t *testing.T) {
	n := NewNormalizer(nil, nil)

	o := n.Normalize(sampleRecord())
	o.PurchaseSuspended = true

	// Strict eligibility always rejects suspended funds, but the list keeps
	// any |premium| >= 1.0% so the restriction itself is visible.
	require.False(t, opportunity.Validate(&o))
	assert.True(t, keepInList(&o))

	o.RedeemSuspended = true
	o.PurchaseSuspended = false
	assert.True(t, keepInList(&o))

	// Below the inclusion floor the suspension rejection sticks
	o.PremiumRate = dec(0.9)
	assert.False(t, keepInList(&o))
}

func TestTransformList_EmptyInput(t *testing.T) {
	n := NewNormalizer(nil, nil)

	got := n.TransformList(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
