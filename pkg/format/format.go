package format

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	hundredMillion = decimal.NewFromInt(100_000_000)
	tenThousand    = decimal.NewFromInt(10_000)
)

// Amount renders a traded value using Chinese market units (亿 / 万).
func Amount(amount decimal.Decimal) string {
	if amount.LessThanOrEqual(decimal.Zero) {
		return "--"
	}
	if amount.GreaterThanOrEqual(hundredMillion) {
		return amount.Div(hundredMillion).StringFixed(2) + "亿"
	}
	if amount.GreaterThanOrEqual(tenThousand) {
		return amount.Div(tenThousand).StringFixed(0) + "万"
	}
	return amount.StringFixed(0)
}

// Bytes renders a byte count in human readable form.
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Age renders an elapsed duration in human readable form ("3 minutes ago").
func Age(age time.Duration) string {
	now := time.Now()
	return humanize.RelTime(now.Add(-age), now, "ago", "from now")
}
