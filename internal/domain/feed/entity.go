package feed

// Record is one fund row as returned by the market data provider. Numeric
// fields arrive string-encoded and may be malformed; the normalizer parses
// them defensively.
type Record struct {
	FundID        string `json:"fund_id"`
	FundName      string `json:"fund_nm"`
	Price         string `json:"price"`
	ChangePercent string `json:"increase_rt"`
	EstimateValue string `json:"estimate_value"` // IOPV
	DiscountRate  string `json:"discount_rt"`    // signed premium/discount percent
	StockCode     string `json:"stock_cd"`       // venue-prefixed instrument code
	Volume        string `json:"volume"`
	Amount        string `json:"amount"`
	FundCompany   string `json:"fund_company"`
	IndexName     string `json:"index_nm"`
	NavDate       string `json:"nav_dt"`
	LastTime      string `json:"last_time"`
}

// Category is the fund class tag produced by a Classifier. The rest of the
// pipeline depends only on this tag, never on fund-name matching.
type Category string

const (
	CategoryQDII        Category = "qdii" // overseas / commodity funds, slower settlement
	CategoryMoneyMarket Category = "money_market"
	CategoryBond        Category = "bond"
	CategoryIndex       Category = "index"
	CategoryEquity      Category = "equity"
)

// String returns string representation
func (c Category) String() string {
	return string(c)
}
