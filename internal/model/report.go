package model

// Row names of the five-year table, in render order.
const (
	RowRevenues            = "revenues"
	RowNetProfits          = "net_profits"
	RowNetProfitMargins    = "net_profit_margins"
	RowAssetLiabilityRatio = "asset_liability_ratio"
)

// FiveYearRows is the fixed row order of the five-year table.
var FiveYearRows = []string{RowRevenues, RowNetProfits, RowNetProfitMargins, RowAssetLiabilityRatio}

// Column names of the snapshot table.
const (
	ColMarketCap  = "market_cap"
	ColCurrentPE  = "cur_dilluted_pe"
	ColPriceToFCF = "cur_pfcf"
)

// SnapshotColumns is the fixed column order of the snapshot table.
var SnapshotColumns = []string{ColMarketCap, ColCurrentPE, ColPriceToFCF}

// Snapshot is the single-row current metrics table.
type Snapshot struct {
	Date       string
	MarketCap  int64
	PE         *float64 // nil when the provider reports no P/E
	PriceToFCF float64
}

// FiveYearTable is row-per-metric with ordered period columns.
type FiveYearTable struct {
	Columns []string
	Rows    map[string]map[string]float64
}

// Value returns the cell for a row and column, if present.
func (t *FiveYearTable) Value(row, col string) (float64, bool) {
	r, ok := t.Rows[row]
	if !ok {
		return 0, false
	}
	v, ok := r[col]
	return v, ok
}

// Report is everything rendered for one ticker.
type Report struct {
	Ticker   string
	Snapshot Snapshot
	FiveYear FiveYearTable
}
