package model

// StatementKind names a provider statement. The values double as the
// Alpha Vantage "function" query parameter.
type StatementKind string

const (
	IncomeStatement StatementKind = "INCOME_STATEMENT"
	BalanceSheet    StatementKind = "BALANCE_SHEET"
	CashFlow        StatementKind = "CASH_FLOW"

	// Pseudo kinds used for cache keys and error context.
	OverviewKind    StatementKind = "OVERVIEW"
	DailyPricesKind StatementKind = "TIME_SERIES_DAILY"
)

// StatementKinds lists the real statement kinds in fetch order.
var StatementKinds = []StatementKind{IncomeStatement, BalanceSheet, CashFlow}

// Statement field names read by the metrics engine.
const (
	FieldTotalRevenue            = "totalRevenue"
	FieldNetIncome               = "netIncome"
	FieldOperatingCashflow       = "operatingCashflow"
	FieldCashflowFromInvestment  = "cashflowFromInvestment"
	FieldTotalCurrentAssets      = "totalCurrentAssets"
	FieldTotalCurrentLiabilities = "totalCurrentLiabilities"
)

// Overview field names.
const (
	FieldMarketCapitalization = "MarketCapitalization"
	FieldPERatio              = "PERatio"
)

// StatementPeriod is one reporting period of a statement.
type StatementPeriod struct {
	FiscalDateEnding string
	Fields           map[string]string
}

// Field returns the raw provider value of a named field.
func (p StatementPeriod) Field(name string) (string, bool) {
	v, ok := p.Fields[name]
	return v, ok
}

// StatementBundle holds the annual and quarterly periods of one statement
// kind for one ticker, in the order the source returned them.
// Cached bundles are shared and must not be modified.
type StatementBundle struct {
	Ticker    string
	Kind      StatementKind
	Annual    []StatementPeriod
	Quarterly []StatementPeriod
}

// Overview is the flat company overview as returned by the provider.
type Overview map[string]string
