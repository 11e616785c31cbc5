// Package metrics derives valuation and quality metrics from cached
// provider statements.
package metrics

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"PillarReport/internal/calculator"
	"PillarReport/internal/model"
)

// Statements is the cached view of the provider the engine reads from.
type Statements interface {
	Statement(ctx context.Context, ticker string, kind model.StatementKind) (*model.StatementBundle, error)
	Overview(ctx context.Context, ticker string) (model.Overview, error)
	Prices(ctx context.Context, ticker string) (*model.PriceSeries, error)
}

// Engine computes metric series and point-in-time ratios. Results are
// computed fresh on every call; only the underlying statements are cached.
type Engine struct {
	statements Statements
}

// NewEngine creates an Engine reading through statements.
func NewEngine(statements Statements) *Engine {
	return &Engine{statements: statements}
}

// Revenues returns totalRevenue per annual period plus TTM.
func (e *Engine) Revenues(ctx context.Context, ticker string) (model.AmountSeries, error) {
	return e.series(ctx, ticker, model.IncomeStatement, calculator.Field(model.FieldTotalRevenue))
}

// Profits returns netIncome per annual period plus TTM.
func (e *Engine) Profits(ctx context.Context, ticker string) (model.AmountSeries, error) {
	return e.series(ctx, ticker, model.IncomeStatement, calculator.Field(model.FieldNetIncome))
}

// CurrentAssets returns totalCurrentAssets per annual period plus TTM.
func (e *Engine) CurrentAssets(ctx context.Context, ticker string) (model.AmountSeries, error) {
	return e.series(ctx, ticker, model.BalanceSheet, calculator.Field(model.FieldTotalCurrentAssets))
}

// CurrentLiabilities returns totalCurrentLiabilities per annual period plus TTM.
func (e *Engine) CurrentLiabilities(ctx context.Context, ticker string) (model.AmountSeries, error) {
	return e.series(ctx, ticker, model.BalanceSheet, calculator.Field(model.FieldTotalCurrentLiabilities))
}

// FreeCashFlows returns operatingCashflow + cashflowFromInvestment per
// annual period plus TTM.
func (e *Engine) FreeCashFlows(ctx context.Context, ticker string) (model.AmountSeries, error) {
	return e.series(ctx, ticker, model.CashFlow,
		calculator.SumFields(model.FieldOperatingCashflow, model.FieldCashflowFromInvestment))
}

// NetProfitMargins returns profits/revenues for every revenue key. Profits
// must carry every revenue key.
func (e *Engine) NetProfitMargins(ctx context.Context, ticker string) (model.RatioSeries, error) {
	revenues, err := e.Revenues(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("revenues: %w", err)
	}
	profits, err := e.Profits(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("profits: %w", err)
	}
	return ratioOver(ticker, "net_profit_margins", profits, revenues)
}

// AssetLiabilityRatios returns currentAssets/currentLiabilities for every
// asset key.
func (e *Engine) AssetLiabilityRatios(ctx context.Context, ticker string) (model.RatioSeries, error) {
	assets, err := e.CurrentAssets(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("current assets: %w", err)
	}
	liabilities, err := e.CurrentLiabilities(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("current liabilities: %w", err)
	}
	return calculator.CalculateRatioSeries(ticker, "asset_liability_ratio", assets, liabilities)
}

// MarketCap parses the overview MarketCapitalization as an integer.
func (e *Engine) MarketCap(ctx context.Context, ticker string) (int64, error) {
	raw, err := e.overviewField(ctx, ticker, model.FieldMarketCapitalization)
	if err != nil {
		return 0, err
	}
	v, err := calculator.ParseAmount(raw)
	if err != nil {
		return 0, overviewParseError(ticker, model.FieldMarketCapitalization, raw, err)
	}
	return v, nil
}

// CurrentPE parses the overview PERatio. Provider placeholders yield a
// ParseError wrapping model.ErrUnavailable.
func (e *Engine) CurrentPE(ctx context.Context, ticker string) (float64, error) {
	raw, err := e.overviewField(ctx, ticker, model.FieldPERatio)
	if err != nil {
		return 0, err
	}
	if isPlaceholder(raw) {
		return 0, overviewParseError(ticker, model.FieldPERatio, raw, model.ErrUnavailable)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, overviewParseError(ticker, model.FieldPERatio, raw, err)
	}
	return v, nil
}

// CurrentPriceToFCF returns market cap over trailing free cash flow.
func (e *Engine) CurrentPriceToFCF(ctx context.Context, ticker string) (float64, error) {
	marketCap, err := e.MarketCap(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("market cap: %w", err)
	}
	fcf, err := e.FreeCashFlows(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("free cash flows: %w", err)
	}
	r, err := calculator.Divide(float64(marketCap), float64(fcf[model.TTMKey]))
	if err != nil {
		return 0, &model.DivisionError{Ticker: ticker, Metric: "cur_pfcf", Key: model.TTMKey}
	}
	return r, nil
}

// Prices passes the daily price history through unprocessed.
func (e *Engine) Prices(ctx context.Context, ticker string) (*model.PriceSeries, error) {
	return e.statements.Prices(ctx, ticker)
}

// DilutedEPS is not derived.
func (e *Engine) DilutedEPS(_ context.Context, ticker string) (float64, error) {
	return 0, fmt.Errorf("%s diluted eps: %w", ticker, model.ErrNotImplemented)
}

// DilutedShares is not derived.
func (e *Engine) DilutedShares(_ context.Context, ticker string) (int64, error) {
	return 0, fmt.Errorf("%s diluted shares: %w", ticker, model.ErrNotImplemented)
}

func (e *Engine) series(ctx context.Context, ticker string, kind model.StatementKind, value calculator.ValueFunc) (model.AmountSeries, error) {
	bundle, err := e.statements.Statement(ctx, ticker, kind)
	if err != nil {
		return nil, err
	}
	return calculator.CalculateSeries(bundle, value)
}

func (e *Engine) overviewField(ctx context.Context, ticker, field string) (string, error) {
	overview, err := e.statements.Overview(ctx, ticker)
	if err != nil {
		return "", err
	}
	raw, ok := overview[field]
	if !ok {
		return "", overviewParseError(ticker, field, "", model.ErrFieldMissing)
	}
	return raw, nil
}

// ratioOver divides num by den for every key of den, so the denominator's
// key set drives the result.
func ratioOver(ticker, metric string, num, den model.AmountSeries) (model.RatioSeries, error) {
	for key := range den {
		if _, ok := num[key]; !ok {
			return nil, &model.KeyMismatchError{Ticker: ticker, Metric: metric, Key: key}
		}
	}
	restricted := make(model.AmountSeries, len(den))
	for key := range den {
		restricted[key] = num[key]
	}
	return calculator.CalculateRatioSeries(ticker, metric, restricted, den)
}

func overviewParseError(ticker, field, raw string, err error) error {
	return &model.ParseError{Ticker: ticker, Kind: model.OverviewKind, Field: field, Value: raw, Err: err}
}

func isPlaceholder(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "", "None", "-", "null":
		return true
	}
	return false
}
