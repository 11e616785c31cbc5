package collector

import (
	"context"
	"fmt"
	"sync"

	"PillarReport/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
// It records every call so tests can assert on fetch counts.
type MockSource struct {
	Statements map[model.StatementKind]*model.StatementBundle
	Overviews  model.Overview
	Prices     *model.PriceSeries
	// Errs makes the matching kind fail. Entries are consumed one per call
	// when FailOnce is set.
	Errs     map[model.StatementKind]error
	FailOnce bool

	mu    sync.Mutex
	calls map[string]int
}

// NewMockSource returns a MockSource loaded with three fiscal years and five
// quarters of consistent statements. Trailing sums: revenue 1000, net income
// 100, free cash flow 200; market cap 5000 and P/E 25.5.
func NewMockSource() *MockSource {
	return &MockSource{
		Statements: map[model.StatementKind]*model.StatementBundle{
			model.IncomeStatement: {
				Annual: mockPeriods(
					[]string{"2023-12-31", "2022-12-31", "2021-12-31"},
					map[string][]string{
						model.FieldTotalRevenue: {"1000", "900", "800"},
						model.FieldNetIncome:    {"100", "81", "64"},
					}),
				Quarterly: mockPeriods(
					[]string{"2024-03-31", "2023-12-31", "2023-09-30", "2023-06-30", "2023-03-31"},
					map[string][]string{
						model.FieldTotalRevenue: {"260", "250", "240", "250", "230"},
						model.FieldNetIncome:    {"26", "25", "24", "25", "23"},
					}),
			},
			model.BalanceSheet: {
				Annual: mockPeriods(
					[]string{"2023-12-31", "2022-12-31", "2021-12-31"},
					map[string][]string{
						model.FieldTotalCurrentAssets:      {"500", "450", "400"},
						model.FieldTotalCurrentLiabilities: {"250", "300", "200"},
					}),
				Quarterly: mockPeriods(
					[]string{"2024-03-31", "2023-12-31", "2023-09-30", "2023-06-30"},
					map[string][]string{
						model.FieldTotalCurrentAssets:      {"520", "500", "490", "480"},
						model.FieldTotalCurrentLiabilities: {"260", "250", "245", "240"},
					}),
			},
			model.CashFlow: {
				Annual: mockPeriods(
					[]string{"2023-12-31", "2022-12-31", "2021-12-31"},
					map[string][]string{
						model.FieldOperatingCashflow:      {"300", "280", "250"},
						model.FieldCashflowFromInvestment: {"-100", "-80", "-50"},
					}),
				Quarterly: mockPeriods(
					[]string{"2024-03-31", "2023-12-31", "2023-09-30", "2023-06-30", "2023-03-31"},
					map[string][]string{
						model.FieldOperatingCashflow:      {"80", "80", "80", "80", "90"},
						model.FieldCashflowFromInvestment: {"-30", "-30", "-30", "-30", "-10"},
					}),
			},
		},
		Overviews: model.Overview{
			model.FieldMarketCapitalization: "5000",
			model.FieldPERatio:              "25.5",
		},
	}
}

func mockPeriods(dates []string, values map[string][]string) []model.StatementPeriod {
	periods := make([]model.StatementPeriod, len(dates))
	for i, date := range dates {
		fields := map[string]string{"fiscalDateEnding": date}
		for name, vs := range values {
			fields[name] = vs[i]
		}
		periods[i] = model.StatementPeriod{FiscalDateEnding: date, Fields: fields}
	}
	return periods
}

func (m *MockSource) Name() string { return "mock" }

// Calls returns how many times ticker/kind was fetched.
func (m *MockSource) Calls(ticker string, kind model.StatementKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[callKey(ticker, kind)]
}

// TotalCalls returns the number of fetches across all tickers and kinds.
func (m *MockSource) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *MockSource) FetchStatement(_ context.Context, ticker string, kind model.StatementKind) (*model.StatementBundle, error) {
	if err := m.record(ticker, kind); err != nil {
		return nil, err
	}
	b, ok := m.Statements[kind]
	if !ok {
		return nil, &model.FetchError{Ticker: ticker, Kind: kind, Err: model.ErrSymbolNotFound}
	}
	out := *b
	out.Ticker = ticker
	out.Kind = kind
	return &out, nil
}

func (m *MockSource) FetchOverview(_ context.Context, ticker string) (model.Overview, error) {
	if err := m.record(ticker, model.OverviewKind); err != nil {
		return nil, err
	}
	if m.Overviews == nil {
		return nil, &model.FetchError{Ticker: ticker, Kind: model.OverviewKind, Err: model.ErrSymbolNotFound}
	}
	return m.Overviews, nil
}

func (m *MockSource) FetchDailyPrices(_ context.Context, ticker string) (*model.PriceSeries, error) {
	if err := m.record(ticker, model.DailyPricesKind); err != nil {
		return nil, err
	}
	if m.Prices == nil {
		return &model.PriceSeries{Symbol: ticker}, nil
	}
	return m.Prices, nil
}

func (m *MockSource) record(ticker string, kind model.StatementKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[callKey(ticker, kind)]++

	if err, ok := m.Errs[kind]; ok && err != nil {
		if m.FailOnce {
			delete(m.Errs, kind)
		}
		return err
	}
	return nil
}

func callKey(ticker string, kind model.StatementKind) string {
	return fmt.Sprintf("%s|%s", ticker, kind)
}
