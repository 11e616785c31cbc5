// Package report assembles per-ticker fundamentals reports and writes them
// as xlsx workbooks.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"PillarReport/internal/collector"
	"PillarReport/internal/model"
)

// Metrics is the subset of the metrics engine a report needs.
type Metrics interface {
	Revenues(ctx context.Context, ticker string) (model.AmountSeries, error)
	Profits(ctx context.Context, ticker string) (model.AmountSeries, error)
	NetProfitMargins(ctx context.Context, ticker string) (model.RatioSeries, error)
	AssetLiabilityRatios(ctx context.Context, ticker string) (model.RatioSeries, error)
	MarketCap(ctx context.Context, ticker string) (int64, error)
	CurrentPE(ctx context.Context, ticker string) (float64, error)
	CurrentPriceToFCF(ctx context.Context, ticker string) (float64, error)
}

const snapshotDateLayout = "2006-01-02"

// Assembler builds the snapshot and five-year tables for a ticker.
type Assembler struct {
	Now func() time.Time
	log zerolog.Logger
}

// NewAssembler creates an Assembler using the wall clock.
func NewAssembler(log zerolog.Logger) *Assembler {
	return &Assembler{
		Now: time.Now,
		log: log.With().Str("component", "assembler").Logger(),
	}
}

// Build computes every table of the report. Any metric error fails the
// ticker except an unavailable P/E, which leaves that cell empty.
func (a *Assembler) Build(ctx context.Context, metrics Metrics, ticker string) (*model.Report, error) {
	t := collector.NormalizeTicker(ticker)
	if t == "" {
		return nil, model.ErrEmptyTicker
	}

	snapshot, err := a.snapshot(ctx, metrics, t)
	if err != nil {
		return nil, err
	}
	fiveYear, err := fiveYearTable(ctx, metrics, t)
	if err != nil {
		return nil, err
	}
	return &model.Report{Ticker: t, Snapshot: *snapshot, FiveYear: *fiveYear}, nil
}

func (a *Assembler) snapshot(ctx context.Context, metrics Metrics, ticker string) (*model.Snapshot, error) {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	s := &model.Snapshot{Date: now().Format(snapshotDateLayout)}

	var err error
	if s.MarketCap, err = metrics.MarketCap(ctx, ticker); err != nil {
		return nil, fmt.Errorf("market cap: %w", err)
	}
	pe, err := metrics.CurrentPE(ctx, ticker)
	switch {
	case errors.Is(err, model.ErrUnavailable):
		a.log.Warn().Str("ticker", ticker).Err(err).Msg("p/e unavailable, leaving cell empty")
	case err != nil:
		return nil, fmt.Errorf("current p/e: %w", err)
	default:
		s.PE = &pe
	}
	if s.PriceToFCF, err = metrics.CurrentPriceToFCF(ctx, ticker); err != nil {
		return nil, fmt.Errorf("price to fcf: %w", err)
	}
	return s, nil
}

func fiveYearTable(ctx context.Context, metrics Metrics, ticker string) (*model.FiveYearTable, error) {
	revenues, err := metrics.Revenues(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("revenues: %w", err)
	}
	profits, err := metrics.Profits(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("profits: %w", err)
	}
	margins, err := metrics.NetProfitMargins(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("net profit margins: %w", err)
	}
	assetRatios, err := metrics.AssetLiabilityRatios(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("asset liability ratios: %w", err)
	}
	columns, err := OrderColumns(revenues)
	if err != nil {
		return nil, err
	}

	return &model.FiveYearTable{
		Columns: columns,
		Rows: map[string]map[string]float64{
			model.RowRevenues:            amounts(revenues),
			model.RowNetProfits:          amounts(profits),
			model.RowNetProfitMargins:    map[string]float64(margins),
			model.RowAssetLiabilityRatio: map[string]float64(assetRatios),
		},
	}, nil
}

func amounts(s model.AmountSeries) map[string]float64 {
	out := make(map[string]float64, len(s))
	for k, v := range s {
		out[k] = float64(v)
	}
	return out
}
