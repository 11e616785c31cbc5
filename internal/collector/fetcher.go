package collector

import (
	"context"

	"PillarReport/internal/model"
)

// Source fetches raw provider data. Each call is one outbound request;
// callers cache the results.
type Source interface {
	FetchStatement(ctx context.Context, ticker string, kind model.StatementKind) (*model.StatementBundle, error)
	FetchOverview(ctx context.Context, ticker string) (model.Overview, error)
	FetchDailyPrices(ctx context.Context, ticker string) (*model.PriceSeries, error)
	Name() string
}
