package calculator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PillarReport/internal/model"
)

func cashflowPeriod(date, operating, investing string) model.StatementPeriod {
	return model.StatementPeriod{
		FiscalDateEnding: date,
		Fields: map[string]string{
			model.FieldOperatingCashflow:      operating,
			model.FieldCashflowFromInvestment: investing,
		},
	}
}

func TestCalculateSeries_AnnualPlusTTM(t *testing.T) {
	bundle := &model.StatementBundle{
		Ticker: "IBM",
		Kind:   model.IncomeStatement,
		Annual: []model.StatementPeriod{
			quarter("2023-12-31", "600"),
			quarter("2022-12-31", "500"),
			quarter("2021-12-31", "400"),
		},
		Quarterly: []model.StatementPeriod{
			quarter("2024-03-31", "160"),
			quarter("2023-12-31", "170"),
		},
	}

	series, err := CalculateSeries(bundle, Field(model.FieldTotalRevenue))
	require.NoError(t, err)
	assert.Len(t, series, len(bundle.Annual)+1)
	assert.Equal(t, int64(600), series["2023-12-31"])
	assert.Equal(t, int64(400), series["2021-12-31"])
	assert.Equal(t, int64(330), series[model.TTMKey])
}

func TestCalculateSeries_DuplicateAnnualDateLastWins(t *testing.T) {
	bundle := &model.StatementBundle{
		Annual: []model.StatementPeriod{
			quarter("2023-12-31", "1"),
			quarter("2023-12-31", "2"),
		},
	}
	series, err := CalculateSeries(bundle, Field(model.FieldTotalRevenue))
	require.NoError(t, err)
	assert.Len(t, series, 2)
	assert.Equal(t, int64(2), series["2023-12-31"])
}

func TestCalculateSeries_SumFields(t *testing.T) {
	bundle := &model.StatementBundle{
		Kind: model.CashFlow,
		Annual: []model.StatementPeriod{
			cashflowPeriod("2023-12-31", "1000", "-300"),
		},
		Quarterly: []model.StatementPeriod{
			cashflowPeriod("2023-12-31", "250", "-50"),
			cashflowPeriod("2023-09-30", "250", "-100"),
		},
	}
	series, err := CalculateSeries(bundle, SumFields(model.FieldOperatingCashflow, model.FieldCashflowFromInvestment))
	require.NoError(t, err)
	assert.Equal(t, int64(700), series["2023-12-31"])
	assert.Equal(t, int64(350), series[model.TTMKey])
}

func TestCalculateSeries_ParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		bundle    *model.StatementBundle
		field     string
		value     string
		wantErrIs error
	}{
		{
			name: "non numeric annual",
			bundle: &model.StatementBundle{
				Ticker: "IBM", Kind: model.IncomeStatement,
				Annual: []model.StatementPeriod{quarter("2023-12-31", "None")},
			},
			field: model.FieldTotalRevenue,
			value: "None",
		},
		{
			name: "missing quarterly field",
			bundle: &model.StatementBundle{
				Ticker: "IBM", Kind: model.IncomeStatement,
				Quarterly: []model.StatementPeriod{{FiscalDateEnding: "2023-12-31", Fields: map[string]string{}}},
			},
			field:     model.FieldTotalRevenue,
			wantErrIs: model.ErrFieldMissing,
		},
		{
			name: "bad annual date",
			bundle: &model.StatementBundle{
				Ticker: "IBM", Kind: model.IncomeStatement,
				Annual: []model.StatementPeriod{quarter("2023/12/31", "1")},
			},
			field: "fiscalDateEnding",
			value: "2023/12/31",
		},
		{
			name: "bad quarterly date",
			bundle: &model.StatementBundle{
				Ticker: "IBM", Kind: model.IncomeStatement,
				Quarterly: []model.StatementPeriod{quarter("2023-12-31", "1"), quarter("09/30/2023", "1")},
			},
			field: "fiscalDateEnding",
			value: "09/30/2023",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateSeries(tt.bundle, Field(model.FieldTotalRevenue))
			require.Error(t, err)

			var pe *model.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "IBM", pe.Ticker)
			assert.Equal(t, model.IncomeStatement, pe.Kind)
			assert.Equal(t, tt.field, pe.Field)
			assert.Equal(t, tt.value, pe.Value)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			}
		})
	}
}

func TestCalculateSeries_NormalizesDateKeys(t *testing.T) {
	bundle := &model.StatementBundle{
		Ticker: "IBM", Kind: model.IncomeStatement,
		Annual: []model.StatementPeriod{quarter(" 2023-12-31", "1000"), quarter("2022-12-31 ", "900")},
	}
	series, err := CalculateSeries(bundle, Field(model.FieldTotalRevenue))
	require.NoError(t, err)

	assert.Equal(t, model.AmountSeries{"2023-12-31": 1000, "2022-12-31": 900, model.TTMKey: 0}, series)
}

func TestSortDatesDesc(t *testing.T) {
	sorted, err := SortDatesDesc([]string{"2021-12-31", " 2023-12-31", "2022-12-31"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-12-31", "2022-12-31", "2021-12-31"}, sorted)

	_, err = SortDatesDesc([]string{"2023-9-30"})
	require.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount(" 1000000 ")
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), v)

	for _, bad := range []string{"None", "", "1.5", "12a"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, bad)
	}
}
