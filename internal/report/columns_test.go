package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PillarReport/internal/model"
)

func TestOrderColumns(t *testing.T) {
	tests := []struct {
		name   string
		series model.AmountSeries
		want   []string
	}{
		{
			name: "three years",
			series: model.AmountSeries{
				"2023-12-31": 3, "2021-12-31": 1, "2022-12-31": 2, model.TTMKey: 4,
			},
			want: []string{"2021-12-31", "2022-12-31", "2023-12-31", model.TTMKey},
		},
		{
			name: "padded key sorts by date",
			series: model.AmountSeries{
				" 2023-12-31": 3, "2021-12-31": 1, "2022-12-31": 2, model.TTMKey: 4,
			},
			want: []string{"2021-12-31", "2022-12-31", "2023-12-31", model.TTMKey},
		},
		{
			name:   "one year",
			series: model.AmountSeries{"2023-12-31": 1, model.TTMKey: 1},
			want:   []string{"2023-12-31", model.TTMKey},
		},
		{
			name:   "ttm only",
			series: model.AmountSeries{model.TTMKey: 0},
			want:   []string{model.TTMKey},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cols, err := OrderColumns(tc.series)
			require.NoError(t, err)
			assert.Equal(t, tc.want, cols)
		})
	}
}

func TestOrderColumns_BadDate(t *testing.T) {
	_, err := OrderColumns(model.AmountSeries{"12/31/2023": 1, model.TTMKey: 1})
	require.Error(t, err)
}
