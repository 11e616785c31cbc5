package calculator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PillarReport/internal/model"
)

func TestDivide(t *testing.T) {
	r, err := Divide(1, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.25, r)

	r, err = Divide(0, 4)
	require.NoError(t, err)
	assert.Zero(t, r)

	_, err = Divide(1, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestCalculateRatioSeries(t *testing.T) {
	num := model.AmountSeries{"2023-12-31": 10, model.TTMKey: 3}
	den := model.AmountSeries{"2023-12-31": 40, model.TTMKey: 12, "2022-12-31": 7}

	out, err := CalculateRatioSeries("IBM", "margin", num, den)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, 0.25, out["2023-12-31"])
	assert.Equal(t, 0.25, out[model.TTMKey])
}

func TestCalculateRatioSeries_KeyMismatch(t *testing.T) {
	num := model.AmountSeries{"2023-12-31": 10}
	den := model.AmountSeries{model.TTMKey: 12}

	_, err := CalculateRatioSeries("IBM", "margin", num, den)
	var km *model.KeyMismatchError
	require.True(t, errors.As(err, &km))
	assert.Equal(t, "2023-12-31", km.Key)
}

func TestCalculateRatioSeries_ZeroDenominator(t *testing.T) {
	num := model.AmountSeries{model.TTMKey: 0}
	den := model.AmountSeries{model.TTMKey: 0}

	_, err := CalculateRatioSeries("IBM", "margin", num, den)
	var de *model.DivisionError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, model.TTMKey, de.Key)
}
