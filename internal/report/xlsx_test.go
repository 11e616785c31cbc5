package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"PillarReport/internal/model"
)

func sampleReport() *model.Report {
	pe := 25.5
	return &model.Report{
		Ticker: "IBM",
		Snapshot: model.Snapshot{
			Date:       "2024-05-17",
			MarketCap:  5000,
			PE:         &pe,
			PriceToFCF: 25,
		},
		FiveYear: model.FiveYearTable{
			Columns: []string{"2022-12-31", "2023-12-31", model.TTMKey},
			Rows: map[string]map[string]float64{
				model.RowRevenues:            {"2022-12-31": 900, "2023-12-31": 1000, model.TTMKey: 1000},
				model.RowNetProfits:          {"2022-12-31": 81, "2023-12-31": 100, model.TTMKey: 100},
				model.RowNetProfitMargins:    {"2022-12-31": 0.09, "2023-12-31": 0.1, model.TTMKey: 0.1},
				model.RowAssetLiabilityRatio: {"2023-12-31": 2, model.TTMKey: 2},
			},
		},
	}
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestWorkbookWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stock_reports")
	w := NewWorkbookWriter(dir, zerolog.Nop())

	path, err := w.Write(sampleReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "IBM.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SnapshotSheet, FiveYearSheet}, f.GetSheetList())

	assert.Equal(t, "market_cap", raw(t, f, SnapshotSheet, "B1"))
	assert.Equal(t, "cur_dilluted_pe", raw(t, f, SnapshotSheet, "C1"))
	assert.Equal(t, "cur_pfcf", raw(t, f, SnapshotSheet, "D1"))
	assert.Equal(t, "2024-05-17", raw(t, f, SnapshotSheet, "A2"))
	assert.Equal(t, "5000", raw(t, f, SnapshotSheet, "B2"))
	assert.Equal(t, "25.5", raw(t, f, SnapshotSheet, "C2"))
	assert.Equal(t, "25", raw(t, f, SnapshotSheet, "D2"))

	assert.Equal(t, "revenues", raw(t, f, FiveYearSheet, "B1"))
	assert.Equal(t, "asset_liability_ratio", raw(t, f, FiveYearSheet, "E1"))
	assert.Equal(t, "2022-12-31", raw(t, f, FiveYearSheet, "A2"))
	assert.Equal(t, "900", raw(t, f, FiveYearSheet, "B2"))
	assert.Equal(t, "", raw(t, f, FiveYearSheet, "E2"))
	assert.Equal(t, model.TTMKey, raw(t, f, FiveYearSheet, "A4"))
	assert.Equal(t, "0.1", raw(t, f, FiveYearSheet, "D4"))
}

func TestWorkbookWriter_EmptyPE(t *testing.T) {
	r := sampleReport()
	r.Snapshot.PE = nil
	w := NewWorkbookWriter(t.TempDir(), zerolog.Nop())

	path, err := w.Write(r)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "", raw(t, f, SnapshotSheet, "C2"))
}

func TestWorkbookWriter_Overwrites(t *testing.T) {
	dir := t.TempDir()
	w := NewWorkbookWriter(dir, zerolog.Nop())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "IBM.xlsx"), []byte("stale"), 0o644))

	path, err := w.Write(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "5000", raw(t, f, SnapshotSheet, "B2"))
}
