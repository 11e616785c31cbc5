package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"PillarReport/internal/model"
)

// Sheet names of a report workbook.
const (
	SnapshotSheet = "To Date Fundamentals-Ratios"
	FiveYearSheet = "Five Year Fundamentals"
)

var (
	amountFormat   = "#,##0"
	currencyFormat = "$#,##0"
	ratioFormat    = "0.000"
)

// WorkbookWriter renders reports to <Dir>/<TICKER>.xlsx.
type WorkbookWriter struct {
	Dir string
	log zerolog.Logger
}

// NewWorkbookWriter creates a writer for dir.
func NewWorkbookWriter(dir string, log zerolog.Logger) *WorkbookWriter {
	return &WorkbookWriter{
		Dir: dir,
		log: log.With().Str("component", "workbook").Logger(),
	}
}

// Path returns the artifact path for ticker.
func (w *WorkbookWriter) Path(ticker string) string {
	return filepath.Join(w.Dir, ticker+".xlsx")
}

// Write renders r and returns the artifact path. An existing file for the
// same ticker is replaced.
func (w *WorkbookWriter) Write(r *model.Report) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newStyles(f)
	if err != nil {
		return "", err
	}
	if err := f.SetSheetName("Sheet1", SnapshotSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSnapshot(f, styles, r.Snapshot); err != nil {
		return "", fmt.Errorf("write %s: %w", SnapshotSheet, err)
	}
	if _, err := f.NewSheet(FiveYearSheet); err != nil {
		return "", fmt.Errorf("add sheet: %w", err)
	}
	if err := writeFiveYear(f, styles, &r.FiveYear); err != nil {
		return "", fmt.Errorf("write %s: %w", FiveYearSheet, err)
	}
	f.SetActiveSheet(0)

	path := w.Path(r.Ticker)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	w.log.Info().Str("ticker", r.Ticker).Str("path", path).Msg("workbook written")
	return path, nil
}

type styleSet struct {
	amount, currency, ratio int
}

func newStyles(f *excelize.File) (styleSet, error) {
	var s styleSet
	for _, st := range []struct {
		format *string
		dst    *int
	}{
		{&amountFormat, &s.amount},
		{&currencyFormat, &s.currency},
		{&ratioFormat, &s.ratio},
	} {
		id, err := f.NewStyle(&excelize.Style{CustomNumFmt: st.format})
		if err != nil {
			return s, fmt.Errorf("create style %s: %w", *st.format, err)
		}
		*st.dst = id
	}
	return s, nil
}

func writeSnapshot(f *excelize.File, styles styleSet, s model.Snapshot) error {
	header := []any{""}
	for _, col := range model.SnapshotColumns {
		header = append(header, col)
	}
	if err := f.SetSheetRow(SnapshotSheet, "A1", &header); err != nil {
		return err
	}

	cells := map[string]any{"A2": s.Date, "B2": s.MarketCap, "D2": s.PriceToFCF}
	if s.PE != nil {
		cells["C2"] = *s.PE
	}
	for cell, v := range cells {
		if err := f.SetCellValue(SnapshotSheet, cell, v); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SnapshotSheet, "B2", "B2", styles.amount); err != nil {
		return err
	}
	if err := f.SetCellStyle(SnapshotSheet, "C2", "D2", styles.ratio); err != nil {
		return err
	}
	return f.SetColWidth(SnapshotSheet, "A", "D", 18)
}

// writeFiveYear lays out one row per period with metrics as columns.
func writeFiveYear(f *excelize.File, styles styleSet, t *model.FiveYearTable) error {
	header := []any{""}
	for _, name := range model.FiveYearRows {
		header = append(header, name)
	}
	if err := f.SetSheetRow(FiveYearSheet, "A1", &header); err != nil {
		return err
	}

	for i, col := range t.Columns {
		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(FiveYearSheet, cell, col); err != nil {
			return err
		}
		for j, name := range model.FiveYearRows {
			v, ok := t.Value(name, col)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+2, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(FiveYearSheet, cell, v); err != nil {
				return err
			}
		}
	}

	last := len(t.Columns) + 1
	if last < 2 {
		return f.SetColWidth(FiveYearSheet, "A", "E", 22)
	}
	for _, rng := range []struct {
		from, to string
		style    int
	}{
		{"B", "C", styles.currency},
		{"D", "E", styles.ratio},
	} {
		if err := f.SetCellStyle(FiveYearSheet, fmt.Sprintf("%s2", rng.from), fmt.Sprintf("%s%d", rng.to, last), rng.style); err != nil {
			return err
		}
	}
	return f.SetColWidth(FiveYearSheet, "A", "E", 22)
}
