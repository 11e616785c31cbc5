package recorder

import (
	"time"

	"PillarReport/internal/model"
)

// RunRecord is one stored batch run.
type RunRecord struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Succeeded  int
	Failed     int
	Aborted    bool
	Tickers    []TickerRecord
}

// TickerRecord is the stored outcome of one ticker.
type TickerRecord struct {
	Ticker   string
	Path     string
	Error    string
	Duration time.Duration
}

// Recorder keeps a journal of report runs. It stores outcomes only, never
// provider data.
type Recorder interface {
	RecordRun(summary *model.RunSummary) error
	RecentRuns(limit int) ([]RunRecord, error)
	Close() error
}
