package model

import "time"

// TickerResult is the outcome of one ticker within a run.
type TickerResult struct {
	Ticker   string
	Path     string
	Err      error
	Duration time.Duration
}

// Failed reports whether the ticker produced no artifact.
func (r TickerResult) Failed() bool { return r.Err != nil }

// RunSummary collects the results of a batch run.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []TickerResult
	Aborted    bool
}

// Succeeded returns the tickers that produced an artifact.
func (s *RunSummary) Succeeded() []TickerResult {
	var out []TickerResult
	for _, r := range s.Results {
		if !r.Failed() {
			out = append(out, r)
		}
	}
	return out
}

// FailedResults returns the tickers that failed.
func (s *RunSummary) FailedResults() []TickerResult {
	var out []TickerResult
	for _, r := range s.Results {
		if r.Failed() {
			out = append(out, r)
		}
	}
	return out
}

// HasFailures reports whether any ticker failed.
func (s *RunSummary) HasFailures() bool {
	return len(s.FailedResults()) > 0
}
