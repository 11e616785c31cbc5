package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"PillarReport/internal/collector"
	"PillarReport/internal/metrics"
	"PillarReport/internal/model"
	"PillarReport/internal/notifier"
	"PillarReport/internal/report"
)

// ReportWriter persists an assembled report and returns its path.
type ReportWriter interface {
	Write(r *model.Report) (string, error)
}

// Recorder journals finished runs.
type Recorder interface {
	RecordRun(summary *model.RunSummary) error
}

// Notifier delivers run summaries.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

const notifyRetries = 3

// Runner processes a batch of tickers in order, one report each.
type Runner struct {
	Source      collector.Source
	Assembler   *report.Assembler
	Writer      ReportWriter
	Notifier    Notifier // optional
	Recorder    Recorder // optional
	TickerPause time.Duration
	StopOnError bool
	// Sleep waits between tickers; it returns early with ctx's error.
	Sleep func(ctx context.Context, d time.Duration) error

	log  zerolog.Logger
	mu   sync.Mutex
	last *model.RunSummary
}

// NewRunner creates a Runner with the wall-clock sleep.
func NewRunner(source collector.Source, assembler *report.Assembler, writer ReportWriter, log zerolog.Logger) *Runner {
	return &Runner{
		Source:    source,
		Assembler: assembler,
		Writer:    writer,
		Sleep:     sleepContext,
		log:       log.With().Str("component", "runner").Logger(),
	}
}

// Run builds a report for every ticker. Statements are cached for the
// duration of the run only. Cancellation is observed between tickers.
func (r *Runner) Run(ctx context.Context, tickers []string) *model.RunSummary {
	summary := &model.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := r.log.With().Str("run_id", summary.RunID).Logger()
	log.Info().Strs("tickers", tickers).Str("source", r.Source.Name()).Msg("run started")

	engine := metrics.NewEngine(collector.NewCache(r.Source, log))
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for i, ticker := range tickers {
		if i > 0 && r.TickerPause > 0 {
			log.Debug().Dur("pause", r.TickerPause).Msg("waiting before next ticker")
			if err := sleep(ctx, r.TickerPause); err != nil {
				log.Warn().Err(err).Msg("run cancelled")
				summary.Aborted = true
				break
			}
		}

		result := r.runTicker(ctx, engine, ticker, log)
		summary.Results = append(summary.Results, result)
		if result.Failed() && r.StopOnError {
			log.Warn().Str("ticker", result.Ticker).Msg("stopping run after failure")
			summary.Aborted = true
			break
		}
	}
	summary.FinishedAt = time.Now()

	log.Info().
		Int("succeeded", len(summary.Succeeded())).
		Int("failed", len(summary.FailedResults())).
		Bool("aborted", summary.Aborted).
		Dur("elapsed", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("run finished")

	r.mu.Lock()
	r.last = summary
	r.mu.Unlock()

	if r.Recorder != nil {
		if err := r.Recorder.RecordRun(summary); err != nil {
			log.Error().Err(err).Msg("record run")
		}
	}
	r.notify(ctx, summary, log)
	return summary
}

// Last returns the most recent run summary, or nil before the first run.
func (r *Runner) Last() *model.RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Runner) runTicker(ctx context.Context, engine *metrics.Engine, ticker string, log zerolog.Logger) model.TickerResult {
	start := time.Now()
	result := model.TickerResult{Ticker: collector.NormalizeTicker(ticker)}
	tlog := log.With().Str("ticker", result.Ticker).Logger()

	rep, err := r.Assembler.Build(ctx, engine, ticker)
	if err == nil {
		result.Path, err = r.Writer.Write(rep)
	}
	result.Err = err
	result.Duration = time.Since(start)

	if err != nil {
		tlog.Error().Err(err).Dur("elapsed", result.Duration).Msg("report failed")
	} else {
		tlog.Info().Str("path", result.Path).Dur("elapsed", result.Duration).Msg("report written")
	}
	return result
}

func (r *Runner) notify(ctx context.Context, summary *model.RunSummary, log zerolog.Logger) {
	if r.Notifier == nil {
		return
	}
	if err := r.Notifier.SendWithRetry(ctx, notifier.FormatRunSummary(summary), notifyRetries); err != nil {
		log.Error().Err(err).Msg("send run summary")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
