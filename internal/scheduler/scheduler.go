package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"PillarReport/internal/collector"
	"PillarReport/internal/model"
	"PillarReport/internal/notifier"
	"PillarReport/internal/recorder"
)

// ErrRunInProgress is returned when a run is requested while one is active.
var ErrRunInProgress = errors.New("a report run is already in progress")

// Scheduler triggers report runs from cron, on demand and from chat commands.
// At most one run is active at a time.
type Scheduler struct {
	Cron    *cron.Cron
	Runner  *Runner
	Tickers []string
	Ctx     context.Context
	History recorder.Recorder // optional

	log     zerolog.Logger
	running sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner *Runner, tickers []string, log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Runner:  runner,
		Tickers: tickers,
		Ctx:     ctx,
		log:     log,
	}
}

// Register schedules the configured tickers on a six-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.scheduledRun); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	s.log.Info().Str("cron", spec).Strs("tickers", s.Tickers).Msg("report task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow runs the configured tickers immediately.
func (s *Scheduler) RunNow() (*model.RunSummary, error) {
	return s.run(s.Tickers)
}

// RunTickers runs an ad-hoc ticker list immediately.
func (s *Scheduler) RunTickers(tickers []string) (*model.RunSummary, error) {
	return s.run(tickers)
}

func (s *Scheduler) scheduledRun() {
	if _, err := s.run(s.Tickers); err != nil {
		s.log.Warn().Err(err).Msg("scheduled run skipped")
	}
}

func (s *Scheduler) run(tickers []string) (*model.RunSummary, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()
	return s.Runner.Run(s.Ctx, tickers), nil
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	switch strings.ToLower(fields[0]) {
	case "/report":
		tickers := make([]string, 0, len(fields)-1)
		for _, f := range fields[1:] {
			if t := collector.NormalizeTicker(f); t != "" {
				tickers = append(tickers, t)
			}
		}
		if len(tickers) == 0 {
			return "Usage: /report TICKER [TICKER...]"
		}
		return s.commandRun(tickers)
	case "/run":
		return s.commandRun(s.Tickers)
	case "/history":
		return s.history()
	case "/status":
		last := s.Runner.Last()
		if last == nil {
			return "No run has finished yet."
		}
		return notifier.FormatRunSummary(last)
	default:
		return notifier.FormatHelp()
	}
}

const historyLimit = 5

func (s *Scheduler) history() string {
	if s.History == nil {
		return "Run history is not enabled."
	}
	runs, err := s.History.RecentRuns(historyLimit)
	if err != nil {
		s.log.Error().Err(err).Msg("load run history")
		return "Could not load run history."
	}
	return notifier.FormatRunHistory(runs)
}

// commandRun replies with nothing on success because the runner already
// sends the summary when a notifier is configured.
func (s *Scheduler) commandRun(tickers []string) string {
	summary, err := s.run(tickers)
	if err != nil {
		return err.Error()
	}
	if s.Runner.Notifier != nil {
		return ""
	}
	return notifier.FormatRunSummary(summary)
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
