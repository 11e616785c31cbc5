package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"PillarReport/internal/collector"
	"PillarReport/internal/config"
	"PillarReport/internal/logger"
	"PillarReport/internal/notifier"
	"PillarReport/internal/recorder"
	"PillarReport/internal/report"
	"PillarReport/internal/scheduler"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const pollTimeout = 30 * time.Second

type options struct {
	configPath string
	outDir     string
	cronSpec   string
	now        bool
	tickers    []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(config.Path(opts.configPath))
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitUsage
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "config validation: %v\n", err)
		return exitUsage
	}
	if len(cfg.Report.Tickers) == 0 {
		fmt.Fprintln(stderr, "no tickers given on the command line or in report.tickers")
		return exitUsage
	}
	if opts.now && cfg.Schedule.Cron == "" {
		fmt.Fprintln(stderr, "-now needs a cron schedule from -cron, schedule.cron or REPORT_CRON")
		return exitUsage
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source := collector.NewAlphaVantageSource(collector.AlphaVantageOptions{
		BaseURL:   cfg.AlphaVantage.BaseURL,
		APIKey:    cfg.AlphaVantage.APIKey,
		ProxyURL:  cfg.Proxy,
		CallPause: cfg.AlphaVantage.CallPause,
		Timeout:   cfg.AlphaVantage.Timeout,
	}, log)
	log.Info().Str("source", source.Name()).Str("output_dir", cfg.Report.OutputDir).Msg("pillars starting")

	runner := scheduler.NewRunner(source, report.NewAssembler(log), report.NewWorkbookWriter(cfg.Report.OutputDir, log), log)
	runner.TickerPause = cfg.Report.TickerPause
	runner.StopOnError = cfg.Report.StopOnError

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.History.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.History.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
			runner.Recorder = sr
		}
	}
	defer rec.Close()

	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		runner.Notifier = tn
	}

	sched := scheduler.NewScheduler(ctx, runner, cfg.Report.Tickers, log)
	if runner.Recorder != nil {
		sched.History = rec
	}
	if cfg.Schedule.Cron == "" {
		summary, err := sched.RunNow()
		if err != nil {
			log.Error().Err(err).Msg("run")
			return exitFailure
		}
		if summary.HasFailures() {
			return exitFailure
		}
		return exitOK
	}

	return serve(ctx, sched, tn, cfg.Schedule.Cron, opts.now, log)
}

// serve runs the scheduler until a shutdown signal arrives.
func serve(ctx context.Context, sched *scheduler.Scheduler, tn *notifier.TelegramNotifier, spec string, now bool, log zerolog.Logger) int {
	if err := sched.Register(spec); err != nil {
		log.Error().Err(err).Msg("register cron task")
		return exitUsage
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand, pollTimeout)
		log.Info().Msg("telegram polling started")
	}
	if now {
		log.Info().Msg("running reports now")
		go func() {
			if _, err := sched.RunNow(); err != nil {
				log.Warn().Err(err).Msg("immediate run skipped")
			}
		}()
	}

	log.Info().Msg("pillars is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("pillars", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: pillars [-config path] [-out dir] [-cron expr] [-now] TICKER [TICKER...]")
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "config file (default $CONFIG_PATH or config.yaml)")
	fs.StringVar(&opts.outDir, "out", "", "output directory for workbooks")
	fs.StringVar(&opts.cronSpec, "cron", "", "six-field cron expression; run on schedule instead of once")
	fs.BoolVar(&opts.now, "now", false, "with a cron schedule, also run once at startup")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	for _, a := range fs.Args() {
		if t := collector.NormalizeTicker(a); t != "" {
			opts.tickers = append(opts.tickers, t)
		}
	}
	return opts, nil
}

// applyFlags lets command-line values win over file and environment.
func applyFlags(cfg *config.Config, opts *options) {
	if opts.outDir != "" {
		cfg.Report.OutputDir = opts.outDir
	}
	if opts.cronSpec != "" {
		cfg.Schedule.Cron = opts.cronSpec
	}
	if len(opts.tickers) > 0 {
		cfg.Report.Tickers = opts.tickers
	}
}
