package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/meridian/internal/backtest"
	"github.com/ternarybob/meridian/internal/common"
	"github.com/ternarybob/meridian/internal/interfaces"
	"github.com/ternarybob/meridian/internal/marketdata"
	"github.com/ternarybob/meridian/internal/pipeline"
	"github.com/ternarybob/meridian/internal/services/llm"
	"github.com/ternarybob/meridian/internal/services/report"
	badgerstorage "github.com/ternarybob/meridian/internal/storage/badger"
	"github.com/ternarybob/meridian/internal/trends"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: meridian [flags] <command>

Commands:
  run       Execute one pipeline pass (ingest, score, extract, brief)
  backtest  Ingest prices and compute performance snapshots
  trends    Detect term and topic trends over stored articles
  serve     Run the cron scheduler until interrupted

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Meridian version %s\n", common.GetVersion())
		os.Exit(0)
	}

	command := flag.Arg(0)
	if command == "" {
		command = "run"
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Initialize logger
	// 3. Print banner
	if len(configFiles) == 0 {
		if _, err := os.Stat("meridian.toml"); err == nil {
			configFiles = append(configFiles, "meridian.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("command", command).
		Str("environment", config.Environment).
		Str("badger_path", config.Storage.Badger.Path).
		Msg("Meridian starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := badgerstorage.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
		os.Exit(1)
	}
	defer storage.Close()

	switch command {
	case "run":
		err = runPipeline(ctx, storage)
	case "backtest":
		err = runBacktest(ctx, storage)
	case "trends":
		err = runTrends(ctx, storage)
	case "serve":
		err = serve(ctx, storage)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, common.ErrLockHeld) {
			logger.Warn().Msg("Another pipeline instance is running, exiting")
			os.Exit(3)
		}
		logger.Fatal().Err(err).Str("command", command).Msg("Command failed")
		os.Exit(1)
	}
}

// newOrchestrator wires the pipeline with the configured LLM provider and
// optional extras (provider news, PDF reports).
func newOrchestrator(storage interfaces.StorageManager) (*pipeline.Orchestrator, interfaces.LLMService, error) {
	llmService, err := llm.NewLLMService(config, logger)
	if err != nil {
		return nil, nil, err
	}

	var news *marketdata.Client
	if config.MarketData.APIKey != "" {
		news = newMarketDataClient()
	}

	orchestrator := pipeline.NewOrchestrator(storage, config, llmService, news, logger)
	if config.Report.PDFEnabled {
		orchestrator = orchestrator.WithReporter(report.NewService(config.Report, logger))
	}
	return orchestrator, llmService, nil
}

func newMarketDataClient() *marketdata.Client {
	return marketdata.NewClient(config.MarketData.APIKey,
		marketdata.WithBaseURL(config.MarketData.BaseURL),
		marketdata.WithRateLimit(config.MarketData.RateLimit),
		marketdata.WithLogger(logger),
	)
}

func runPipeline(ctx context.Context, storage interfaces.StorageManager) error {
	orchestrator, llmService, err := newOrchestrator(storage)
	if err != nil {
		return err
	}
	defer llmService.Close()

	_, err = orchestrator.Run(ctx)
	return err
}

func runBacktest(ctx context.Context, storage interfaces.StorageManager) error {
	if config.MarketData.APIKey == "" {
		return fmt.Errorf("market data API key is required for backtest (set MERIDIAN_MARKET_DATA_API_KEY or market_data.api_key in config)")
	}

	service := backtest.NewService(
		storage.AnalysisStorage(),
		storage.PriceStorage(),
		storage.PerformanceStorage(),
		newMarketDataClient(),
		config.MarketData.Benchmarks,
		logger,
	)
	return service.Run(ctx)
}

func runTrends(ctx context.Context, storage interfaces.StorageManager) error {
	service := trends.NewService(
		storage.ArticleStorage(),
		storage.TrendStorage(),
		config.Trends,
		logger,
	)
	return service.Run(ctx, time.Now())
}

// serve schedules the three jobs on their cron expressions and blocks until
// interrupted. A pipeline run that finds the lock held is skipped quietly;
// overlapping runs are prevented by the run lock, not the scheduler.
func serve(ctx context.Context, storage interfaces.StorageManager) error {
	if !config.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled (set scheduler.enabled = true)")
	}

	orchestrator, llmService, err := newOrchestrator(storage)
	if err != nil {
		return err
	}
	defer llmService.Close()

	scheduler := cron.New()

	schedule := func(name, spec string, job func(context.Context) error) error {
		_, err := scheduler.AddFunc(spec, func() {
			logger.Info().Str("job", name).Msg("Scheduled job starting")
			if err := job(ctx); err != nil {
				if errors.Is(err, common.ErrLockHeld) {
					logger.Warn().Str("job", name).Msg("Run lock held, skipping scheduled job")
					return
				}
				logger.Error().Err(err).Str("job", name).Msg("Scheduled job failed")
				return
			}
			logger.Info().Str("job", name).Msg("Scheduled job complete")
		})
		if err != nil {
			return fmt.Errorf("invalid %s schedule %q: %w", name, spec, err)
		}
		return nil
	}

	if err := schedule("pipeline", config.Scheduler.PipelineSchedule, func(ctx context.Context) error {
		_, err := orchestrator.Run(ctx)
		return err
	}); err != nil {
		return err
	}
	if config.MarketData.APIKey != "" {
		if err := schedule("backtest", config.Scheduler.BacktestSchedule, func(ctx context.Context) error {
			return runBacktest(ctx, storage)
		}); err != nil {
			return err
		}
	} else {
		logger.Warn().Msg("No market data API key, backtest schedule disabled")
	}
	if err := schedule("trends", config.Scheduler.TrendsSchedule, func(ctx context.Context) error {
		return runTrends(ctx, storage)
	}); err != nil {
		return err
	}

	scheduler.Start()
	logger.Info().
		Str("pipeline", config.Scheduler.PipelineSchedule).
		Str("backtest", config.Scheduler.BacktestSchedule).
		Str("trends", config.Scheduler.TrendsSchedule).
		Msg("Scheduler started - Press Ctrl+C to stop")

	<-ctx.Done()

	logger.Info().Msg("Shutting down scheduler")
	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("Timed out waiting for running jobs")
	}

	logger.Info().Msg("Scheduler stopped")
	return nil
}
