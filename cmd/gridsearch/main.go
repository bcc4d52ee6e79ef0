// Package main runs the full scoring, parameter-search, and screening
// pipeline and writes the segment report to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/observability"
	"github.com/q5089877/stock-analysis/internal/orchestrator"
	"github.com/q5089877/stock-analysis/internal/reporting"
	"github.com/q5089877/stock-analysis/internal/scoring"
	"github.com/q5089877/stock-analysis/internal/search"
	"github.com/q5089877/stock-analysis/internal/storage"
	chstore "github.com/q5089877/stock-analysis/internal/storage/clickhouse"
	"github.com/q5089877/stock-analysis/internal/storage/memory"
	"github.com/q5089877/stock-analysis/internal/storage/migrations"
	pgstore "github.com/q5089877/stock-analysis/internal/storage/postgres"
)

func main() {
	// Load .env before flag defaults are read from the environment
	_ = godotenv.Load()

	// Window
	segmentsStr := flag.String("segments", "", "Comma-separated segments; empty means every stored segment")
	startStr := flag.String("start", "", "Window start, YYYY-MM-DD (required)")
	endStr := flag.String("end", "", "Window end, YYYY-MM-DD (required)")

	// Grid
	entryMin := flag.Float64("entry-min", 40, "Lowest entry threshold in the grid")
	entryMax := flag.Float64("entry-max", 80, "Highest entry threshold in the grid")
	exitMin := flag.Float64("exit-min", 20, "Lowest exit threshold in the grid")
	step := flag.Float64("step", 5, "Grid step for both thresholds")

	// Simulation
	feeRate := flag.Float64("fee-rate", 0.003, "Proportional transaction fee per side")
	maxHoldDays := flag.Int("max-hold-days", 120, "Forced liquidation after this many calendar days")
	capital := flag.Float64("capital", 20000, "Initial capital per security run")
	modeStr := flag.String("mode", "additive", "Scoring mode: additive, averaging")
	skipScoring := flag.Bool("skip-scoring", false, "Skip the scoring phase (score records already stored)")

	// Storage
	useMemory := flag.Bool("use-memory", false, "Use in-memory stores (dry runs, no data survives)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")

	// Output
	outputDir := flag.String("output-dir", "reports", "Directory for report.md and CSV files")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty disables)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := newLogger(*verbose)

	start, end, err := parseWindow(*startStr, *endStr)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid window")
	}
	mode, err := scoring.ParseMode(*modeStr)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid mode")
	}
	grid := search.GridConfig{
		EntryMin: *entryMin,
		EntryMax: *entryMax,
		ExitMin:  *exitMin,
		Step:     *step,
	}
	if err := grid.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid grid")
	}
	simParams := domain.DefaultSimulationParams()
	simParams.FeeRate = *feeRate
	simParams.MaxHoldDays = *maxHoldDays
	simParams.InitialCapital = *capital

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
	}()

	// Stores: in-memory by default for dry runs, PostgreSQL + ClickHouse for
	// real data
	var (
		securityStore     storage.SecurityStore       = memory.NewSecurityStore()
		priceBarStore     storage.PriceBarStore       = memory.NewPriceBarStore()
		fundamentalsStore storage.FundamentalsStore   = memory.NewFundamentalsStore()
		scoreStore        storage.ScoreStore          = memory.NewScoreStore()
		resultStore       storage.BacktestResultStore = memory.NewBacktestResultStore()
	)

	if !*useMemory {
		if *postgresDSN == "" {
			logger.Fatal().Msg("--postgres-dsn (or POSTGRES_DSN) is required without --use-memory")
		}
		if *clickhouseDSN == "" {
			logger.Fatal().Msg("--clickhouse-dsn (or CLICKHOUSE_DSN) is required without --use-memory")
		}

		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to postgres")
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("run postgres migrations")
		}

		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("run clickhouse migrations")
		}
		defer conn.Close()

		securityStore = pgstore.NewSecurityStore(pool)
		priceBarStore = pgstore.NewPriceBarStore(pool)
		fundamentalsStore = pgstore.NewFundamentalsStore(pool)
		scoreStore = chstore.NewScoreStore(conn)
		resultStore = chstore.NewBacktestResultStore(conn)
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	orch := orchestrator.New(orchestrator.Options{
		SecurityStore:     securityStore,
		PriceBarStore:     priceBarStore,
		FundamentalsStore: fundamentalsStore,
		ScoreStore:        scoreStore,
		ResultStore:       resultStore,
		Segments:          splitSegments(*segmentsStr),
		Start:             start,
		End:               end,
		SimulationParams:  simParams,
		Grid:              grid,
		ScoringMode:       mode,
		SkipScoring:       *skipScoring,
		Logger:            &logger,
	})

	runStart := time.Now()
	result, err := orch.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("pipeline failed")
	}

	logger.Info().
		Int("segments", result.SegmentsProcessed).
		Int("securities_scored", result.SecuritiesScored).
		Int("scores_stored", result.ScoresStored).
		Int("segment_bests", len(result.SegmentBests)).
		Int("watch_list", len(result.WatchList)).
		Dur("elapsed", time.Since(runStart)).
		Msg("pipeline complete")

	for _, e := range result.Errors {
		logger.Warn().Msg(e)
	}

	if err := writeReports(*outputDir, result.Report); err != nil {
		logger.Fatal().Err(err).Msg("write reports")
	}
	fmt.Printf("Reports written to %s\n", *outputDir)

	printBests(result.SegmentBests)
}

// writeReports renders the report in every format into dir.
func writeReports(dir string, report *reporting.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	files := map[string]string{
		"report.md":        reporting.RenderMarkdown(report),
		"pair_results.csv": reporting.RenderCSV(report.PairResults),
		"watch_list.csv":   reporting.RenderWatchListCSV(report.WatchList),
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// printBests outputs the winning threshold pair per segment.
func printBests(bests []*domain.SegmentBest) {
	if len(bests) == 0 {
		fmt.Println("No segment produced a best threshold pair.")
		return
	}
	fmt.Println("\nsegment               entry  exit  mean_return%  samples  skipped")
	for _, b := range bests {
		fmt.Printf("%-20s  %5.0f  %4.0f  %12.2f  %7d  %7d\n",
			b.Segment, b.EntryThreshold, b.ExitThreshold, b.MeanReturnPct, b.SampleSize, b.Skipped)
	}
}

func splitSegments(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func parseWindow(startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--start and --end are required")
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse --start: %w", err)
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse --end: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("--end is before --start")
	}
	return start, end, nil
}
