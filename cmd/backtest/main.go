// Package main simulates the entry/exit strategy for one security at a
// fixed threshold pair and prints the realized outcome.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/indicator"
	"github.com/q5089877/stock-analysis/internal/scoring"
	"github.com/q5089877/stock-analysis/internal/simulation"
	"github.com/q5089877/stock-analysis/internal/storage"
	chstore "github.com/q5089877/stock-analysis/internal/storage/clickhouse"
	"github.com/q5089877/stock-analysis/internal/storage/migrations"
	pgstore "github.com/q5089877/stock-analysis/internal/storage/postgres"
)

func main() {
	// Load .env before flag defaults are read from the environment
	_ = godotenv.Load()

	// Target
	securityID := flag.String("security-id", "", "Security to simulate (required)")
	segment := flag.String("segment", "", "Segment label recorded on the result")
	startStr := flag.String("start", "", "Window start, YYYY-MM-DD (required)")
	endStr := flag.String("end", "", "Window end, YYYY-MM-DD (required)")

	// Strategy
	entry := flag.Float64("entry", 70, "Composite score entry threshold")
	exit := flag.Float64("exit", 30, "Composite score exit threshold")
	feeRate := flag.Float64("fee-rate", 0.003, "Proportional transaction fee per side")
	maxHoldDays := flag.Int("max-hold-days", 120, "Forced liquidation after this many calendar days")
	capital := flag.Float64("capital", 20000, "Initial capital")
	modeStr := flag.String("mode", "additive", "Scoring mode: additive, averaging")

	// Storage
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (required with --persist)")

	// Output
	outputJSON := flag.Bool("json", false, "Output the result as JSON")
	persist := flag.Bool("persist", false, "Persist the result to ClickHouse")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := newLogger(*verbose)

	if *securityID == "" {
		logger.Fatal().Msg("--security-id is required")
	}
	if *postgresDSN == "" {
		logger.Fatal().Msg("--postgres-dsn (or POSTGRES_DSN) is required")
	}
	if *persist && *clickhouseDSN == "" {
		logger.Fatal().Msg("--clickhouse-dsn (or CLICKHOUSE_DSN) is required with --persist")
	}

	start, end, err := parseWindow(*startStr, *endStr)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid window")
	}
	mode, err := scoring.ParseMode(*modeStr)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid mode")
	}

	params := domain.DefaultSimulationParams()
	params.EntryThreshold = *entry
	params.ExitThreshold = *exit
	params.FeeRate = *feeRate
	params.MaxHoldDays = *maxHoldDays
	params.InitialCapital = *capital
	if err := params.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid simulation parameters")
	}

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

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()

	var resultStore storage.BacktestResultStore
	if *persist {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to clickhouse")
		}
		defer conn.Close()
		resultStore = chstore.NewBacktestResultStore(conn)
	}

	runner := simulation.NewRunner(simulation.RunnerOptions{
		PriceBarStore:     pgstore.NewPriceBarStore(pool),
		FundamentalsStore: pgstore.NewFundamentalsStore(pool),
		ResultStore:       resultStore,
	})

	result, err := runner.Run(ctx, simulation.RunRequest{
		SecurityID:       *securityID,
		Segment:          *segment,
		Start:            start,
		End:              end,
		IndicatorParams:  domain.DefaultIndicatorParams(),
		SimulationParams: params,
		ScoringMode:      mode,
	})
	if err != nil {
		if errors.Is(err, indicator.ErrInsufficientData) {
			logger.Fatal().Str("security", *securityID).Msg("not enough price history for the indicator windows")
		}
		logger.Fatal().Err(err).Msg("simulation failed")
	}

	if *outputJSON {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
		return
	}
	printResult(result)
}

// printResult outputs a human-readable simulation summary.
func printResult(r *domain.BacktestResult) {
	fmt.Printf("Security:        %s\n", r.SecurityID)
	if r.Segment != "" {
		fmt.Printf("Segment:         %s\n", r.Segment)
	}
	fmt.Printf("Entry threshold: %.0f\n", r.EntryThreshold)
	fmt.Printf("Exit threshold:  %.0f\n", r.ExitThreshold)
	fmt.Printf("Return:          %.2f%%\n", r.ReturnPct)
	fmt.Printf("Trades:          %d\n", r.Trades)
	fmt.Printf("Forced exits:    %d\n", r.ForcedExits)
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
