// Package main computes daily composite scores for securities and
// optionally persists the score records.
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
	"github.com/q5089877/stock-analysis/internal/idhash"
	"github.com/q5089877/stock-analysis/internal/indicator"
	"github.com/q5089877/stock-analysis/internal/scoring"
	"github.com/q5089877/stock-analysis/internal/storage"
	chstore "github.com/q5089877/stock-analysis/internal/storage/clickhouse"
	"github.com/q5089877/stock-analysis/internal/storage/migrations"
	pgstore "github.com/q5089877/stock-analysis/internal/storage/postgres"
)

func main() {
	// Load .env before flag defaults are read from the environment
	_ = godotenv.Load()

	// Parse flags
	securityID := flag.String("security-id", "", "Security to score (mutually exclusive with --segment)")
	segment := flag.String("segment", "", "Score every security in this segment")
	startStr := flag.String("start", "", "Window start, YYYY-MM-DD (required)")
	endStr := flag.String("end", "", "Window end, YYYY-MM-DD (required)")
	modeStr := flag.String("mode", "additive", "Scoring mode: additive, averaging")
	fill := flag.String("fill", "strict", "Window fill mode: strict, widen")

	// Storage
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (required with --persist)")

	// Output
	outputJSON := flag.Bool("json", false, "Output score records as JSON")
	persist := flag.Bool("persist", false, "Persist score records to ClickHouse")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := newLogger(*verbose)

	if (*securityID == "") == (*segment == "") {
		logger.Fatal().Msg("exactly one of --security-id or --segment is required")
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
	fillMode, err := parseFill(*fill)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid fill mode")
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

	// PostgreSQL for securities and price bars
	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()

	securityStore := pgstore.NewSecurityStore(pool)
	priceBarStore := pgstore.NewPriceBarStore(pool)

	// ClickHouse for score records, only when persisting
	var scoreStore storage.ScoreStore
	if *persist {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to clickhouse")
		}
		defer conn.Close()
		scoreStore = chstore.NewScoreStore(conn)
	}

	// Resolve target securities
	ids := []string{*securityID}
	if *segment != "" {
		securities, err := securityStore.GetBySegment(ctx, *segment)
		if err != nil {
			logger.Fatal().Err(err).Str("segment", *segment).Msg("load segment")
		}
		ids = ids[:0]
		for _, sec := range securities {
			ids = append(ids, sec.SecurityID)
		}
	}

	calc, err := indicator.NewCalculator(domain.DefaultIndicatorParams(), fillMode)
	if err != nil {
		logger.Fatal().Err(err).Msg("build calculator")
	}
	scorer := scoring.NewScorer(mode, scoring.DefaultSignalConfig())

	var all []*domain.ScoreRecord
	skipped := 0
	for _, id := range ids {
		records, err := scoreOne(ctx, calc, scorer, priceBarStore, id, start, end, mode)
		if err != nil {
			if errors.Is(err, indicator.ErrInsufficientData) {
				skipped++
				logger.Debug().Str("security", id).Msg("insufficient history, skipped")
				continue
			}
			logger.Fatal().Err(err).Str("security", id).Msg("score")
		}
		all = append(all, records...)
	}

	if *persist && len(all) > 0 {
		if err := scoreStore.InsertBulk(ctx, all); err != nil {
			logger.Fatal().Err(err).Msg("persist scores")
		}
	}

	logger.Info().
		Int("securities", len(ids)-skipped).
		Int("skipped", skipped).
		Int("records", len(all)).
		Msg("scoring complete")

	if *outputJSON {
		out, _ := json.MarshalIndent(all, "", "  ")
		fmt.Println(string(out))
		return
	}
	printScores(all)
}

// scoreOne computes the daily score series for one security.
func scoreOne(
	ctx context.Context,
	calc *indicator.Calculator,
	scorer *scoring.Scorer,
	bars storage.PriceBarStore,
	securityID string,
	start, end time.Time,
	mode scoring.Mode,
) ([]*domain.ScoreRecord, error) {
	barSlice, err := bars.GetByDateRange(ctx, securityID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load bars for %s: %w", securityID, err)
	}
	series, err := calc.Compute(barSlice)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	records := make([]*domain.ScoreRecord, series.Len())
	for i := 0; i < series.Len(); i++ {
		score, labels := scorer.ScoreAt(series, i)
		records[i] = &domain.ScoreRecord{
			ScoreID:    idhash.ComputeScoreID(securityID, series.Dates[i], mode.String()),
			SecurityID: securityID,
			Date:       series.Dates[i],
			Score:      score,
			Signals:    labels,
			CreatedAt:  now,
		}
	}
	return records, nil
}

// printScores outputs a human-readable score table.
func printScores(records []*domain.ScoreRecord) {
	fmt.Println("date        security  score   signals")
	for _, r := range records {
		fmt.Printf("%s  %-8s  %6.2f  %v\n", r.Date.Format("2006-01-02"), r.SecurityID, r.Score, r.Signals)
	}
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

func parseFill(s string) (indicator.FillMode, error) {
	switch s {
	case "strict":
		return indicator.FillStrict, nil
	case "widen":
		return indicator.FillWiden, nil
	}
	return 0, fmt.Errorf("unknown fill mode %q: must be strict or widen", s)
}
