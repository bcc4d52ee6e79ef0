package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/observability"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// PriceBarStore implements storage.PriceBarStore using PostgreSQL.
type PriceBarStore struct {
	pool *Pool
}

// NewPriceBarStore creates a new PriceBarStore.
func NewPriceBarStore(pool *Pool) *PriceBarStore {
	return &PriceBarStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceBarStore = (*PriceBarStore)(nil)

// InsertBulk adds multiple bars atomically. Fails the entire batch on a
// duplicate (security_id, trade_date).
func (s *PriceBarStore) InsertBulk(ctx context.Context, bars []*domain.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	for _, b := range bars {
		if b == nil || b.SecurityID == "" || b.Date.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO price_bars (
			security_id, trade_date, open, high, low, close, volume
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, b := range bars {
		_, err := tx.Exec(ctx, query,
			b.SecurityID,
			b.Date,
			b.Open,
			b.High,
			b.Low,
			b.Close,
			b.Volume,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert price bar in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetBySecurityID retrieves all bars for a security, ordered by date ASC.
func (s *PriceBarStore) GetBySecurityID(ctx context.Context, securityID string) ([]*domain.PriceBar, error) {
	query := `
		SELECT security_id, trade_date, open, high, low, close, volume
		FROM price_bars
		WHERE security_id = $1
		ORDER BY trade_date ASC
	`

	rows, err := s.pool.Query(ctx, query, securityID)
	if err != nil {
		return nil, fmt.Errorf("get bars by security id: %w", err)
	}
	defer rows.Close()

	return scanPriceBars(rows)
}

// GetByDateRange retrieves bars for a security within [start, end]
// (inclusive), ordered by date ASC.
func (s *PriceBarStore) GetByDateRange(ctx context.Context, securityID string, start, end time.Time) ([]*domain.PriceBar, error) {
	query := `
		SELECT security_id, trade_date, open, high, low, close, volume
		FROM price_bars
		WHERE security_id = $1 AND trade_date >= $2 AND trade_date <= $3
		ORDER BY trade_date ASC
	`

	queryStart := time.Now()
	rows, err := s.pool.Query(ctx, query, securityID, start, end)
	observability.RecordDBQuery("postgres", "price_bars_range", time.Since(queryStart).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get bars by date range: %w", err)
	}
	defer rows.Close()

	return scanPriceBars(rows)
}

// scanPriceBars scans multiple rows into a slice of PriceBar.
func scanPriceBars(rows pgx.Rows) ([]*domain.PriceBar, error) {
	var bars []*domain.PriceBar

	for rows.Next() {
		var b domain.PriceBar

		err := rows.Scan(
			&b.SecurityID,
			&b.Date,
			&b.Open,
			&b.High,
			&b.Low,
			&b.Close,
			&b.Volume,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price bar row: %w", err)
		}

		b.Date = b.Date.UTC()
		bars = append(bars, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price bar rows: %w", err)
	}

	return bars, nil
}
