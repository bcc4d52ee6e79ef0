package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// BacktestResultStore implements storage.BacktestResultStore using ClickHouse.
type BacktestResultStore struct {
	conn *Conn
}

// NewBacktestResultStore creates a new BacktestResultStore.
func NewBacktestResultStore(conn *Conn) *BacktestResultStore {
	return &BacktestResultStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BacktestResultStore = (*BacktestResultStore)(nil)

// Insert adds a result. Returns ErrDuplicateKey if result_id exists.
// MergeTree does not enforce uniqueness, so the check is explicit.
func (s *BacktestResultStore) Insert(ctx context.Context, r *domain.BacktestResult) error {
	if r == nil || r.ResultID == "" || r.SecurityID == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, r.ResultID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO backtest_results (
			result_id, security_id, segment, entry_threshold, exit_threshold,
			return_pct, trades, forced_exits, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		r.ResultID, r.SecurityID, r.Segment,
		r.EntryThreshold, r.ExitThreshold, r.ReturnPct,
		uint32(r.Trades), uint32(r.ForcedExits), uint64(r.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetBySegment retrieves all results for a segment, ordered by
// (entry_threshold, exit_threshold, security_id) ASC.
func (s *BacktestResultStore) GetBySegment(ctx context.Context, segment string) ([]*domain.BacktestResult, error) {
	query := `
		SELECT result_id, security_id, segment, entry_threshold, exit_threshold,
		       return_pct, trades, forced_exits, created_at
		FROM backtest_results
		WHERE segment = ?
		ORDER BY entry_threshold ASC, exit_threshold ASC, security_id ASC
	`

	rows, err := s.conn.Query(ctx, query, segment)
	if err != nil {
		return nil, fmt.Errorf("query by segment: %w", err)
	}
	defer rows.Close()

	return scanBacktestResults(rows)
}

// exists checks if a result with the given result_id exists.
func (s *BacktestResultStore) exists(ctx context.Context, resultID string) (bool, error) {
	query := `SELECT count(*) FROM backtest_results WHERE result_id = ?`

	var count uint64
	err := s.conn.QueryRow(ctx, query, resultID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanBacktestResults scans multiple rows.
func scanBacktestResults(rows driver.Rows) ([]*domain.BacktestResult, error) {
	var results []*domain.BacktestResult

	for rows.Next() {
		var r domain.BacktestResult
		var trades, forcedExits uint32
		var createdAt uint64

		err := rows.Scan(
			&r.ResultID, &r.SecurityID, &r.Segment,
			&r.EntryThreshold, &r.ExitThreshold, &r.ReturnPct,
			&trades, &forcedExits, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan backtest result row: %w", err)
		}

		r.Trades = int(trades)
		r.ForcedExits = int(forcedExits)
		r.CreatedAt = int64(createdAt)
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backtest result rows: %w", err)
	}

	return results, nil
}
