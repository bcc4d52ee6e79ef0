package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/observability"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// ScoreStore implements storage.ScoreStore using ClickHouse.
type ScoreStore struct {
	conn *Conn
}

// NewScoreStore creates a new ScoreStore.
func NewScoreStore(conn *Conn) *ScoreStore {
	return &ScoreStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ScoreStore = (*ScoreStore)(nil)

// InsertBulk adds multiple score records. Fails the entire batch on a
// duplicate score_id. MergeTree does not enforce uniqueness, so duplicates
// are checked explicitly before the batch is sent.
func (s *ScoreStore) InsertBulk(ctx context.Context, records []*domain.ScoreRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.ScoreID == "" || r.SecurityID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[r.ScoreID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[r.ScoreID] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, r := range records {
		exists, err := s.exists(ctx, r.ScoreID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO score_records (
			score_id, security_id, trade_date, score, signals, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			r.ScoreID, r.SecurityID, r.Date,
			r.Score, r.Signals, uint64(r.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	sendStart := time.Now()
	err = batch.Send()
	observability.RecordDBQuery("clickhouse", "score_records_insert", time.Since(sendStart).Seconds(), err)
	if err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySecurityID retrieves all records for a security, ordered by date ASC.
func (s *ScoreStore) GetBySecurityID(ctx context.Context, securityID string) ([]*domain.ScoreRecord, error) {
	query := `
		SELECT score_id, security_id, trade_date, score, signals, created_at
		FROM score_records
		WHERE security_id = ?
		ORDER BY trade_date ASC
	`

	rows, err := s.conn.Query(ctx, query, securityID)
	if err != nil {
		return nil, fmt.Errorf("query by security id: %w", err)
	}
	defer rows.Close()

	return scanScoreRecords(rows)
}

// GetByDateRange retrieves records for a security within [start, end]
// (inclusive), ordered by date ASC.
func (s *ScoreStore) GetByDateRange(ctx context.Context, securityID string, start, end time.Time) ([]*domain.ScoreRecord, error) {
	query := `
		SELECT score_id, security_id, trade_date, score, signals, created_at
		FROM score_records
		WHERE security_id = ? AND trade_date >= ? AND trade_date <= ?
		ORDER BY trade_date ASC
	`

	rows, err := s.conn.Query(ctx, query, securityID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanScoreRecords(rows)
}

// exists checks if a record with the given score_id exists.
func (s *ScoreStore) exists(ctx context.Context, scoreID string) (bool, error) {
	query := `SELECT count(*) FROM score_records WHERE score_id = ?`

	var count uint64
	err := s.conn.QueryRow(ctx, query, scoreID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanScoreRecords scans multiple rows.
func scanScoreRecords(rows driver.Rows) ([]*domain.ScoreRecord, error) {
	var records []*domain.ScoreRecord

	for rows.Next() {
		var r domain.ScoreRecord
		var createdAt uint64

		err := rows.Scan(
			&r.ScoreID, &r.SecurityID, &r.Date,
			&r.Score, &r.Signals, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan score record row: %w", err)
		}

		r.Date = r.Date.UTC()
		r.CreatedAt = int64(createdAt)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score record rows: %w", err)
	}

	return records, nil
}
