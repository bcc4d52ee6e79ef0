package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// FundamentalsStore implements storage.FundamentalsStore using PostgreSQL.
type FundamentalsStore struct {
	pool *Pool
}

// NewFundamentalsStore creates a new FundamentalsStore.
func NewFundamentalsStore(pool *Pool) *FundamentalsStore {
	return &FundamentalsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FundamentalsStore = (*FundamentalsStore)(nil)

// InsertEPS adds quarterly EPS rows atomically. Fails the entire batch on a
// duplicate (security_id, year, quarter).
func (s *FundamentalsStore) InsertEPS(ctx context.Context, rows []*domain.QuarterlyEPS) error {
	if len(rows) == 0 {
		return nil
	}
	for _, r := range rows {
		if r == nil || r.SecurityID == "" || r.Quarter < 1 || r.Quarter > 4 {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO quarterly_eps (
			security_id, year, quarter, eps
		) VALUES ($1, $2, $3, $4)
	`

	for _, r := range rows {
		_, err := tx.Exec(ctx, query, r.SecurityID, r.Year, r.Quarter, r.EPS)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert quarterly eps in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// InsertRevenue adds monthly revenue rows atomically. Fails the entire batch
// on a duplicate (security_id, year, month).
func (s *FundamentalsStore) InsertRevenue(ctx context.Context, rows []*domain.MonthlyRevenue) error {
	if len(rows) == 0 {
		return nil
	}
	for _, r := range rows {
		if r == nil || r.SecurityID == "" || r.Month < 1 || r.Month > 12 {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO monthly_revenue (
			security_id, year, month, revenue
		) VALUES ($1, $2, $3, $4)
	`

	for _, r := range rows {
		_, err := tx.Exec(ctx, query, r.SecurityID, r.Year, r.Month, r.Revenue)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert monthly revenue in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// LatestEPS retrieves up to limit quarters for a security, newest first.
func (s *FundamentalsStore) LatestEPS(ctx context.Context, securityID string, limit int) ([]*domain.QuarterlyEPS, error) {
	query := `
		SELECT security_id, year, quarter, eps
		FROM quarterly_eps
		WHERE security_id = $1
		ORDER BY year DESC, quarter DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, securityID, limit)
	if err != nil {
		return nil, fmt.Errorf("get latest eps: %w", err)
	}
	defer rows.Close()

	return scanEPS(rows)
}

// LatestRevenue retrieves up to limit months for a security, newest first.
func (s *FundamentalsStore) LatestRevenue(ctx context.Context, securityID string, limit int) ([]*domain.MonthlyRevenue, error) {
	query := `
		SELECT security_id, year, month, revenue
		FROM monthly_revenue
		WHERE security_id = $1
		ORDER BY year DESC, month DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, securityID, limit)
	if err != nil {
		return nil, fmt.Errorf("get latest revenue: %w", err)
	}
	defer rows.Close()

	return scanRevenue(rows)
}

// ListSecurityIDsWithEPS returns IDs of securities with at least one nonzero
// EPS quarter, sorted ASC.
func (s *FundamentalsStore) ListSecurityIDsWithEPS(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT security_id
		FROM quarterly_eps
		WHERE eps != 0
		ORDER BY security_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list security ids with eps: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan security id row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate security id rows: %w", err)
	}
	return ids, nil
}

// scanEPS scans multiple rows into a slice of QuarterlyEPS.
func scanEPS(rows pgx.Rows) ([]*domain.QuarterlyEPS, error) {
	var out []*domain.QuarterlyEPS

	for rows.Next() {
		var r domain.QuarterlyEPS
		if err := rows.Scan(&r.SecurityID, &r.Year, &r.Quarter, &r.EPS); err != nil {
			return nil, fmt.Errorf("scan quarterly eps row: %w", err)
		}
		out = append(out, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quarterly eps rows: %w", err)
	}
	return out, nil
}

// scanRevenue scans multiple rows into a slice of MonthlyRevenue.
func scanRevenue(rows pgx.Rows) ([]*domain.MonthlyRevenue, error) {
	var out []*domain.MonthlyRevenue

	for rows.Next() {
		var r domain.MonthlyRevenue
		if err := rows.Scan(&r.SecurityID, &r.Year, &r.Month, &r.Revenue); err != nil {
			return nil, fmt.Errorf("scan monthly revenue row: %w", err)
		}
		out = append(out, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly revenue rows: %w", err)
	}
	return out, nil
}
