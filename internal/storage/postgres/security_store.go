package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// SecurityStore implements storage.SecurityStore using PostgreSQL.
type SecurityStore struct {
	pool *Pool
}

// NewSecurityStore creates a new SecurityStore.
func NewSecurityStore(pool *Pool) *SecurityStore {
	return &SecurityStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SecurityStore = (*SecurityStore)(nil)

// Insert adds a new security. Returns ErrDuplicateKey if security_id exists.
func (s *SecurityStore) Insert(ctx context.Context, sec *domain.Security) error {
	if sec == nil || sec.SecurityID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO securities (
			security_id, name, market, segment, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		sec.SecurityID,
		sec.Name,
		string(sec.Market),
		sec.Segment,
		sec.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert security: %w", err)
	}
	return nil
}

// GetByID retrieves a security by its ID. Returns ErrNotFound if not exists.
func (s *SecurityStore) GetByID(ctx context.Context, securityID string) (*domain.Security, error) {
	query := `
		SELECT security_id, name, market, segment, created_at
		FROM securities
		WHERE security_id = $1
	`

	row := s.pool.QueryRow(ctx, query, securityID)
	sec, err := scanSecurity(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get security by id: %w", err)
	}
	return sec, nil
}

// GetBySegment retrieves all securities in a segment, ordered by ID ASC.
func (s *SecurityStore) GetBySegment(ctx context.Context, segment string) ([]*domain.Security, error) {
	query := `
		SELECT security_id, name, market, segment, created_at
		FROM securities
		WHERE segment = $1
		ORDER BY security_id ASC
	`

	rows, err := s.pool.Query(ctx, query, segment)
	if err != nil {
		return nil, fmt.Errorf("get securities by segment: %w", err)
	}
	defer rows.Close()

	return scanSecurities(rows)
}

// ListSegments returns the distinct segments, sorted ASC.
func (s *SecurityStore) ListSegments(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT segment
		FROM securities
		ORDER BY segment ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var segments []string
	for rows.Next() {
		var segment string
		if err := rows.Scan(&segment); err != nil {
			return nil, fmt.Errorf("scan segment row: %w", err)
		}
		segments = append(segments, segment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segment rows: %w", err)
	}
	return segments, nil
}

// scanSecurity scans a single row into a Security.
func scanSecurity(row pgx.Row) (*domain.Security, error) {
	var sec domain.Security
	var marketStr string

	err := row.Scan(
		&sec.SecurityID,
		&sec.Name,
		&marketStr,
		&sec.Segment,
		&sec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	sec.Market = domain.Market(marketStr)
	return &sec, nil
}

// scanSecurities scans multiple rows into a slice of Security.
func scanSecurities(rows pgx.Rows) ([]*domain.Security, error) {
	var securities []*domain.Security

	for rows.Next() {
		var sec domain.Security
		var marketStr string

		err := rows.Scan(
			&sec.SecurityID,
			&sec.Name,
			&marketStr,
			&sec.Segment,
			&sec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan security row: %w", err)
		}

		sec.Market = domain.Market(marketStr)
		securities = append(securities, &sec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate security rows: %w", err)
	}

	return securities, nil
}
