package storage

import (
	"context"
	"time"

	"github.com/q5089877/stock-analysis/internal/domain"
)

// SecurityStore provides access to the securities table.
type SecurityStore interface {
	// Insert adds a new security. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, s *domain.Security) error

	// GetByID retrieves a security by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, securityID string) (*domain.Security, error)

	// GetBySegment retrieves all securities in a segment, ordered by ID ASC.
	GetBySegment(ctx context.Context, segment string) ([]*domain.Security, error)

	// ListSegments returns the distinct segments, sorted ASC.
	ListSegments(ctx context.Context) ([]string, error)
}

// PriceBarStore provides access to daily OHLC history.
type PriceBarStore interface {
	// InsertBulk adds multiple bars. Fails the entire batch on any duplicate
	// (security_id, date).
	InsertBulk(ctx context.Context, bars []*domain.PriceBar) error

	// GetBySecurityID retrieves all bars for a security, ordered by date ASC.
	GetBySecurityID(ctx context.Context, securityID string) ([]*domain.PriceBar, error)

	// GetByDateRange retrieves bars for a security within [start, end]
	// (inclusive), ordered by date ASC.
	GetByDateRange(ctx context.Context, securityID string, start, end time.Time) ([]*domain.PriceBar, error)
}

// FundamentalsStore provides access to quarterly EPS and monthly revenue.
type FundamentalsStore interface {
	// InsertEPS adds quarterly EPS rows. Fails the batch on duplicates.
	InsertEPS(ctx context.Context, rows []*domain.QuarterlyEPS) error

	// InsertRevenue adds monthly revenue rows. Fails the batch on duplicates.
	InsertRevenue(ctx context.Context, rows []*domain.MonthlyRevenue) error

	// LatestEPS retrieves up to limit quarters for a security, ordered by
	// (year, quarter) DESC, newest first.
	LatestEPS(ctx context.Context, securityID string, limit int) ([]*domain.QuarterlyEPS, error)

	// LatestRevenue retrieves up to limit months for a security, ordered by
	// (year, month) DESC, newest first.
	LatestRevenue(ctx context.Context, securityID string, limit int) ([]*domain.MonthlyRevenue, error)

	// ListSecurityIDsWithEPS returns IDs of securities that have at least one
	// nonzero EPS quarter, sorted ASC. Used to sample backtest pools.
	ListSecurityIDsWithEPS(ctx context.Context) ([]string, error)
}

// ScoreStore provides access to composite score records.
type ScoreStore interface {
	// InsertBulk adds score records. Fails the batch on duplicate score IDs.
	InsertBulk(ctx context.Context, records []*domain.ScoreRecord) error

	// GetBySecurityID retrieves all records for a security, ordered by date ASC.
	GetBySecurityID(ctx context.Context, securityID string) ([]*domain.ScoreRecord, error)

	// GetByDateRange retrieves records for a security within [start, end]
	// (inclusive), ordered by date ASC.
	GetByDateRange(ctx context.Context, securityID string, start, end time.Time) ([]*domain.ScoreRecord, error)
}

// BacktestResultStore provides access to realized backtest outcomes.
type BacktestResultStore interface {
	// Insert adds one result. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, r *domain.BacktestResult) error

	// GetBySegment retrieves all results for a segment, ordered by
	// (entry_threshold, exit_threshold, security_id) ASC.
	GetBySegment(ctx context.Context, segment string) ([]*domain.BacktestResult, error)
}
