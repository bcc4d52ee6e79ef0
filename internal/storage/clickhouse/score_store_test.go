package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/storage"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func record(scoreID, securityID string, date time.Time, score float64) *domain.ScoreRecord {
	return &domain.ScoreRecord{
		ScoreID:    scoreID,
		SecurityID: securityID,
		Date:       date,
		Score:      score,
		Signals:    []string{"macd_positive"},
		CreatedAt:  1700000000000,
	}
}

func TestScoreStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScoreStore(conn)
	ctx := context.Background()

	records := []*domain.ScoreRecord{
		record("s2", "2330", day(2024, 1, 3), 72.5),
		record("s1", "2330", day(2024, 1, 2), 65.0),
		record("s3", "2454", day(2024, 1, 2), 80.0),
	}
	require.NoError(t, store.InsertBulk(ctx, records))

	got, err := store.GetBySecurityID(ctx, "2330")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by date regardless of insertion order.
	assert.Equal(t, "s1", got[0].ScoreID)
	assert.Equal(t, 65.0, got[0].Score)
	assert.Equal(t, day(2024, 1, 2), got[0].Date)
	assert.Equal(t, []string{"macd_positive"}, got[0].Signals)
	assert.Equal(t, int64(1700000000000), got[0].CreatedAt)
	assert.Equal(t, "s2", got[1].ScoreID)
}

func TestScoreStore_InsertBulkDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScoreStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.ScoreRecord{
		record("s1", "2330", day(2024, 1, 2), 65.0),
	}))

	// Duplicate against an existing row.
	err := store.InsertBulk(ctx, []*domain.ScoreRecord{
		record("s1", "2330", day(2024, 1, 2), 65.0),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Intra-batch duplicate.
	err = store.InsertBulk(ctx, []*domain.ScoreRecord{
		record("s9", "2330", day(2024, 1, 9), 65.0),
		record("s9", "2330", day(2024, 1, 9), 65.0),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestScoreStore_InsertBulkInvalid(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScoreStore(conn)
	ctx := context.Background()

	assert.NoError(t, store.InsertBulk(ctx, nil))
	assert.ErrorIs(t, store.InsertBulk(ctx, []*domain.ScoreRecord{{ScoreID: ""}}), storage.ErrInvalidInput)
}

func TestScoreStore_GetByDateRangeInclusive(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScoreStore(conn)
	ctx := context.Background()

	var records []*domain.ScoreRecord
	ids := []string{"a", "b", "c", "d", "e"}
	for i := 0; i < 5; i++ {
		records = append(records, record(ids[i], "2330", day(2024, 1, 2+i), 50+float64(i)))
	}
	require.NoError(t, store.InsertBulk(ctx, records))

	got, err := store.GetByDateRange(ctx, "2330", day(2024, 1, 3), day(2024, 1, 5))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, day(2024, 1, 3), got[0].Date)
	assert.Equal(t, day(2024, 1, 5), got[2].Date)
}

func TestScoreStore_GetUnknownSecurityEmpty(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewScoreStore(conn)

	got, err := store.GetBySecurityID(context.Background(), "0000")
	require.NoError(t, err)
	assert.Empty(t, got)
}
