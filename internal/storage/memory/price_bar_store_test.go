package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/storage"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testBar(securityID string, date time.Time, close float64) *domain.PriceBar {
	return &domain.PriceBar{
		SecurityID: securityID,
		Date:       date,
		Open:       close - 0.5,
		High:       close + 1,
		Low:        close - 1,
		Close:      close,
		Volume:     150000,
	}
}

func TestPriceBarStore_InsertBulkAndGetSorted(t *testing.T) {
	store := NewPriceBarStore()
	ctx := context.Background()

	// Insert out of order
	bars := []*domain.PriceBar{
		testBar("2330", day(2024, 1, 4), 102),
		testBar("2330", day(2024, 1, 2), 100),
		testBar("2330", day(2024, 1, 3), 101),
		testBar("2454", day(2024, 1, 2), 900),
	}
	if err := store.InsertBulk(ctx, bars); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetBySecurityID(ctx, "2330")
	if err != nil {
		t.Fatalf("GetBySecurityID failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 bars, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Date.Before(got[i].Date) {
			t.Errorf("bars not sorted by date at %d", i)
		}
	}
}

func TestPriceBarStore_DuplicateFailsWholeBatch(t *testing.T) {
	store := NewPriceBarStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.PriceBar{testBar("2330", day(2024, 1, 2), 100)}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	batch := []*domain.PriceBar{
		testBar("2330", day(2024, 1, 3), 101),
		testBar("2330", day(2024, 1, 2), 100), // duplicate
	}
	if err := store.InsertBulk(ctx, batch); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	// The non-duplicate bar must not have been inserted either.
	got, err := store.GetBySecurityID(ctx, "2330")
	if err != nil {
		t.Fatalf("GetBySecurityID failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected batch rollback, found %d bars", len(got))
	}
}

func TestPriceBarStore_IntraBatchDuplicate(t *testing.T) {
	store := NewPriceBarStore()

	batch := []*domain.PriceBar{
		testBar("2330", day(2024, 1, 2), 100),
		testBar("2330", day(2024, 1, 2), 100),
	}
	if err := store.InsertBulk(context.Background(), batch); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestPriceBarStore_GetByDateRangeInclusive(t *testing.T) {
	store := NewPriceBarStore()
	ctx := context.Background()

	var bars []*domain.PriceBar
	for d := 2; d <= 10; d++ {
		bars = append(bars, testBar("2330", day(2024, 1, d), 100+float64(d)))
	}
	if err := store.InsertBulk(ctx, bars); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByDateRange(ctx, "2330", day(2024, 1, 4), day(2024, 1, 7))
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Expected 4 bars in [4,7], got %d", len(got))
	}
	if !got[0].Date.Equal(day(2024, 1, 4)) || !got[3].Date.Equal(day(2024, 1, 7)) {
		t.Errorf("range bounds not inclusive: %v .. %v", got[0].Date, got[3].Date)
	}
}

func TestPriceBarStore_ConcurrentAccess(t *testing.T) {
	store := NewPriceBarStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for d := 0; d < 20; d++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			bar := testBar("2330", day(2024, 1, 1).AddDate(0, 0, d), 100)
			if err := store.InsertBulk(ctx, []*domain.PriceBar{bar}); err != nil {
				t.Errorf("InsertBulk failed: %v", err)
			}
			if _, err := store.GetBySecurityID(ctx, "2330"); err != nil {
				t.Errorf("GetBySecurityID failed: %v", err)
			}
		}(d)
	}
	wg.Wait()

	got, err := store.GetBySecurityID(ctx, "2330")
	if err != nil {
		t.Fatalf("GetBySecurityID failed: %v", err)
	}
	if len(got) != 20 {
		t.Errorf("Expected 20 bars, got %d", len(got))
	}
}
