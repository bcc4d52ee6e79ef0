package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/storage"
)

func TestFundamentalsStore_LatestEPSNewestFirst(t *testing.T) {
	store := NewFundamentalsStore()
	ctx := context.Background()

	var rows []*domain.QuarterlyEPS
	for year := 2022; year <= 2024; year++ {
		for q := 1; q <= 4; q++ {
			rows = append(rows, &domain.QuarterlyEPS{
				SecurityID: "2330",
				Year:       year,
				Quarter:    q,
				EPS:        float64(year-2022) + float64(q)*0.1,
			})
		}
	}
	if err := store.InsertEPS(ctx, rows); err != nil {
		t.Fatalf("InsertEPS failed: %v", err)
	}

	got, err := store.LatestEPS(ctx, "2330", 8)
	if err != nil {
		t.Fatalf("LatestEPS failed: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("Expected 8 quarters, got %d", len(got))
	}
	if got[0].Year != 2024 || got[0].Quarter != 4 {
		t.Errorf("newest quarter first: got %d Q%d", got[0].Year, got[0].Quarter)
	}
	if got[7].Year != 2023 || got[7].Quarter != 1 {
		t.Errorf("oldest returned quarter: got %d Q%d", got[7].Year, got[7].Quarter)
	}
}

func TestFundamentalsStore_LatestRevenueNewestFirst(t *testing.T) {
	store := NewFundamentalsStore()
	ctx := context.Background()

	var rows []*domain.MonthlyRevenue
	for year := 2023; year <= 2024; year++ {
		for m := 1; m <= 12; m++ {
			rows = append(rows, &domain.MonthlyRevenue{
				SecurityID: "2330",
				Year:       year,
				Month:      m,
				Revenue:    1000,
			})
		}
	}
	if err := store.InsertRevenue(ctx, rows); err != nil {
		t.Fatalf("InsertRevenue failed: %v", err)
	}

	got, err := store.LatestRevenue(ctx, "2330", 24)
	if err != nil {
		t.Fatalf("LatestRevenue failed: %v", err)
	}
	if len(got) != 24 {
		t.Fatalf("Expected 24 months, got %d", len(got))
	}
	if got[0].Year != 2024 || got[0].Month != 12 {
		t.Errorf("newest month first: got %d-%d", got[0].Year, got[0].Month)
	}
}

func TestFundamentalsStore_LimitTruncates(t *testing.T) {
	store := NewFundamentalsStore()
	ctx := context.Background()

	rows := []*domain.QuarterlyEPS{
		{SecurityID: "2330", Year: 2024, Quarter: 1, EPS: 1},
		{SecurityID: "2330", Year: 2024, Quarter: 2, EPS: 2},
		{SecurityID: "2330", Year: 2024, Quarter: 3, EPS: 3},
	}
	if err := store.InsertEPS(ctx, rows); err != nil {
		t.Fatalf("InsertEPS failed: %v", err)
	}

	got, err := store.LatestEPS(ctx, "2330", 2)
	if err != nil {
		t.Fatalf("LatestEPS failed: %v", err)
	}
	if len(got) != 2 || got[0].Quarter != 3 || got[1].Quarter != 2 {
		t.Errorf("unexpected rows %+v", got)
	}
}

func TestFundamentalsStore_DuplicateEPS(t *testing.T) {
	store := NewFundamentalsStore()
	ctx := context.Background()

	row := &domain.QuarterlyEPS{SecurityID: "2330", Year: 2024, Quarter: 1, EPS: 1}
	if err := store.InsertEPS(ctx, []*domain.QuarterlyEPS{row}); err != nil {
		t.Fatalf("InsertEPS failed: %v", err)
	}
	if err := store.InsertEPS(ctx, []*domain.QuarterlyEPS{row}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestFundamentalsStore_ListSecurityIDsWithEPS(t *testing.T) {
	store := NewFundamentalsStore()
	ctx := context.Background()

	rows := []*domain.QuarterlyEPS{
		{SecurityID: "2454", Year: 2024, Quarter: 1, EPS: 2.5},
		{SecurityID: "2330", Year: 2024, Quarter: 1, EPS: 1.2},
		{SecurityID: "9999", Year: 2024, Quarter: 1, EPS: 0}, // zero EPS excluded
	}
	if err := store.InsertEPS(ctx, rows); err != nil {
		t.Fatalf("InsertEPS failed: %v", err)
	}

	ids, err := store.ListSecurityIDsWithEPS(ctx)
	if err != nil {
		t.Fatalf("ListSecurityIDsWithEPS failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "2330" || ids[1] != "2454" {
		t.Errorf("unexpected IDs %v", ids)
	}
}
