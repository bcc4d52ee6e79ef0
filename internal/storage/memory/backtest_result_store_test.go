package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/storage"
)

func TestBacktestResultStore_InsertAndGetBySegment(t *testing.T) {
	store := NewBacktestResultStore()
	ctx := context.Background()

	results := []*domain.BacktestResult{
		{ResultID: "r3", SecurityID: "2454", Segment: "semiconductor", EntryThreshold: 60, ExitThreshold: 40, ReturnPct: 5.5},
		{ResultID: "r1", SecurityID: "2330", Segment: "semiconductor", EntryThreshold: 60, ExitThreshold: 40, ReturnPct: 12.3},
		{ResultID: "r2", SecurityID: "2330", Segment: "semiconductor", EntryThreshold: 55, ExitThreshold: 40, ReturnPct: -1.2},
		{ResultID: "r4", SecurityID: "2884", Segment: "financial", EntryThreshold: 60, ExitThreshold: 40, ReturnPct: 3.0},
	}
	for _, r := range results {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert %s failed: %v", r.ResultID, err)
		}
	}

	got, err := store.GetBySegment(ctx, "semiconductor")
	if err != nil {
		t.Fatalf("GetBySegment failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(got))
	}
	// Ordered by (entry, exit, security_id) ASC.
	if got[0].ResultID != "r2" || got[1].ResultID != "r1" || got[2].ResultID != "r3" {
		t.Errorf("unexpected order: %s %s %s", got[0].ResultID, got[1].ResultID, got[2].ResultID)
	}
}

func TestBacktestResultStore_DuplicateKey(t *testing.T) {
	store := NewBacktestResultStore()
	ctx := context.Background()

	r := &domain.BacktestResult{ResultID: "r1", SecurityID: "2330", Segment: "semiconductor"}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if err := store.Insert(ctx, r); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestBacktestResultStore_InvalidInput(t *testing.T) {
	store := NewBacktestResultStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.BacktestResult{SecurityID: "2330"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty result ID, got %v", err)
	}
}
