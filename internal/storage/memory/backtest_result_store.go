package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// BacktestResultStore is an in-memory implementation of storage.BacktestResultStore.
type BacktestResultStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BacktestResult // keyed by result_id
}

// NewBacktestResultStore creates a new in-memory backtest result store.
func NewBacktestResultStore() *BacktestResultStore {
	return &BacktestResultStore{
		data: make(map[string]*domain.BacktestResult),
	}
}

// Insert adds a new result. Returns ErrDuplicateKey if result_id exists.
func (s *BacktestResultStore) Insert(_ context.Context, r *domain.BacktestResult) error {
	if r == nil || r.ResultID == "" || r.SecurityID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ResultID]; exists {
		return storage.ErrDuplicateKey
	}

	resultCopy := *r
	s.data[r.ResultID] = &resultCopy
	return nil
}

// GetBySegment retrieves all results for a segment, ordered by
// (entry_threshold, exit_threshold, security_id) ASC.
func (s *BacktestResultStore) GetBySegment(_ context.Context, segment string) ([]*domain.BacktestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BacktestResult
	for _, r := range s.data {
		if r.Segment == segment {
			resultCopy := *r
			result = append(result, &resultCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.EntryThreshold != b.EntryThreshold {
			return a.EntryThreshold < b.EntryThreshold
		}
		if a.ExitThreshold != b.ExitThreshold {
			return a.ExitThreshold < b.ExitThreshold
		}
		return a.SecurityID < b.SecurityID
	})

	return result, nil
}

var _ storage.BacktestResultStore = (*BacktestResultStore)(nil)
