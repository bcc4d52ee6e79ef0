package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// ScoreStore is an in-memory implementation of storage.ScoreStore.
type ScoreStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ScoreRecord // keyed by score_id
}

// NewScoreStore creates a new in-memory score store.
func NewScoreStore() *ScoreStore {
	return &ScoreStore{
		data: make(map[string]*domain.ScoreRecord),
	}
}

// InsertBulk adds multiple score records. Fails entire batch on duplicate.
func (s *ScoreStore) InsertBulk(_ context.Context, records []*domain.ScoreRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.ScoreID == "" || r.SecurityID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[r.ScoreID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[r.ScoreID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.ScoreID] = struct{}{}
	}

	for _, r := range records {
		recordCopy := *r
		recordCopy.Signals = append([]string(nil), r.Signals...)
		s.data[r.ScoreID] = &recordCopy
	}

	return nil
}

// GetBySecurityID retrieves all records for a security, ordered by date ASC.
func (s *ScoreStore) GetBySecurityID(_ context.Context, securityID string) ([]*domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ScoreRecord
	for _, r := range s.data {
		if r.SecurityID == securityID {
			recordCopy := *r
			recordCopy.Signals = append([]string(nil), r.Signals...)
			result = append(result, &recordCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

// GetByDateRange retrieves records for a security within [start, end] (inclusive).
func (s *ScoreStore) GetByDateRange(_ context.Context, securityID string, start, end time.Time) ([]*domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ScoreRecord
	for _, r := range s.data {
		if r.SecurityID == securityID && !r.Date.Before(start) && !r.Date.After(end) {
			recordCopy := *r
			recordCopy.Signals = append([]string(nil), r.Signals...)
			result = append(result, &recordCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

var _ storage.ScoreStore = (*ScoreStore)(nil)
