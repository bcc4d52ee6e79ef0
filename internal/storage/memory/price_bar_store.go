package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// PriceBarStore is an in-memory implementation of storage.PriceBarStore.
type PriceBarStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceBar // keyed by (security_id, date)
}

// NewPriceBarStore creates a new in-memory price bar store.
func NewPriceBarStore() *PriceBarStore {
	return &PriceBarStore{
		data: make(map[string]*domain.PriceBar),
	}
}

// barKey generates a unique key for a daily bar.
func barKey(securityID string, date time.Time) string {
	return fmt.Sprintf("%s|%s", securityID, date.UTC().Format("2006-01-02"))
}

// InsertBulk adds multiple bars. Fails entire batch on duplicate.
func (s *PriceBarStore) InsertBulk(_ context.Context, bars []*domain.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(bars))

	// First pass: check for duplicates (existing + intra-batch)
	for _, b := range bars {
		if b == nil || b.SecurityID == "" {
			return storage.ErrInvalidInput
		}
		key := barKey(b.SecurityID, b.Date)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, b := range bars {
		key := barKey(b.SecurityID, b.Date)
		barCopy := *b
		s.data[key] = &barCopy
	}

	return nil
}

// GetBySecurityID retrieves all bars for a security, ordered by date ASC.
func (s *PriceBarStore) GetBySecurityID(_ context.Context, securityID string) ([]*domain.PriceBar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceBar
	for _, b := range s.data {
		if b.SecurityID == securityID {
			barCopy := *b
			result = append(result, &barCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

// GetByDateRange retrieves bars for a security within [start, end] (inclusive).
func (s *PriceBarStore) GetByDateRange(_ context.Context, securityID string, start, end time.Time) ([]*domain.PriceBar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceBar
	for _, b := range s.data {
		if b.SecurityID == securityID && !b.Date.Before(start) && !b.Date.After(end) {
			barCopy := *b
			result = append(result, &barCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

var _ storage.PriceBarStore = (*PriceBarStore)(nil)
