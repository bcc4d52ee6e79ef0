package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// FundamentalsStore is an in-memory implementation of storage.FundamentalsStore.
type FundamentalsStore struct {
	mu       sync.RWMutex
	eps      map[string]*domain.QuarterlyEPS   // keyed by (security_id, year, quarter)
	revenues map[string]*domain.MonthlyRevenue // keyed by (security_id, year, month)
}

// NewFundamentalsStore creates a new in-memory fundamentals store.
func NewFundamentalsStore() *FundamentalsStore {
	return &FundamentalsStore{
		eps:      make(map[string]*domain.QuarterlyEPS),
		revenues: make(map[string]*domain.MonthlyRevenue),
	}
}

// epsKey generates a unique key for a quarterly EPS row.
func epsKey(securityID string, year, quarter int) string {
	return fmt.Sprintf("%s|%d|%d", securityID, year, quarter)
}

// revenueKey generates a unique key for a monthly revenue row.
func revenueKey(securityID string, year, month int) string {
	return fmt.Sprintf("%s|%d|%d", securityID, year, month)
}

// InsertEPS adds quarterly EPS rows. Fails entire batch on duplicate.
func (s *FundamentalsStore) InsertEPS(_ context.Context, rows []*domain.QuarterlyEPS) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.SecurityID == "" {
			return storage.ErrInvalidInput
		}
		key := epsKey(r.SecurityID, r.Year, r.Quarter)

		if _, exists := s.eps[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rows {
		rowCopy := *r
		s.eps[epsKey(r.SecurityID, r.Year, r.Quarter)] = &rowCopy
	}

	return nil
}

// InsertRevenue adds monthly revenue rows. Fails entire batch on duplicate.
func (s *FundamentalsStore) InsertRevenue(_ context.Context, rows []*domain.MonthlyRevenue) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.SecurityID == "" {
			return storage.ErrInvalidInput
		}
		key := revenueKey(r.SecurityID, r.Year, r.Month)

		if _, exists := s.revenues[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rows {
		rowCopy := *r
		s.revenues[revenueKey(r.SecurityID, r.Year, r.Month)] = &rowCopy
	}

	return nil
}

// LatestEPS retrieves up to limit quarters, ordered by (year, quarter) DESC.
func (s *FundamentalsStore) LatestEPS(_ context.Context, securityID string, limit int) ([]*domain.QuarterlyEPS, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.QuarterlyEPS
	for _, r := range s.eps {
		if r.SecurityID == securityID {
			rowCopy := *r
			result = append(result, &rowCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].Quarter > result[j].Quarter
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// LatestRevenue retrieves up to limit months, ordered by (year, month) DESC.
func (s *FundamentalsStore) LatestRevenue(_ context.Context, securityID string, limit int) ([]*domain.MonthlyRevenue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MonthlyRevenue
	for _, r := range s.revenues {
		if r.SecurityID == securityID {
			rowCopy := *r
			result = append(result, &rowCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].Month > result[j].Month
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// ListSecurityIDsWithEPS returns IDs with at least one nonzero EPS quarter,
// sorted ASC.
func (s *FundamentalsStore) ListSecurityIDsWithEPS(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, r := range s.eps {
		if r.EPS != 0 {
			seen[r.SecurityID] = struct{}{}
		}
	}

	result := make([]string, 0, len(seen))
	for id := range seen {
		result = append(result, id)
	}
	sort.Strings(result)

	return result, nil
}

var _ storage.FundamentalsStore = (*FundamentalsStore)(nil)
