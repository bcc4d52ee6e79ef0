package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/q5089877/stock-analysis/internal/domain"
	"github.com/q5089877/stock-analysis/internal/storage"
)

// SecurityStore is an in-memory implementation of storage.SecurityStore.
type SecurityStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Security // keyed by security_id
}

// NewSecurityStore creates a new in-memory security store.
func NewSecurityStore() *SecurityStore {
	return &SecurityStore{
		data: make(map[string]*domain.Security),
	}
}

// Insert adds a new security. Returns ErrDuplicateKey if security_id exists.
func (s *SecurityStore) Insert(_ context.Context, sec *domain.Security) error {
	if sec == nil || sec.SecurityID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sec.SecurityID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	secCopy := *sec
	s.data[sec.SecurityID] = &secCopy
	return nil
}

// GetByID retrieves a security by its ID. Returns ErrNotFound if not exists.
func (s *SecurityStore) GetByID(_ context.Context, securityID string) (*domain.Security, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sec, exists := s.data[securityID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	secCopy := *sec
	return &secCopy, nil
}

// GetBySegment retrieves all securities in a segment, ordered by ID ASC.
func (s *SecurityStore) GetBySegment(_ context.Context, segment string) ([]*domain.Security, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Security
	for _, sec := range s.data {
		if sec.Segment == segment {
			secCopy := *sec
			result = append(result, &secCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SecurityID < result[j].SecurityID
	})

	return result, nil
}

// ListSegments returns the distinct segments, sorted ASC.
func (s *SecurityStore) ListSegments(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, sec := range s.data {
		seen[sec.Segment] = struct{}{}
	}

	result := make([]string, 0, len(seen))
	for seg := range seen {
		result = append(result, seg)
	}
	sort.Strings(result)

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.SecurityStore = (*SecurityStore)(nil)
