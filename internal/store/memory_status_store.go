package store

import (
	"context"
	"sync"

	"github.com/hr95savage/screenshotter/internal/types"
)

// MemoryStatusStore keeps status records in process memory.
type MemoryStatusStore struct {
	mu       sync.RWMutex
	statuses map[string]types.RunStatus
}

// NewMemoryStatusStore returns an empty in-memory store.
func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{statuses: make(map[string]types.RunStatus)}
}

// SetStatus replaces the record for status.RunID.
func (s *MemoryStatusStore) SetStatus(_ context.Context, status types.RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[status.RunID] = status
	return nil
}

// GetStatus returns the record for runID, if any.
func (s *MemoryStatusStore) GetStatus(_ context.Context, runID string) (types.RunStatus, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[runID]
	return status, ok, nil
}
