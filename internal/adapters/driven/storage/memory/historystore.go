package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	entries map[string]domain.HistoryEntry
	order   map[string]int
	seq     int
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		entries: make(map[string]domain.HistoryEntry),
		order:   make(map[string]int),
	}
}

// Save stores or replaces a job entry.
func (s *HistoryStore) Save(_ context.Context, entry domain.HistoryEntry) error {
	if entry.JobID == "" {
		return fmt.Errorf("%w: job ID is empty", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.order[entry.JobID]; !ok {
		s.seq++
		s.order[entry.JobID] = s.seq
	}
	s.entries[entry.JobID] = entry
	return nil
}

// Get retrieves a job entry by ID.
func (s *HistoryStore) Get(_ context.Context, jobID string) (*domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, jobID)
	}
	return &entry, nil
}

// Recent returns up to limit entries, most recently finished first.
// Ties are broken by insertion order, newest first.
func (s *HistoryStore) Recent(_ context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.HistoryEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.FinishedAt.Equal(b.FinishedAt) {
			return a.FinishedAt.After(b.FinishedAt)
		}
		return s.order[a.JobID] > s.order[b.JobID]
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Close is a no-op for the memory store.
func (s *HistoryStore) Close() error {
	return nil
}
