package services

import (
	"context"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driven"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// DefaultHistoryLimit is how many jobs Recent returns for a non-positive limit.
const DefaultHistoryLimit = 20

// HistoryService reads the job history store.
type HistoryService struct {
	store driven.HistoryStore
}

// NewHistoryService creates a history service. store may be nil when
// history is disabled.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// Enabled reports whether a history store is configured.
func (s *HistoryService) Enabled() bool {
	return s.store != nil
}

// Recent returns up to limit finished jobs, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if s.store == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.Recent(ctx, limit)
}

// Get retrieves one job by ID.
func (s *HistoryService) Get(ctx context.Context, jobID string) (*domain.HistoryEntry, error) {
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	return s.store.Get(ctx, jobID)
}
