package driven

import (
	"context"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

// HistoryStore persists summaries of finished jobs.
type HistoryStore interface {
	// Save stores a job summary. Saving the same JobID twice replaces it.
	Save(ctx context.Context, entry domain.HistoryEntry) error

	// Get retrieves a job summary by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, jobID string) (*domain.HistoryEntry, error)

	// Recent returns up to limit summaries, newest first.
	Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error)

	// Close releases the store's resources.
	Close() error
}
