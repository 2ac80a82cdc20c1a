package driving

import (
	"context"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

// HistoryService reads stored job history.
type HistoryService interface {
	// Enabled reports whether history is being recorded.
	Enabled() bool

	// Recent returns up to limit finished jobs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error)

	// Get retrieves one job by ID.
	Get(ctx context.Context, jobID string) (*domain.HistoryEntry, error)
}
