package driving

import (
	"context"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

// Extractor runs extraction jobs.
type Extractor interface {
	// Extract runs one job for archivePath, which may be relative to the
	// working directory. The returned record is non-nil whenever a job was
	// created, including on failure; the error is the job's failure cause.
	Extract(ctx context.Context, archivePath string) (*domain.JobRecord, error)

	// Plan lists the archive and reports the classification and target
	// directory it would use, without writing anything.
	Plan(ctx context.Context, archivePath string) (*Plan, error)
}

// Plan is a dry-run view of an extraction.
type Plan struct {
	ArchivePath    string
	Entries        []domain.ArchiveEntry
	Classification domain.ClassificationResult

	// Decision is zero when ResolveErr is set.
	Decision domain.ExtractionDecision

	// ResolveErr is why no target could be resolved, e.g. missing configuration.
	ResolveErr error
}
