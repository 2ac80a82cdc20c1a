package driven

import (
	"context"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

// ArchiveReader opens zip-format archives.
type ArchiveReader interface {
	// List returns the archive's entries in archive order without extracting.
	// Returns domain.ErrArchiveNotFound or domain.ErrArchiveCorrupt.
	List(ctx context.Context, archivePath string) ([]domain.ArchiveEntry, error)

	// Extract writes every entry under stagingDir, preserving the archive's
	// relative structure, and returns the entries in archive order.
	// On error, files already written are left for the caller to discard.
	Extract(ctx context.Context, archivePath, stagingDir string) ([]domain.ArchiveEntry, error)
}

// DocumentInspector examines an extracted document file.
type DocumentInspector interface {
	// Inspect returns what it can learn about the document at path.
	// Returns domain.ErrInvalidInput if the file is not a recognised
	// document package; any other error is an I/O failure.
	Inspect(ctx context.Context, path string) (*domain.DocumentInfo, error)
}
