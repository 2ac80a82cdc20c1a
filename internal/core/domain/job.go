package domain

import (
	"path/filepath"
	"time"
)

// ExtractionJob is one request to extract an archive.
// It is created when the process is invoked and never modified afterwards.
type ExtractionJob struct {
	// ID correlates trace lines and history rows for this job.
	ID string

	// ArchivePath is the absolute path of the archive.
	ArchivePath string

	// RequestedAt is when the job was created.
	RequestedAt time.Time
}

// NewExtractionJob creates a job for archivePath. The path must already be absolute.
func NewExtractionJob(id, archivePath string, requestedAt time.Time) (ExtractionJob, error) {
	if id == "" || archivePath == "" || !filepath.IsAbs(archivePath) {
		return ExtractionJob{}, ErrInvalidInput
	}
	return ExtractionJob{
		ID:          id,
		ArchivePath: filepath.Clean(archivePath),
		RequestedAt: requestedAt,
	}, nil
}

// ArchiveDir returns the directory containing the archive.
func (j ExtractionJob) ArchiveDir() string {
	return filepath.Dir(j.ArchivePath)
}

// ArchiveName returns the archive file name without directory.
func (j ExtractionJob) ArchiveName() string {
	return filepath.Base(j.ArchivePath)
}
