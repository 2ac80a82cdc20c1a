package domain

import "time"

// JobRecord is the outcome of one extraction job.
// It is what the trace log writes and what the history store keeps.
type JobRecord struct {
	Job ExtractionJob

	// State is StateDone or StateFailed for a finished job.
	State JobState

	// Classification is zero if the job failed before classifying.
	Classification ClassificationResult

	// Decision is zero if the job failed before resolving.
	Decision ExtractionDecision

	// EntryCount is the number of archive entries extracted to staging.
	EntryCount int

	// Files are the final absolute paths of placed files, in archive order.
	Files []string

	// Err is the failure cause for StateFailed.
	Err error

	// FinishedAt is when the job reached a terminal state.
	FinishedAt time.Time
}

// Succeeded reports whether the job reached StateDone.
func (r *JobRecord) Succeeded() bool {
	return r.State == StateDone
}

// Duration returns how long the job ran.
func (r *JobRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.Job.RequestedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.Job.RequestedAt)
}

// ErrorMessage returns the failure text, or "" on success.
func (r *JobRecord) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// DocumentPath returns the placed document for a single-document job.
func (r *JobRecord) DocumentPath() string {
	if !r.Classification.IsSingleDocument() || len(r.Files) == 0 {
		return ""
	}
	return r.Files[0]
}

// HistoryEntry is a stored job summary, as listed by the history command.
type HistoryEntry struct {
	JobID           string
	ArchivePath     string
	TargetDirectory string
	Kind            ContentKind
	State           JobState
	FileCount       int
	ErrorCategory   string
	ErrorMessage    string
	RequestedAt     time.Time
	FinishedAt      time.Time
}

// NewHistoryEntry summarises a finished job record.
func NewHistoryEntry(r *JobRecord) HistoryEntry {
	return HistoryEntry{
		JobID:           r.Job.ID,
		ArchivePath:     r.Job.ArchivePath,
		TargetDirectory: r.Decision.TargetDirectory,
		Kind:            r.Classification.Kind,
		State:           r.State,
		FileCount:       len(r.Files),
		ErrorCategory:   ErrorCategory(r.Err),
		ErrorMessage:    r.ErrorMessage(),
		RequestedAt:     r.Job.RequestedAt,
		FinishedAt:      r.FinishedAt,
	}
}
