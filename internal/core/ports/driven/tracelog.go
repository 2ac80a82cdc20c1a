package driven

import (
	"context"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

// TraceLog appends one record per finished job to the shared log files.
// Successful jobs go to the combined log; failed jobs to the error log.
// Implementations must make each record a single atomic append so that
// concurrent processes never interleave partial records.
type TraceLog interface {
	// Record appends the job's record. Errors wrap domain.ErrLogWrite.
	Record(ctx context.Context, rec *domain.JobRecord) error

	// ReportLogFailure writes a note about a failed trace write to the
	// error log, best-effort.
	ReportLogFailure(ctx context.Context, rec *domain.JobRecord, cause error) error
}
