package domain

import "errors"

// Domain errors represent extraction failures by category.
// Adapters wrap them with fmt.Errorf("...: %w", ...) so that callers can
// classify any failure with errors.Is.
var (
	// ErrArchiveNotFound indicates the archive path does not exist or cannot be opened.
	ErrArchiveNotFound = errors.New("archive not found")

	// ErrArchiveCorrupt indicates the archive is malformed or an entry failed to decompress.
	ErrArchiveCorrupt = errors.New("archive corrupt")

	// ErrMissingConfiguration indicates a required setting is unset.
	// Raised when a single document must be routed but OUTPUT_FOLDER is empty.
	ErrMissingConfiguration = errors.New("missing configuration")

	// ErrFinalizeCollision indicates a staged file would replace an existing
	// file and the collision policy forbids it.
	ErrFinalizeCollision = errors.New("finalize collision")

	// ErrFinalizeIO indicates moving staged output into place failed.
	ErrFinalizeIO = errors.New("finalize I/O error")

	// ErrLogWrite indicates a trace record could not be appended.
	// It never changes the outcome of an extraction.
	ErrLogWrite = errors.New("log write failure")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates the job state machine was driven out of order.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Exit codes returned to the invoking shell.
const (
	ExitOK                   = 0
	ExitFailure              = 1
	ExitArchiveNotFound      = 2
	ExitArchiveCorrupt       = 3
	ExitMissingConfiguration = 4
	ExitFinalizeCollision    = 5
	ExitFinalizeIO           = 6
)

// categories is ordered: the first matching sentinel wins.
var categories = []struct {
	err  error
	name string
	code int
}{
	{ErrArchiveNotFound, "ArchiveNotFound", ExitArchiveNotFound},
	{ErrArchiveCorrupt, "ArchiveCorrupt", ExitArchiveCorrupt},
	{ErrMissingConfiguration, "MissingConfiguration", ExitMissingConfiguration},
	{ErrFinalizeCollision, "FinalizeCollision", ExitFinalizeCollision},
	{ErrFinalizeIO, "FinalizeIOError", ExitFinalizeIO},
	{ErrLogWrite, "LogWriteFailure", ExitFailure},
	{ErrInvalidInput, "InvalidInput", ExitFailure},
}

// ErrorCategory returns the name written to the error log for err.
// Unknown errors are reported as "Error"; nil returns "".
func ErrorCategory(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range categories {
		if errors.Is(err, c.err) {
			return c.name
		}
	}
	return "Error"
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	for _, c := range categories {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ExitFailure
}
