package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driven"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driving"
	"github.com/Jeff-411/book-extractor/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.Extractor = (*ExtractionService)(nil)

// stagingPrefix names the temporary directories archives are unpacked into.
const stagingPrefix = ".book-extractor-staging-"

// IDGenerator returns a new unique job ID.
type IDGenerator func() string

// ExtractionService runs the extraction pipeline for one archive at a time:
// extract to staging, classify, resolve the target, finalize, then trace.
type ExtractionService struct {
	cfg        domain.Config
	reader     driven.ArchiveReader
	classifier *Classifier
	resolver   *PathResolver
	finalizer  *Finalizer
	trace      driven.TraceLog
	history    driven.HistoryStore
	newID      IDGenerator
	now        func() time.Time
}

// NewExtractionService creates the extraction pipeline.
// inspector and history may be nil.
func NewExtractionService(
	cfg domain.Config,
	reader driven.ArchiveReader,
	inspector driven.DocumentInspector,
	trace driven.TraceLog,
	history driven.HistoryStore,
	newID IDGenerator,
) *ExtractionService {
	if !cfg.VerifyDocuments {
		inspector = nil
	}
	return &ExtractionService{
		cfg:        cfg,
		reader:     reader,
		classifier: NewClassifier(cfg.DocumentExtensions, inspector),
		resolver:   NewPathResolver(cfg),
		finalizer:  NewFinalizer(cfg.CollisionPolicy),
		trace:      trace,
		history:    history,
		newID:      newID,
		now:        time.Now,
	}
}

// Extract runs one job. The record is returned even when the job fails.
func (s *ExtractionService) Extract(ctx context.Context, archivePath string) (*domain.JobRecord, error) {
	if strings.TrimSpace(archivePath) == "" {
		return nil, fmt.Errorf("%w: archive path is empty", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %v", domain.ErrInvalidInput, archivePath, err)
	}

	job, err := domain.NewExtractionJob(s.newID(), abs, s.now())
	if err != nil {
		return nil, err
	}

	logger.Section("Extract " + job.ArchiveName())
	logger.Debug("job %s: %s", job.ID, job.ArchivePath)

	rec := &domain.JobRecord{Job: job}
	sm := domain.NewStateMachine()

	runErr := s.run(ctx, sm, rec)
	rec.FinishedAt = s.now()
	if runErr != nil {
		failedIn := sm.Current()
		sm.Fail()
		rec.Err = runErr
		logger.Debug("job %s failed while %s: %v", job.ID, failedIn, runErr)
	}
	rec.State = sm.Current()

	s.record(ctx, rec)
	s.remember(ctx, rec)

	return rec, runErr
}

// run drives the state machine through the pipeline.
func (s *ExtractionService) run(ctx context.Context, sm *domain.StateMachine, rec *domain.JobRecord) error {
	job := rec.Job

	if err := advance(sm, domain.StateExtracting); err != nil {
		return err
	}
	if err := checkArchive(job.ArchivePath); err != nil {
		return err
	}

	staging, err := s.createStaging(job)
	if err != nil {
		return err
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			logger.Warn("could not remove staging directory %s: %v", staging, err)
		}
	}()

	entries, err := s.reader.Extract(ctx, job.ArchivePath, staging)
	if err != nil {
		return err
	}
	rec.EntryCount = len(entries)
	logger.Debug("extracted %d entries to %s", len(entries), staging)

	if err := advance(sm, domain.StateClassifying); err != nil {
		return err
	}
	result, err := s.classifier.Classify(ctx, entries, staging)
	if err != nil {
		return err
	}
	rec.Classification = result
	logger.Debug("classified as %s (%d files)", result.Kind, result.FileCount)

	if err := advance(sm, domain.StateResolving); err != nil {
		return err
	}
	decision, err := s.resolver.Decide(result, job.ArchivePath)
	if err != nil {
		return err
	}
	rec.Decision = decision
	logger.Debug("target directory %s", decision.TargetDirectory)

	if err := advance(sm, domain.StateFinalizing); err != nil {
		return err
	}
	files, err := s.finalizer.Finalize(ctx, staging, entries, result, decision)
	if err != nil {
		return err
	}
	rec.Files = files

	return advance(sm, domain.StateDone)
}

// Plan lists and classifies an archive without extracting it.
// Content inspection is skipped since nothing is staged.
func (s *ExtractionService) Plan(ctx context.Context, archivePath string) (*driving.Plan, error) {
	abs, err := filepath.Abs(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %v", domain.ErrInvalidInput, archivePath, err)
	}
	if err := checkArchive(abs); err != nil {
		return nil, err
	}

	entries, err := s.reader.List(ctx, abs)
	if err != nil {
		return nil, err
	}

	plan := &driving.Plan{
		ArchivePath:    abs,
		Entries:        entries,
		Classification: ClassifyEntries(entries, s.classifier.extensions),
	}
	plan.Decision, plan.ResolveErr = s.resolver.Decide(plan.Classification, abs)
	return plan, nil
}

// record writes the trace. A failed write never changes the job outcome.
func (s *ExtractionService) record(ctx context.Context, rec *domain.JobRecord) {
	if s.trace == nil {
		return
	}
	if err := s.trace.Record(ctx, rec); err != nil {
		logger.Error("%v", err)
		if rerr := s.trace.ReportLogFailure(ctx, rec, err); rerr != nil {
			logger.Error("reporting log failure: %v", rerr)
		}
	}
}

// remember stores the job in history, if enabled. Failures are reported only.
func (s *ExtractionService) remember(ctx context.Context, rec *domain.JobRecord) {
	if s.history == nil {
		return
	}
	if err := s.history.Save(ctx, domain.NewHistoryEntry(rec)); err != nil {
		logger.Error("saving job history: %v", err)
	}
}

// createStaging makes a fresh staging directory. By default it sits beside
// the archive so that finalizing General content is a same-volume rename.
func (s *ExtractionService) createStaging(job domain.ExtractionJob) (string, error) {
	base := s.cfg.ResolvePath(s.cfg.StagingDir)
	if base == "" {
		base = job.ArchiveDir()
	} else if err := os.MkdirAll(base, 0755); err != nil {
		return "", fmt.Errorf("%w: creating staging root %s: %v", domain.ErrFinalizeIO, base, err)
	}

	dir, err := os.MkdirTemp(base, stagingPrefix)
	if err != nil {
		return "", fmt.Errorf("%w: creating staging directory in %s: %v", domain.ErrFinalizeIO, base, err)
	}
	return dir, nil
}

// IsStagingPath reports whether path lies in a staging directory.
func IsStagingPath(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, stagingPrefix) {
			return true
		}
	}
	return false
}

// checkArchive confirms the archive exists and is a regular file.
func checkArchive(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrArchiveNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrArchiveNotFound, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", domain.ErrArchiveNotFound, path)
	}
	return nil
}

func advance(sm *domain.StateMachine, to domain.JobState) error {
	if err := sm.Transition(to); err != nil {
		return err
	}
	logger.Debug("state %s", to)
	return nil
}
