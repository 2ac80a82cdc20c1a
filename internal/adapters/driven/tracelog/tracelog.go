// Package tracelog appends extraction outcomes to the combined and error
// log files.
//
// Each job produces one block of lines. A block opens with a
// "zipFilePath: <archive>" line so the logs can be split per job. Lines
// are rendered with zap's console encoder and the whole block is appended
// in a single write while holding a cross-process lock on the log file.
package tracelog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driven"
	"github.com/Jeff-411/book-extractor/internal/filelock"
	"github.com/Jeff-411/book-extractor/internal/logger"
)

// Verify interface compliance.
var _ driven.TraceLog = (*Log)(nil)

// Log writes trace blocks to a pair of log files.
type Log struct {
	combinedPath string
	errorPath    string
	encoder      zapcore.Encoder
	now          func() time.Time
}

// New creates a trace log writing successes to combinedPath and failures
// to errorPath. Parent directories are created on first write.
func New(combinedPath, errorPath string) *Log {
	return &Log{
		combinedPath: combinedPath,
		errorPath:    errorPath,
		encoder:      newEncoder(),
		now:          time.Now,
	}
}

// NewFromConfig creates a trace log at the configured log paths.
func NewFromConfig(cfg domain.Config) *Log {
	return New(cfg.CombinedLogPath(), cfg.ErrorLogPath())
}

func newEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
}

// CombinedPath returns the path successes are written to.
func (l *Log) CombinedPath() string {
	return l.combinedPath
}

// ErrorPath returns the path failures are written to.
func (l *Log) ErrorPath() string {
	return l.errorPath
}

// Record appends the job's block. Finished jobs go to the combined log;
// failed jobs go to the error log only.
func (l *Log) Record(_ context.Context, rec *domain.JobRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: nil job record", domain.ErrLogWrite)
	}

	if rec.Succeeded() {
		block, err := l.successBlock(rec)
		if err != nil {
			return err
		}
		return appendBlock(l.combinedPath, block)
	}

	block, err := l.failureBlock(rec, rec.Err)
	if err != nil {
		return err
	}
	return appendBlock(l.errorPath, block)
}

// ReportLogFailure records that an earlier write for rec failed.
func (l *Log) ReportLogFailure(_ context.Context, rec *domain.JobRecord, cause error) error {
	if rec == nil {
		return fmt.Errorf("%w: nil job record", domain.ErrLogWrite)
	}
	if !errors.Is(cause, domain.ErrLogWrite) {
		cause = fmt.Errorf("%w: %v", domain.ErrLogWrite, cause)
	}

	block, err := l.failureBlock(rec, cause)
	if err != nil {
		return err
	}
	return appendBlock(l.errorPath, block)
}

func (l *Log) successBlock(rec *domain.JobRecord) ([]byte, error) {
	at := l.timestamp(rec)
	var b blockWriter
	b.line(l.encoder, at, zapcore.InfoLevel, "zipFilePath: "+rec.Job.ArchivePath,
		zap.String("job", rec.Job.ID),
		zap.Int("entries", rec.EntryCount),
	)
	b.line(l.encoder, at, zapcore.InfoLevel,
		fmt.Sprintf("Classified %s (%d files)", rec.Classification.Kind, rec.Classification.FileCount),
		zap.Duration("took", rec.Duration()),
	)

	// The destination must end the line: downstream tooling captures it
	// with a ".* to (.*)" match.
	if rec.Classification.IsSingleDocument() {
		b.line(l.encoder, at, zapcore.InfoLevel,
			fmt.Sprintf("Extracted docx file: %s to %s", rec.Job.ArchivePath, rec.DocumentPath()))
	} else {
		b.line(l.encoder, at, zapcore.InfoLevel,
			fmt.Sprintf("Extracted non-docx file: %s to %s", rec.Job.ArchivePath, rec.Decision.TargetDirectory))
	}
	return b.bytes()
}

func (l *Log) failureBlock(rec *domain.JobRecord, cause error) ([]byte, error) {
	at := l.timestamp(rec)
	var b blockWriter
	b.line(l.encoder, at, zapcore.ErrorLevel, "zipFilePath: "+rec.Job.ArchivePath,
		zap.String("job", rec.Job.ID),
	)

	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	b.line(l.encoder, at, zapcore.ErrorLevel, domain.ErrorCategory(cause)+": "+msg)
	return b.bytes()
}

func (l *Log) timestamp(rec *domain.JobRecord) time.Time {
	if !rec.FinishedAt.IsZero() {
		return rec.FinishedAt
	}
	return l.now()
}

// blockWriter accumulates encoded lines, keeping the first error.
type blockWriter struct {
	buf bytes.Buffer
	err error
}

func (b *blockWriter) line(enc zapcore.Encoder, at time.Time, level zapcore.Level, msg string, fields ...zapcore.Field) {
	if b.err != nil {
		return
	}
	out, err := enc.EncodeEntry(zapcore.Entry{Time: at, Level: level, Message: msg}, fields)
	if err != nil {
		b.err = fmt.Errorf("%w: encoding log line: %v", domain.ErrLogWrite, err)
		return
	}
	b.buf.Write(out.Bytes())
	out.Free()
}

func (b *blockWriter) bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.buf.Bytes(), nil
}

// appendBlock writes block to path in one append while holding the
// file's lock. A busy lock is reported in verbose mode before waiting.
func appendBlock(path string, block []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: creating log directory: %v", domain.ErrLogWrite, err)
	}

	lock := filelock.For(path)
	acquired, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLogWrite, err)
	}
	if !acquired {
		logger.Debug("waiting for lock on %s", path)
		if err := lock.Lock(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrLogWrite, err)
		}
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", domain.ErrLogWrite, path, err)
	}
	if _, err := f.Write(block); err != nil {
		f.Close()
		return fmt.Errorf("%w: writing %s: %v", domain.ErrLogWrite, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", domain.ErrLogWrite, path, err)
	}
	return nil
}
