// Package watch extracts zip archives as they appear in a folder.
//
// The watcher listens for file system events in one directory (not
// recursively). A new archive is extracted once its size has stopped
// changing for the settle period, so downloads still in progress are not
// picked up. Jobs run one at a time, paced by a rate limiter.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driving"
	"github.com/Jeff-411/book-extractor/internal/core/services"
	"github.com/Jeff-411/book-extractor/internal/logger"
)

// Defaults for Options.
const (
	DefaultInterval = 250 * time.Millisecond
	DefaultBurst    = 1
	minPoll         = 25 * time.Millisecond
)

// ResultFunc is called after each job with its record and error.
type ResultFunc func(rec *domain.JobRecord, err error)

// Options configure a Watcher.
type Options struct {
	// Settle is how long an archive's size must stay unchanged.
	Settle time.Duration

	// Interval is the minimum spacing between job starts.
	Interval time.Duration

	// Burst is how many jobs may start back to back.
	Burst int

	// OnResult, if set, is called after every job.
	OnResult ResultFunc
}

// Watcher extracts archives dropped into a directory.
type Watcher struct {
	extractor driving.Extractor
	settle    time.Duration
	limiter   *rate.Limiter
	onResult  ResultFunc

	pending  map[string]*candidate
	produced map[string]bool
}

// candidate is an archive waiting for its size to settle.
type candidate struct {
	size    int64
	changed time.Time
}

// New creates a watcher that hands settled archives to extractor.
func New(extractor driving.Extractor, opts Options) *Watcher {
	if opts.Settle < 0 {
		opts.Settle = 0
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultBurst
	}
	return &Watcher{
		extractor: extractor,
		settle:    opts.Settle,
		limiter:   rate.NewLimiter(rate.Every(opts.Interval), opts.Burst),
		onResult:  opts.OnResult,
		pending:   make(map[string]*candidate),
		produced:  make(map[string]bool),
	}
}

// Run watches dir until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("%w: resolving %s: %v", domain.ErrInvalidInput, dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, abs)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(abs); err != nil {
		return fmt.Errorf("watching %s: %w", abs, err)
	}
	logger.Info("watching %s (settle %s)", abs, w.settle)

	poll := w.settle / 2
	if poll < minPoll {
		poll = minPoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case now := <-ticker.C:
			if err := w.dispatchSettled(ctx, now); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				return err
			}
		}
	}
}

// handleEvent tracks archive creations and writes.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		delete(w.pending, path)
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.wants(path) {
		return
	}

	if c, ok := w.pending[path]; ok {
		c.changed = time.Now()
		return
	}
	logger.Debug("new archive %s", path)
	w.pending[path] = &candidate{size: -1, changed: time.Now()}
}

// wants reports whether path is an archive this watcher should extract.
func (w *Watcher) wants(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false
	}
	if services.IsStagingPath(path) {
		return false
	}
	return !w.produced[path]
}

// dispatchSettled extracts every pending archive whose size has been stable
// for the settle period, oldest first.
func (w *Watcher) dispatchSettled(ctx context.Context, now time.Time) error {
	var ready []string
	for path, c := range w.pending {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			delete(w.pending, path)
			continue
		}
		if info.Size() != c.size {
			c.size = info.Size()
			c.changed = now
			continue
		}
		if now.Sub(c.changed) >= w.settle {
			ready = append(ready, path)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		return w.pending[ready[i]].changed.Before(w.pending[ready[j]].changed)
	})

	for _, path := range ready {
		delete(w.pending, path)
		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}
		w.extract(ctx, path)
	}
	return nil
}

func (w *Watcher) extract(ctx context.Context, path string) {
	logger.Section("Watch " + filepath.Base(path))
	rec, err := w.extractor.Extract(ctx, path)
	if rec != nil {
		for _, f := range rec.Files {
			w.produced[filepath.Clean(f)] = true
		}
	}
	if err != nil {
		logger.Debug("extracting %s failed: %v", path, err)
	}
	if w.onResult != nil {
		w.onResult(rec, err)
	}
}
