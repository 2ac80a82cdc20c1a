package services

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Jeff-411/book-extractor/internal/adapters/driven/archive/zipfile"
	"github.com/Jeff-411/book-extractor/internal/adapters/driven/storage/memory"
	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

type zipEntry struct {
	name    string
	content string
}

// writeZip creates an archive at path. Names ending in "/" become directories.
func writeZip(t *testing.T, path string, entries ...zipEntry) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		if e.content != "" {
			_, err = w.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return path
}

// sequentialIDs returns an IDGenerator yielding job-1, job-2, ...
func sequentialIDs() IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("job-%d", n)
	}
}

// recordingTrace is a driven.TraceLog that keeps records in memory.
type recordingTrace struct {
	mu          sync.Mutex
	records     []*domain.JobRecord
	failures    []error
	recordErr   error
	reportCalls int
}

func (r *recordingTrace) Record(_ context.Context, rec *domain.JobRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recordErr != nil {
		return r.recordErr
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *recordingTrace) ReportLogFailure(_ context.Context, _ *domain.JobRecord, cause error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reportCalls++
	r.failures = append(r.failures, cause)
	return nil
}

func (r *recordingTrace) last() *domain.JobRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == 0 {
		return nil
	}
	return r.records[len(r.records)-1]
}

// stubInspector is a driven.DocumentInspector returning fixed results.
type stubInspector struct {
	info  *domain.DocumentInfo
	err   error
	calls []string
}

func (s *stubInspector) Inspect(_ context.Context, path string) (*domain.DocumentInfo, error) {
	s.calls = append(s.calls, path)
	return s.info, s.err
}

var errDiskGone = errors.New("disk gone")

// testEnv is a workspace with an application root and a downloads folder.
type testEnv struct {
	root      string
	downloads string
	cfg       domain.Config
	trace     *recordingTrace
	history   *memory.HistoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	base := t.TempDir()
	env := &testEnv{
		root:      filepath.Join(base, "app"),
		downloads: filepath.Join(base, "downloads"),
		trace:     &recordingTrace{},
		history:   memory.NewHistoryStore(),
	}
	require.NoError(t, os.MkdirAll(env.root, 0755))
	require.NoError(t, os.MkdirAll(env.downloads, 0755))

	env.cfg = domain.DefaultConfig(env.root)
	env.cfg.OutputFolder = "output"
	return env
}

func (e *testEnv) service() *ExtractionService {
	svc := NewExtractionService(e.cfg, zipfile.NewReader(), nil, e.trace, e.history, sequentialIDs())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

// stagingDirs lists leftover staging directories in dir.
func stagingDirs(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, stagingPrefix+"*"))
	require.NoError(t, err)
	return matches
}
