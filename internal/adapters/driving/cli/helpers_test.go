package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driving"
)

// mockSettings implements driving.SettingsService for testing.
type mockSettings struct {
	cfg     domain.Config
	loadErr error
	sources map[string]string
	set     map[string]string
	setErr  error
}

func (m *mockSettings) Load() (domain.Config, error) {
	if m.loadErr != nil {
		return domain.Config{}, m.loadErr
	}
	return m.cfg, nil
}

func (m *mockSettings) Sources() map[string]string { return m.sources }

func (m *mockSettings) Keys() []string {
	return []string{
		"output_folder", "log_dir", "staging_dir", "collision_policy", "document_extensions",
		"verify_documents", "history.enabled", "history.path", "watch.settle_ms",
	}
}

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

// mockExtractor implements driving.Extractor for testing.
type mockExtractor struct {
	rec     *domain.JobRecord
	err     error
	plan    *driving.Plan
	planErr error
	paths   []string
}

func (m *mockExtractor) Extract(_ context.Context, archivePath string) (*domain.JobRecord, error) {
	m.paths = append(m.paths, archivePath)
	return m.rec, m.err
}

func (m *mockExtractor) Plan(_ context.Context, archivePath string) (*driving.Plan, error) {
	m.paths = append(m.paths, archivePath)
	return m.plan, m.planErr
}

// mockHistory implements driving.HistoryService for testing.
type mockHistory struct {
	enabled bool
	entries []domain.HistoryEntry
	limit   int
}

func (m *mockHistory) Enabled() bool { return m.enabled }

func (m *mockHistory) Recent(_ context.Context, limit int) ([]domain.HistoryEntry, error) {
	m.limit = limit
	return m.entries, nil
}

func (m *mockHistory) Get(_ context.Context, jobID string) (*domain.HistoryEntry, error) {
	for i := range m.entries {
		if m.entries[i].JobID == jobID {
			return &m.entries[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// cliFixture holds the mocks wired into the commands for one test.
type cliFixture struct {
	root      string
	settings  *mockSettings
	extractor *mockExtractor
	history   *mockHistory
	closed    int
	gotRoot   string
	gotCfg    domain.Config
}

// setupCLI swaps the package factories for mocks and resets flag state.
func setupCLI(t *testing.T) *cliFixture {
	t.Helper()
	root := t.TempDir()
	cfg := domain.DefaultConfig(root)
	cfg.OutputFolder = "output"

	f := &cliFixture{
		root:      root,
		settings:  &mockSettings{cfg: cfg, sources: map[string]string{"output_folder": "env"}},
		extractor: &mockExtractor{},
		history:   &mockHistory{},
	}

	oldSettings, oldServices := settingsFactory, serviceFactory
	settingsFactory = func(rootDir string) (driving.SettingsService, error) {
		f.gotRoot = rootDir
		return f.settings, nil
	}
	serviceFactory = func(cfg domain.Config) (*Services, error) {
		f.gotCfg = cfg
		return &Services{
			Extractor: f.extractor,
			History:   f.history,
			Close: func() error {
				f.closed++
				return nil
			},
		}, nil
	}

	t.Cleanup(func() {
		settingsFactory, serviceFactory = oldSettings, oldServices
		verbose, rootFlag = false, ""
		historyLimit = 20
		watchSettle, watchInterval = 0, 0
		rootCmd.SetArgs(nil)
		rootCmd.SetContext(context.Background())
	})
	return f
}

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

var errBoom = errors.New("boom")

var testTime = time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
