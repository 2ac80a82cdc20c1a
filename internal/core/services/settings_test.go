package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jeff-411/book-extractor/internal/adapters/driven/storage/memory"
	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

// mapEnv is a driven.EnvSource over a fixed map.
type mapEnv map[string]string

func (m mapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapEnv) Origin(key string) string {
	if _, ok := m[key]; ok {
		return "test-env"
	}
	return ""
}

func TestNewSettingsService(t *testing.T) {
	service := NewSettingsService("/root", nil, nil)

	require.NotNil(t, service)
	assert.Equal(t, "/root", service.rootDir)
	assert.NotNil(t, service.sources)
}

func TestSettingsService_Load_Defaults(t *testing.T) {
	root := t.TempDir()
	service := NewSettingsService(root, nil, nil)

	cfg, err := service.Load()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(root), cfg)
	for _, key := range service.Keys() {
		assert.Equal(t, "default", service.Sources()[key], key)
	}
}

func TestSettingsService_Load_ConfigFile(t *testing.T) {
	root := t.TempDir()
	store := memory.NewConfigStore(map[string]any{
		"output_folder":       "books",
		"log_dir":             "var/log",
		"staging_dir":         "tmp",
		"collision_policy":    "UNIQUIFY",
		"document_extensions": []any{"DOCX", "docm"},
		"verify_documents":    true,
		"history.enabled":     true,
		"history.path":        "db/jobs.db",
		"watch.settle_ms":     int64(2000),
	})
	service := NewSettingsService(root, store, nil)

	cfg, err := service.Load()

	require.NoError(t, err)
	assert.Equal(t, "books", cfg.OutputFolder)
	assert.Equal(t, "var/log", cfg.LogDir)
	assert.Equal(t, "tmp", cfg.StagingDir)
	assert.Equal(t, domain.CollisionUniquify, cfg.CollisionPolicy)
	assert.Equal(t, []string{".docx", ".docm"}, cfg.DocumentExtensions)
	assert.True(t, cfg.VerifyDocuments)
	assert.True(t, cfg.HistoryEnabled)
	assert.Equal(t, filepath.Join(root, "db", "jobs.db"), cfg.HistoryDBPath())
	assert.Equal(t, 2*time.Second, cfg.WatchSettle)
	assert.Equal(t, ":memory:", service.Sources()["output_folder"])
	assert.Equal(t, ":memory:", service.Sources()["history.path"])
}

func TestSettingsService_Load_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	store := memory.NewConfigStore(map[string]any{
		"output_folder":    "from-file",
		"collision_policy": "fail",
		"verify_documents": true,
	})
	env := mapEnv{
		EnvOutputFolder:    "from-env",
		EnvVerifyDocuments: "false",
		EnvDocumentExts:    "docx, .DOCM ,",
		EnvWatchSettleMS:   "0",
		EnvHistoryEnabled:  "1",
	}
	service := NewSettingsService(root, store, env)

	cfg, err := service.Load()

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.OutputFolder)
	assert.Equal(t, domain.CollisionFail, cfg.CollisionPolicy)
	assert.False(t, cfg.VerifyDocuments)
	assert.Equal(t, []string{".docx", ".docm"}, cfg.DocumentExtensions)
	assert.Zero(t, cfg.WatchSettle)
	assert.True(t, cfg.HistoryEnabled)

	sources := service.Sources()
	assert.Equal(t, "test-env", sources["output_folder"])
	assert.Equal(t, ":memory:", sources["collision_policy"])
	assert.Equal(t, "default", sources["log_dir"])
}

func TestSettingsService_Load_ZeroSettleFromFile(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"watch.settle_ms": int64(0)})
	service := NewSettingsService(t.TempDir(), store, nil)

	cfg, err := service.Load()

	require.NoError(t, err)
	assert.Zero(t, cfg.WatchSettle)
	assert.Equal(t, ":memory:", service.Sources()["watch.settle_ms"])
}

func TestSettingsService_Load_BlankEnvIgnored(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"output_folder": "from-file"})
	service := NewSettingsService(t.TempDir(), store, mapEnv{EnvOutputFolder: "  "})

	cfg, err := service.Load()

	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.OutputFolder)
}

func TestSettingsService_Load_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		store map[string]any
		env   mapEnv
	}{
		{name: "bad policy in file", store: map[string]any{"collision_policy": "merge"}},
		{name: "bad policy in env", env: mapEnv{EnvCollisionPolicy: "merge"}},
		{name: "bad bool", env: mapEnv{EnvVerifyDocuments: "maybe"}},
		{name: "bad history bool", env: mapEnv{EnvHistoryEnabled: "sometimes"}},
		{name: "bad settle", env: mapEnv{EnvWatchSettleMS: "soon"}},
		{name: "negative settle", env: mapEnv{EnvWatchSettleMS: "-5"}},
		{name: "no extensions", env: mapEnv{EnvDocumentExts: " , "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(t.TempDir(), memory.NewConfigStore(tt.store), tt.env)

			_, err := service.Load()

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Load_RelativeRoot(t *testing.T) {
	_, err := NewSettingsService("relative", nil, nil).Load()

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Sources_ReturnsCopy(t *testing.T) {
	service := NewSettingsService(t.TempDir(), nil, nil)
	_, err := service.Load()
	require.NoError(t, err)

	sources := service.Sources()
	sources["output_folder"] = "tampered"

	assert.Equal(t, "default", service.Sources()["output_folder"])
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore(nil)
	service := NewSettingsService(t.TempDir(), store, nil)

	require.NoError(t, service.Set("output_folder", " D:/Books "))
	require.NoError(t, service.Set("collision_policy", "Uniquify"))
	require.NoError(t, service.Set("document_extensions", "docx,DOCM"))
	require.NoError(t, service.Set("history.enabled", "true"))
	require.NoError(t, service.Set("watch.settle_ms", "1200"))

	assert.Equal(t, "D:/Books", store.GetString("output_folder"))
	assert.Equal(t, "uniquify", store.GetString("collision_policy"))
	assert.Equal(t, []string{".docx", ".docm"}, store.GetStringSlice("document_extensions"))
	assert.True(t, store.GetBool("history.enabled"))
	assert.Equal(t, 1200, store.GetInt("watch.settle_ms"))

	cfg, err := service.Load()
	require.NoError(t, err)
	assert.Equal(t, "D:/Books", cfg.OutputFolder)
	assert.Equal(t, 1200*time.Millisecond, cfg.WatchSettle)
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	service := NewSettingsService(t.TempDir(), memory.NewConfigStore(nil), nil)

	tests := []struct{ key, value string }{
		{"unknown_key", "x"},
		{"collision_policy", "merge"},
		{"document_extensions", ","},
		{"verify_documents", "perhaps"},
		{"watch.settle_ms", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.ErrorIs(t, service.Set(tt.key, tt.value), domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Set_NoStore(t *testing.T) {
	service := NewSettingsService(t.TempDir(), nil, nil)

	assert.ErrorIs(t, service.Set("output_folder", "x"), domain.ErrInvalidInput)
}
