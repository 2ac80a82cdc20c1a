package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "book-extractor.toml"), store.Path())
}

func TestNewConfigStore_EmptyRoot(t *testing.T) {
	_, err := NewConfigStore("")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewConfigStore_DoesNotCreateFiles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")

	store, err := NewConfigStore(root)

	require.NoError(t, err)
	_, ok := store.Get("output_folder")
	assert.False(t, ok)
	assert.NoDirExists(t, root)
}

func TestConfigStore_ReadsValues(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
output_folder = "D:/Books"
collision_policy = "uniquify"
document_extensions = [".docx", ".DOCM"]
verify_documents = true

[history]
enabled = true
path = "data/jobs.db"

[watch]
settle_ms = 1500
`)

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "D:/Books", store.GetString("output_folder"))
	assert.Equal(t, "uniquify", store.GetString("collision_policy"))
	assert.Equal(t, []string{".docx", ".DOCM"}, store.GetStringSlice("document_extensions"))
	assert.True(t, store.GetBool("verify_documents"))
	assert.True(t, store.GetBool("history.enabled"))
	assert.Equal(t, "data/jobs.db", store.GetString("history.path"))
	assert.Equal(t, 1500, store.GetInt("watch.settle_ms"))
}

func TestConfigStore_WrongTypesReturnZero(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
output_folder = 12
verify_documents = "yes"
document_extensions = "docx"
`)

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Empty(t, store.GetString("output_folder"))
	assert.False(t, store.GetBool("verify_documents"))
	assert.Nil(t, store.GetStringSlice("document_extensions"))
	assert.Zero(t, store.GetInt("collision_policy"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	val, ok := store.Get("nonexistent")

	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Empty(t, store.GetString("nonexistent"))
	assert.Zero(t, store.GetInt("nonexistent"))
	assert.False(t, store.GetBool("nonexistent"))
	assert.Nil(t, store.GetStringSlice("nonexistent"))
}

func TestConfigStore_SetPersistsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("output_folder", "out"))
	require.NoError(t, store.Set("history.enabled", true))
	require.NoError(t, store.Set("watch.settle_ms", int64(200)))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[history]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "out", reloaded.GetString("output_folder"))
	assert.True(t, reloaded.GetBool("history.enabled"))
	assert.Equal(t, 200, reloaded.GetInt("watch.settle_ms"))
}

func TestConfigStore_SetCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "app")
	store, err := NewConfigStore(root)
	require.NoError(t, err)

	require.NoError(t, store.Set("log_dir", "logs"))

	assert.FileExists(t, filepath.Join(root, FileName))
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "output_folder = [unclosed")

	_, err := NewConfigStore(tmpDir)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigStore_Load_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "")

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	_, ok := store.Get("output_folder")
	assert.False(t, ok)
}

func TestConfigStore_Load_ReadFileError(t *testing.T) {
	tmpDir := t.TempDir()
	// A directory where the file should be cannot be read.
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, FileName), 0755))

	_, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("collision_policy", "fail")
		}()
		go func() {
			defer wg.Done()
			_ = store.GetString("collision_policy")
		}()
	}
	wg.Wait()

	assert.Equal(t, "fail", store.GetString("collision_policy"))
}

func TestFlattenMap(t *testing.T) {
	nested := map[string]any{
		"a": map[string]any{
			"b": 1,
			"c": map[string]any{"d": "x"},
		},
		"e": true,
	}

	flat := flattenMap(nested, "")

	assert.Equal(t, map[string]any{"a.b": 1, "a.c.d": "x", "e": true}, flat)
	assert.Equal(t, nested, unflattenMap(flat))
}
