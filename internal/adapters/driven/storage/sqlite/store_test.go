package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testEntry(id string, finished time.Time) domain.HistoryEntry {
	return domain.HistoryEntry{
		JobID:           id,
		ArchivePath:     "/downloads/" + id + ".zip",
		TargetDirectory: "/downloads",
		Kind:            domain.KindGeneral,
		State:           domain.StateDone,
		FileCount:       3,
		RequestedAt:     finished.Add(-2 * time.Second),
		FinishedAt:      finished,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
}

func TestNewStore_EmptyPath(t *testing.T) {
	_, err := NewStore("")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()
	finished := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testEntry("job-1", finished)))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "/downloads/job-1.zip", got.ArchivePath)

	var version int
	require.NoError(t, reopened.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	finished := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	entry := testEntry("job-1", finished)

	require.NoError(t, store.Save(ctx, entry))

	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, entry, *got)
}

func TestStore_SaveFailedJob(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	entry := domain.HistoryEntry{
		JobID:         "job-failed",
		ArchivePath:   "/downloads/bad.zip",
		State:         domain.StateFailed,
		ErrorCategory: "ArchiveCorrupt",
		ErrorMessage:  "archive corrupt: zip: not a valid zip file",
		RequestedAt:   time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		FinishedAt:    time.Date(2026, 5, 1, 9, 0, 1, 0, time.UTC),
	}

	require.NoError(t, store.Save(ctx, entry))

	got, err := store.Get(ctx, "job-failed")
	require.NoError(t, err)
	assert.Equal(t, domain.StateFailed, got.State)
	assert.Empty(t, got.TargetDirectory)
	assert.Empty(t, got.Kind)
	assert.Equal(t, "ArchiveCorrupt", got.ErrorCategory)
	assert.Equal(t, entry.ErrorMessage, got.ErrorMessage)
}

func TestStore_SaveReplaces(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	entry := testEntry("job-1", time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, store.Save(ctx, entry))

	entry.FileCount = 7
	require.NoError(t, store.Save(ctx, entry))

	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.FileCount)

	all, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_SaveEmptyID(t *testing.T) {
	store := setupTestStore(t)

	err := store.Save(context.Background(), domain.HistoryEntry{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_Get_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Recent_NewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Save(ctx, testEntry(fmt.Sprintf("job-%d", i), base.Add(time.Duration(i)*time.Minute))))
	}

	recent, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "job-4", recent[0].JobID)
	assert.Equal(t, "job-3", recent[1].JobID)
	assert.Equal(t, "job-2", recent[2].JobID)
}

func TestStore_Recent_NonPositiveLimit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testEntry("job-1", time.Now())))

	recent, err := store.Recent(ctx, 0)

	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestStore_LocalTimesStoredAsUTC(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	zone := time.FixedZone("UTC+2", 2*60*60)
	finished := time.Date(2026, 5, 1, 11, 30, 0, 0, zone)

	require.NoError(t, store.Save(ctx, testEntry("job-1", finished)))

	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.True(t, finished.Equal(got.FinishedAt))
}
