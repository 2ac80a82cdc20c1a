package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jeff-411/book-extractor/internal/adapters/driven/storage/memory"
	"github.com/Jeff-411/book-extractor/internal/core/domain"
)

func TestHistoryService_Disabled(t *testing.T) {
	service := NewHistoryService(nil)
	ctx := context.Background()

	assert.False(t, service.Enabled())

	entries, err := service.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = service.Get(ctx, "job-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryService_Recent(t *testing.T) {
	store := memory.NewHistoryStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < DefaultHistoryLimit+5; i++ {
		require.NoError(t, store.Save(ctx, domain.HistoryEntry{
			JobID:      fmt.Sprintf("job-%02d", i),
			FinishedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	service := NewHistoryService(store)

	assert.True(t, service.Enabled())

	limited, err := service.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, limited, 3)
	assert.Equal(t, fmt.Sprintf("job-%02d", DefaultHistoryLimit+4), limited[0].JobID)

	defaulted, err := service.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, defaulted, DefaultHistoryLimit)
}

func TestHistoryService_Get(t *testing.T) {
	store := memory.NewHistoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.HistoryEntry{JobID: "job-1", State: domain.StateDone}))
	service := NewHistoryService(store)

	entry, err := service.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateDone, entry.State)

	_, err = service.Get(ctx, "job-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
