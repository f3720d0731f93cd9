package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryRepository_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewEntryRepository()
	require.NoError(t, repo.Init(ctx))

	for _, user := range []string{"ana", "bo", "cy"} {
		_, err := repo.Insert(ctx, entries.Entry{AppName: "a", Username: user, Timestamp: "1"})
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"cy", "bo", "ana"}, []string{list[0].Username, list[1].Username, list[2].Username})
	assert.Equal(t, int64(3), list[0].ID)
}

func TestEntryRepository_ListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewEntryRepository()
	_, _ = repo.Insert(ctx, entries.Entry{AppName: "a", Username: "u", Timestamp: "1"})

	list, _ := repo.List(ctx)
	list[0].Username = "mutated"

	again, _ := repo.List(ctx)
	assert.Equal(t, "u", again[0].Username)
}

func TestEntryRepository_Clear(t *testing.T) {
	ctx := context.Background()
	repo := NewEntryRepository()
	_, _ = repo.Insert(ctx, entries.Entry{AppName: "a", Username: "u", Timestamp: "1"})
	_, _ = repo.Insert(ctx, entries.Entry{AppName: "a", Username: "u", Timestamp: "1"})

	n, err := repo.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEntryRepository_Seed(t *testing.T) {
	repo := NewEntryRepository()
	fixed := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	repo.Seed()

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "1640995200000", list[0].Timestamp)
	assert.Equal(t, "1640995080000", list[2].Timestamp)
}

func TestEntryRepository_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	repo := NewEntryRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Insert(ctx, entries.Entry{AppName: "a", Username: "u", Timestamp: "1"})
			_, _ = repo.List(ctx)
		}()
	}
	wg.Wait()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), count)
}

func TestEntryRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEntryRepository().Insert(ctx, entries.Entry{})
	assert.ErrorIs(t, err, context.Canceled)
}
