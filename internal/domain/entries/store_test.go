package entries

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository keeps entries in insertion order and fails on demand.
type fakeRepository struct {
	mu      sync.Mutex
	entries []Entry
	nextID  int64
	fail    error
}

func (f *fakeRepository) Init(context.Context) error { return f.fail }

func (f *fakeRepository) Insert(_ context.Context, e Entry) (Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return Entry{}, f.fail
	}
	f.nextID++
	e.ID = f.nextID
	e.CreatedAt = time.Now()
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakeRepository) List(context.Context) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]Entry, 0, len(f.entries))
	for i := len(f.entries) - 1; i >= 0; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

func (f *fakeRepository) Clear(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return 0, f.fail
	}
	n := int64(len(f.entries))
	f.entries = nil
	return n, nil
}

func (f *fakeRepository) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return 0, f.fail
	}
	return int64(len(f.entries)), nil
}

func (f *fakeRepository) Backend() string { return "fake" }

func TestStore_AddThenList(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&fakeRepository{}, time.UTC, zerolog.Nop())

	require.True(t, store.Init(ctx))

	first, ok := store.Add(ctx, "/sales/", "ana", "1640995200000")
	require.True(t, ok)
	assert.Equal(t, int64(1), first.ID)

	_, ok = store.Add(ctx, "/sales/", "bo", "1640995260000")
	require.True(t, ok)

	list := store.ListAll(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "bo", list[0].Username, "newest first")
	assert.Equal(t, "ana", list[1].Username)
}

func TestStore_DuplicatesKept(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&fakeRepository{}, time.UTC, zerolog.Nop())

	for i := 0; i < 2; i++ {
		_, ok := store.Add(ctx, "a", "u", "1")
		require.True(t, ok)
	}

	count, ok := store.Count(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(2), count)
}

func TestStore_ClearAll(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&fakeRepository{}, time.UTC, zerolog.Nop())
	_, _ = store.Add(ctx, "a", "u", "1")

	require.True(t, store.ClearAll(ctx))
	assert.Empty(t, store.ListAll(ctx))
}

func TestStore_Rows(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&fakeRepository{}, time.UTC, zerolog.Nop())
	_, _ = store.Add(ctx, "a", "u", "1640995200000")
	_, _ = store.Add(ctx, "a", "u", "garbage")

	rows := store.Rows(ctx)
	require.Len(t, rows, 2)
	assert.Equal(t, InvalidTimestamp, rows[0].ReadableTime)
	assert.Equal(t, "2022-01-01 00:00:00", rows[1].ReadableTime)
}

func TestStore_FailuresDoNotPropagate(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepository{fail: errors.Join(ErrStoreUnavailable, errors.New("connection refused"))}
	store := NewStore(repo, time.UTC, zerolog.Nop())

	assert.False(t, store.Init(ctx))

	_, ok := store.Add(ctx, "a", "u", "1")
	assert.False(t, ok)

	list := store.ListAll(ctx)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	assert.False(t, store.ClearAll(ctx))

	_, ok = store.Count(ctx)
	assert.False(t, ok)
}
