package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
)

// EntryRepository keeps entries in process memory. It is safe for concurrent
// use; contents are lost on restart.
type EntryRepository struct {
	mu      sync.RWMutex
	entries []entries.Entry
	nextID  int64
	now     func() time.Time
}

func NewEntryRepository() *EntryRepository {
	return &EntryRepository{now: time.Now}
}

// Seed appends three sample entries spaced one minute apart, ending now.
func (r *EntryRepository) Seed() {
	now := r.now()
	samples := []struct{ app, user string }{
		{"/sales-dashboard/", "alice"},
		{"/ops-overview/", "bob"},
		{"/sales-dashboard/", "carol"},
	}
	for i, s := range samples {
		ts := now.Add(time.Duration(i-len(samples)+1) * time.Minute)
		_, _ = r.Insert(context.Background(), entries.Entry{
			AppName:   s.app,
			Username:  s.user,
			Timestamp: strconv.FormatInt(ts.UnixMilli(), 10),
		})
	}
}

func (r *EntryRepository) Backend() string { return "memory" }

func (r *EntryRepository) Init(ctx context.Context) error {
	return ctx.Err()
}

func (r *EntryRepository) Insert(ctx context.Context, entry entries.Entry) (entries.Entry, error) {
	if err := ctx.Err(); err != nil {
		return entries.Entry{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = r.now()
	r.entries = append(r.entries, entry)
	return entry, nil
}

// List returns a copy, newest first. Insertion order is creation order, so
// walking the slice backwards matches created_at DESC, id DESC.
func (r *EntryRepository) List(ctx context.Context) ([]entries.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entries.Entry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

func (r *EntryRepository) Clear(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.entries))
	r.entries = nil
	return n, nil
}

func (r *EntryRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.entries)), nil
}
