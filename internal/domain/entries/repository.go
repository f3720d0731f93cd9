package entries

import (
	"context"
	"errors"
	"time"
)

var ErrStoreUnavailable = errors.New("entry store unavailable")

// Entry is one logged usage record. ID and CreatedAt are assigned by the
// store; no natural key exists and duplicates are expected.
type Entry struct {
	ID        int64     `json:"-"`
	AppName   string    `json:"app_name"`
	Username  string    `json:"username"`
	Timestamp string    `json:"timestamp"`
	CreatedAt time.Time `json:"-"`
}

// Row is an Entry with its derived display time. It is what the grid and the
// CSV export see; ReadableTime is never persisted.
type Row struct {
	AppName      string `json:"app_name"`
	Username     string `json:"username"`
	Timestamp    string `json:"timestamp"`
	ReadableTime string `json:"readable_time"`
}

// Repository is the backend-specific half of the event store. Implementations
// return errors; Store turns them into logged, non-propagating results.
type Repository interface {
	// Init creates the backing table if it does not exist.
	Init(ctx context.Context) error
	Insert(ctx context.Context, entry Entry) (Entry, error)
	// List returns every entry, most recently created first.
	List(ctx context.Context) ([]Entry, error)
	// Clear deletes every entry and reports how many were removed.
	Clear(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
	// Backend names the implementation for logs and health output.
	Backend() string
}
