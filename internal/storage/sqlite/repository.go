package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
	"github.com/Togather-Foundation/dashlog/internal/metrics"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    app_name VARCHAR(255) NOT NULL,
    username VARCHAR(255) NOT NULL,
    timestamp VARCHAR(50) NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// EntryRepository stores usage entries in a single SQLite file.
type EntryRepository struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path. Writes go through a
// single connection in WAL mode.
func Open(path string) (*EntryRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &EntryRepository{db: db, path: path}, nil
}

func (r *EntryRepository) Backend() string { return "sqlite" }

func (r *EntryRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: create table: %w", entries.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *EntryRepository) Insert(ctx context.Context, entry entries.Entry) (entries.Entry, error) {
	var created sqliteTime
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO user_entries (app_name, username, timestamp) VALUES (?, ?, ?) RETURNING id, created_at`,
		entry.AppName, entry.Username, entry.Timestamp,
	).Scan(&entry.ID, &created)
	if err != nil {
		return entries.Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	entry.CreatedAt = created.Time
	return entry, nil
}

func (r *EntryRepository) List(ctx context.Context) ([]entries.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, app_name, username, timestamp, created_at
		FROM user_entries
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []entries.Entry
	for rows.Next() {
		var (
			e       entries.Entry
			created sqliteTime
		)
		if err := rows.Scan(&e.ID, &e.AppName, &e.Username, &e.Timestamp, &created); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.CreatedAt = created.Time
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}

func (r *EntryRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_entries`)
	if err != nil {
		return 0, fmt.Errorf("clear entries: %w", err)
	}
	return res.RowsAffected()
}

func (r *EntryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func (r *EntryRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *EntryRepository) Close() error {
	return r.db.Close()
}

func (r *EntryRepository) PoolStats() metrics.PoolStats {
	stat := r.db.Stats()
	return metrics.PoolStats{
		Open:    stat.OpenConnections,
		InUse:   stat.InUse,
		Idle:    stat.Idle,
		MaxOpen: stat.MaxOpenConnections,
	}
}

// sqliteTime scans created_at whether the driver hands back a time.Time (a
// column declared TIMESTAMP) or the raw CURRENT_TIMESTAMP text (RETURNING).
type sqliteTime struct {
	time.Time
}

func (t *sqliteTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("sqlite: cannot scan %T into time", src)
	}
}

func (t *sqliteTime) parse(s string) error {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("sqlite: unrecognized time %q", s)
}
