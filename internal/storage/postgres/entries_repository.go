package postgres

import (
	"context"
	"fmt"

	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
	"github.com/Togather-Foundation/dashlog/internal/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EntryRepository stores usage entries in the user_entries table. Every call
// acquires its own pooled connection.
type EntryRepository struct {
	pool        *pgxpool.Pool
	databaseURL string
}

func NewEntryRepository(pool *pgxpool.Pool, databaseURL string) (*EntryRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &EntryRepository{pool: pool, databaseURL: databaseURL}, nil
}

func (r *EntryRepository) Backend() string { return "postgres" }

// Init applies the embedded migrations; an existing table is left untouched.
func (r *EntryRepository) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := MigrateUp(r.databaseURL); err != nil {
		return fmt.Errorf("%w: %w", entries.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *EntryRepository) Insert(ctx context.Context, entry entries.Entry) (entries.Entry, error) {
	const query = `
		INSERT INTO user_entries (app_name, username, timestamp)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	if err := r.pool.QueryRow(ctx, query, entry.AppName, entry.Username, entry.Timestamp).
		Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return entries.Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	return entry, nil
}

func (r *EntryRepository) List(ctx context.Context) ([]entries.Entry, error) {
	const query = `
		SELECT id, app_name, username, timestamp, created_at
		FROM user_entries
		ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []entries.Entry
	for rows.Next() {
		var e entries.Entry
		if err := rows.Scan(&e.ID, &e.AppName, &e.Username, &e.Timestamp, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}

func (r *EntryRepository) Clear(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_entries`)
	if err != nil {
		return 0, fmt.Errorf("clear entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *EntryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func (r *EntryRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *EntryRepository) Close() {
	r.pool.Close()
}

func (r *EntryRepository) PoolStats() metrics.PoolStats {
	stat := r.pool.Stat()
	return metrics.PoolStats{
		Open:    int(stat.TotalConns()),
		InUse:   int(stat.AcquiredConns()),
		Idle:    int(stat.IdleConns()),
		MaxOpen: int(stat.MaxConns()),
	}
}
