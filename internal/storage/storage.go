// Package storage opens the entry repository selected by configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/Togather-Foundation/dashlog/internal/config"
	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
	"github.com/Togather-Foundation/dashlog/internal/metrics"
	"github.com/Togather-Foundation/dashlog/internal/storage/memory"
	"github.com/Togather-Foundation/dashlog/internal/storage/postgres"
	"github.com/Togather-Foundation/dashlog/internal/storage/sqlite"
)

// Pinger is implemented by backends with a reachable server or file.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend bundles an opened repository with its optional capabilities.
type Backend struct {
	Repository entries.Repository
	// Pinger is nil for the memory backend.
	Pinger Pinger
	// Pool is nil for backends without a connection pool.
	Pool metrics.PoolStatter
	// DatabaseURL is set for postgres only; migrations need it.
	DatabaseURL string
	close       func()
}

func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open constructs the repository named by cfg.Store.Backend. Opening does not
// create tables; call Init on the repository (or entries.Store) for that.
func Open(ctx context.Context, cfg config.Config) (*Backend, error) {
	switch cfg.Store.Backend {
	case "postgres":
		pool, err := postgres.OpenPool(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", entries.ErrStoreUnavailable, err)
		}
		repo, err := postgres.NewEntryRepository(pool, cfg.Database.URL)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &Backend{
			Repository:  repo,
			Pinger:      repo,
			Pool:        repo,
			DatabaseURL: cfg.Database.URL,
			close:       repo.Close,
		}, nil
	case "sqlite":
		repo, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", entries.ErrStoreUnavailable, err)
		}
		return &Backend{
			Repository: repo,
			Pinger:     repo,
			Pool:       repo,
			close:      func() { _ = repo.Close() },
		}, nil
	case "memory":
		repo := memory.NewEntryRepository()
		if cfg.Store.MemorySeed {
			repo.Seed()
		}
		return &Backend{Repository: repo}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
