package cmd

import (
	"context"
	"fmt"

	"github.com/Togather-Foundation/dashlog/internal/config"
	"github.com/Togather-Foundation/dashlog/internal/domain/entries"
	"github.com/Togather-Foundation/dashlog/internal/storage"
	"github.com/rs/zerolog"
)

// openStore opens the configured backend and ensures the table exists. A
// failed Init is logged by the store and does not stop the caller.
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*entries.Store, *storage.Backend, error) {
	loc, err := cfg.Dashboard.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("display timezone: %w", err)
	}
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	store := entries.NewStore(backend.Repository, loc, logger)
	store.Init(ctx)
	return store, backend, nil
}
