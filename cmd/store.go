package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/itihaas-labs/timeline-server/internal/store"
)

// openStore creates the configured store backend.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	}
	return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
}
