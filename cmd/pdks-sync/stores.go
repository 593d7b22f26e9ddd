package main

import (
	"context"

	"cdr.dev/slog/v3"
	"golang.org/x/xerrors"

	"github.com/BrandonDHaskell/pdks-sync/internal/config"
	"github.com/BrandonDHaskell/pdks-sync/internal/db"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store/memory"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store/postgres"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store/sqlite"
)

type stores struct {
	raw       store.RawPunchStore
	workdays  store.WorkdayStore
	personnel store.PersonnelStore
	close     func()
}

func openStores(ctx context.Context, cfg config.Config, logger slog.Logger) (stores, error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return stores{}, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return stores{}, err
		}
		logger.Info(ctx, "using postgres store")
		return stores{
			raw:       postgres.NewRawPunchStore(pool),
			workdays:  postgres.NewWorkdayStore(pool),
			personnel: postgres.NewPersonnelStore(pool),
			close:     pool.Close,
		}, nil

	case config.StoreMemory:
		logger.Warn(ctx, "using memory store, nothing survives a restart")
		return stores{
			raw:       memory.NewRawPunchStore(),
			workdays:  memory.NewWorkdayStore(),
			personnel: memory.NewPersonnelStore(),
			close:     func() {},
		}, nil

	case config.StoreSQLite:
		conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
		if err != nil {
			return stores{}, err
		}
		writer := db.NewWorker(conn)
		logger.Info(ctx, "using sqlite store", slog.F("path", cfg.DBPath))
		return stores{
			raw:       sqlite.NewRawPunchStore(conn, writer),
			workdays:  sqlite.NewWorkdayStore(conn, writer),
			personnel: sqlite.NewPersonnelStore(conn, writer),
			close: func() {
				writer.Close()
				_ = conn.Close()
			},
		}, nil
	}
	return stores{}, xerrors.Errorf("unknown store %q", cfg.Store)
}
