package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"custodia/internal/audit"
	consentservice "custodia/internal/consent/service"
	consentstore "custodia/internal/consent/store"
	"custodia/internal/platform/config"
	"custodia/internal/platform/health"
)

// storeSet bundles the persistence backends selected by configuration so the
// composition root hands one thing to the services.
type storeSet struct {
	Consent consentservice.Store
	Audit   audit.Store
	Ping    health.CheckFunc

	db *sql.DB
}

// Close releases the underlying database handle, if any.
func (s *storeSet) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// openStores builds the consent and audit stores for the configured driver.
// The sqlite driver shares one database handle between both stores and runs
// their schema setup before the server accepts traffic.
func openStores(ctx context.Context, cfg config.StoreConfig) (*storeSet, error) {
	switch cfg.Driver {
	case "memory":
		return &storeSet{
			Consent: consentstore.New(),
			Audit:   audit.NewInMemoryStore(),
		}, nil

	case "sqlite":
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database %s: %w", cfg.DSN, err)
		}

		consent := consentstore.NewSQLite(db)
		if err := consent.Init(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initializing consent schema: %w", err)
		}

		auditStore := audit.NewSQLite(db)
		if err := auditStore.Init(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initializing audit schema: %w", err)
		}

		return &storeSet{
			Consent: consent,
			Audit:   auditStore,
			Ping:    db.Ping,
			db:      db,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
