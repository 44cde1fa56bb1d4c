// Package storage selects and assembles the record store backend.
package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/storage/badger"
	"github.com/bobmcallan/navdash/internal/storage/postgres"
	"github.com/bobmcallan/navdash/internal/storage/surrealdb"
)

// NewRecordBackend opens the backend named by config.Storage.Backend.
// Supported backends: "badger" (default), "surrealdb", "postgres".
func NewRecordBackend(ctx context.Context, logger *common.Logger, config *common.Config) (interfaces.RecordBackend, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = common.BackendBadger
	}

	switch backend {
	case common.BackendBadger:
		store, err := badger.NewStore(logger, config.Storage.Badger.Path)
		if err != nil {
			return nil, err
		}
		return store, nil

	case common.BackendSurrealDB:
		store, err := surrealdb.Connect(ctx, logger, config.Storage.SurrealDB)
		if err != nil {
			return nil, err
		}
		return store, nil

	case common.BackendPostgres:
		store, err := postgres.Connect(ctx, logger, config.Storage.Postgres)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: badger, surrealdb, postgres)", backend)
	}
}
