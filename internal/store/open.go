package store

import (
	"context"
	"fmt"

	"github.com/iamdashante1/mb/internal/config"
)

// Open connects to the backend selected by cfg.DBDriver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	case config.DriverPostgres:
		return OpenPostgres(cfg.DSN, cfg.Debug)
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath, cfg.Debug)
	}

	return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
}
