package di

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goliatone/go-pim/internal/catalog"
	"github.com/goliatone/go-pim/internal/runtimeconfig"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const defaultSQLiteDSN = "file:pim.db?cache=shared&_fk=1"

func (c *Container) configureDatabase(ctx context.Context) error {
	if c.reposSet {
		return nil
	}
	if c.bunDB == nil {
		db, err := OpenDatabase(c.Config.Storage)
		if err != nil {
			return err
		}
		if db == nil {
			return nil
		}
		c.bunDB = db
		c.ownsDB = true
	}
	if !c.Config.Storage.CreateSchema {
		return nil
	}
	if err := catalog.CreateSchema(ctx, c.bunDB); err != nil {
		c.Close()
		return fmt.Errorf("di: create catalog schema: %w", err)
	}
	c.logger("pim.catalog").Info("catalog.schema.created", "driver", c.Config.Storage.Driver)
	return nil
}

// OpenDatabase opens the bun database for cfg. The memory driver returns a
// nil database.
func OpenDatabase(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case runtimeconfig.StorageDriverSQLite:
		dsn := strings.TrimSpace(cfg.DSN)
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case runtimeconfig.StorageDriverPostgres:
		sqldb, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	case runtimeconfig.StorageDriverMemory, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrStorageDriverUnknown, cfg.Driver)
	}
}
