// Package migrations carries the embedded schema for the indexer database.
package migrations

import (
	"database/sql"

	_ "embed"

	"github.com/lastmonad/lastmonad-indexer/internal/db"
	"github.com/lastmonad/lastmonad-indexer/internal/logger"
)

//go:embed 001_entities.sql
var mig001 string

//go:embed 002_raw_events.sql
var mig002 string

//go:embed 003_sync_state.sql
var mig003 string

// All returns the full ordered migration set.
func All() []db.Migration {
	return []db.Migration{
		{ID: "001_entities.sql", SQL: mig001},
		{ID: "002_raw_events.sql", SQL: mig002},
		{ID: "003_sync_state.sql", SQL: mig003},
	}
}

// Run applies the full schema to the database at dbPath.
func Run(dbPath string) error {
	return db.RunMigrations(dbPath, All())
}

// RunDB applies the full schema to an already open database.
func RunDB(log *logger.Logger, database *sql.DB) error {
	return db.RunMigrationsDB(log, database, All())
}
