package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lastmonad/lastmonad-indexer/internal/logger"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
)

const upDownSeparator = "-- +migrate Up"

// Migration is a single schema migration held in memory. The SQL blob
// contains both directions split by the "-- +migrate Up" marker, with the
// Down section first.
type Migration struct {
	ID  string
	SQL string
}

// RunMigrationsDB executes all pending up migrations against the given DB.
func RunMigrationsDB(log *logger.Logger, db *sql.DB, migrations []Migration) error {
	migs := &migrate.MemoryMigrationSource{Migrations: []*migrate.Migration{}}

	for _, m := range migrations {
		splitted := strings.Split(m.SQL, upDownSeparator)
		if len(splitted) < 2 {
			return fmt.Errorf("migration %s missing '-- +migrate Up' separator", m.ID)
		}

		downSQL := splitted[0]
		upSQL := strings.TrimSpace(splitted[1])

		// Strip the Down marker if present
		downMarker := "-- +migrate Down"
		if idx := strings.Index(downSQL, downMarker); idx != -1 {
			downSQL = strings.TrimSpace(downSQL[idx+len(downMarker):])
		} else {
			downSQL = strings.TrimSpace(downSQL)
		}

		migs.Migrations = append(migs.Migrations, &migrate.Migration{
			Id:   m.ID,
			Up:   []string{upSQL},
			Down: []string{downSQL},
		})
	}

	n, err := migrate.Exec(db, "sqlite3", migs, migrate.Up)
	if err != nil {
		return fmt.Errorf("error executing %d migrations: %w", len(migs.Migrations), err)
	}

	log.Infof("successfully ran %d of %d migrations", n, len(migs.Migrations))
	return nil
}

// RunMigrations opens the database at dbPath and executes all pending migrations.
func RunMigrations(dbPath string, migrations []Migration) error {
	db, err := NewSQLiteDB(dbPath)
	if err != nil {
		return fmt.Errorf("error creating DB: %w", err)
	}
	defer db.Close()

	return RunMigrationsDB(logger.GetDefaultLogger(), db, migrations)
}
