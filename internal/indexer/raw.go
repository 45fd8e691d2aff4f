package indexer

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/russross/meddler"

	"github.com/lastmonad/lastmonad-indexer/internal/event"
)

var positionColumns = []string{"chain_id", "block_number", "log_index"}

// insertRaw records the emission in the event's raw table. The position
// primary key makes the insert fail on replay; that constraint violation is
// reported as duplicate, not as an error.
func insertRaw(tx *sql.Tx, env event.Envelope) (duplicate bool, err error) {
	ev := env.Event

	cols, err := meddler.Columns(ev, true)
	if err != nil {
		return false, fmt.Errorf("failed to derive columns: %w", err)
	}

	vals, err := meddler.Values(ev, true)
	if err != nil {
		return false, fmt.Errorf("failed to derive values: %w", err)
	}

	allCols := append(append([]string{}, positionColumns...), cols...)
	args := append([]interface{}{env.ChainID, env.BlockNumber, env.LogIndex}, vals...)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ev.Table(),
		strings.Join(allCols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(allCols)), ", "),
	)

	if _, err := tx.Exec(query, args...); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return true, nil
		}

		return false, err
	}

	return false, nil
}
