package indexer

import (
	"database/sql"

	"github.com/lastmonad/lastmonad-indexer/internal/event"
	"github.com/lastmonad/lastmonad-indexer/internal/store"
)

func (d *Dispatcher) applyProjectPoolUpdated(tx *sql.Tx, ev *event.ProjectPoolUpdated) error {
	stats, err := store.GetOrInitGlobalStats(tx)
	if err != nil {
		return err
	}

	// The event carries the resulting balance, the delta is informational.
	stats.ProjectPoolBalance = ev.TotalPool

	return store.UpsertGlobalStats(tx, stats)
}
