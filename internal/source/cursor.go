// Package source polls the chain for contract logs and feeds them, in
// order, to the dispatcher.
package source

import (
	"database/sql"
	"errors"
	"time"

	"github.com/russross/meddler"

	"github.com/lastmonad/lastmonad-indexer/internal/store"
)

// Cursor marks the highest block whose events have been fully applied for a
// chain. Polling resumes from the next block after a restart; re-delivery of
// the cursor block is harmless because the dispatcher deduplicates.
type Cursor struct {
	ChainID          uint64 `meddler:"chain_id"`
	LastAppliedBlock uint64 `meddler:"last_applied_block"`
	UpdatedAt        uint64 `meddler:"updated_at"`
}

// LoadCursor returns the persisted cursor, or nil when the chain has never
// been indexed.
func LoadCursor(q meddler.DB, chainID uint64) (*Cursor, error) {
	cursor := new(Cursor)

	err := meddler.QueryRow(q, cursor, "SELECT * FROM sync_state WHERE chain_id = ?", chainID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return cursor, nil
}

// SaveCursor records the highest fully applied block for the chain.
func SaveCursor(q meddler.DB, chainID, block uint64) error {
	return store.Upsert(q, "sync_state", &Cursor{
		ChainID:          chainID,
		LastAppliedBlock: block,
		UpdatedAt:        uint64(time.Now().Unix()),
	})
}
