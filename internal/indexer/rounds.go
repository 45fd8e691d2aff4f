package indexer

import (
	"database/sql"

	"github.com/lastmonad/lastmonad-indexer/internal/event"
	"github.com/lastmonad/lastmonad-indexer/internal/store"
)

func (d *Dispatcher) applyRoundResolved(tx *sql.Tx, env event.Envelope, ev *event.RoundResolved) error {
	winning := ev.WinningChoice.String()

	round := &store.Round{
		ID:              event.RoundKey(ev.PoolID, ev.Round),
		PoolID:          ev.PoolID,
		Round:           ev.Round,
		WinningChoice:   &winning,
		EliminatedCount: ev.EliminatedCount,
		RemainingCount:  ev.RemainingCount,
		IsRepeated:      false,
		Timestamp:       env.BlockTime,
	}

	return store.UpsertRound(tx, round)
}

func (d *Dispatcher) applyRoundRepeated(tx *sql.Tx, env event.Envelope, ev *event.RoundRepeated) error {
	unanimous := ev.UnanimousChoice.String()

	// A unanimous round eliminates nobody and is replayed under the same
	// round number, so the record gets its own suffixed key.
	round := &store.Round{
		ID:              event.RepeatedRoundKey(ev.PoolID, ev.Round),
		PoolID:          ev.PoolID,
		Round:           ev.Round,
		UnanimousChoice: &unanimous,
		EliminatedCount: 0,
		RemainingCount:  ev.PlayerCount,
		IsRepeated:      true,
		Timestamp:       env.BlockTime,
	}

	return store.UpsertRound(tx, round)
}
