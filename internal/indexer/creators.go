package indexer

import (
	"database/sql"
	"errors"
	"math/big"

	"github.com/lastmonad/lastmonad-indexer/internal/event"
	"github.com/lastmonad/lastmonad-indexer/internal/store"
)

func (d *Dispatcher) applyStakeDeposited(tx *sql.Tx, ev *event.StakeDeposited) error {
	creatorKey := event.AddressKey(ev.Creator)

	creator, err := store.GetCreator(tx, creatorKey)
	if errors.Is(err, store.ErrNotFound) {
		creator = &store.Creator{
			Address:      creatorKey,
			StakedAmount: big.NewInt(0),
			TotalRewards: big.NewInt(0),
		}
	} else if err != nil {
		return err
	}

	// The contract reports the resulting stake, not a delta.
	creator.StakedAmount = ev.Amount
	creator.HasActiveStake = true

	if err := store.UpsertCreator(tx, creator); err != nil {
		return err
	}

	stats, err := store.GetOrInitGlobalStats(tx)
	if err != nil {
		return err
	}

	stats.TotalMonStaked = new(big.Int).Add(stats.TotalMonStaked, ev.Amount)

	return store.UpsertGlobalStats(tx, stats)
}

func (d *Dispatcher) applyStakeWithdrawn(tx *sql.Tx, ev *event.StakeWithdrawn) error {
	creatorKey := event.AddressKey(ev.Creator)

	creator, err := store.GetCreator(tx, creatorKey)
	if errors.Is(err, store.ErrNotFound) {
		d.log.Warnf("StakeWithdrawn for unknown creator %s, skipping", creatorKey)
		return nil
	}

	if err != nil {
		return err
	}

	creator.StakedAmount = big.NewInt(0)
	creator.HasActiveStake = false

	return store.UpsertCreator(tx, creator)
}
