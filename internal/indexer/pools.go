package indexer

import (
	"database/sql"
	"errors"
	"math/big"

	"github.com/lastmonad/lastmonad-indexer/internal/event"
	"github.com/lastmonad/lastmonad-indexer/internal/store"
)

// creatorRewardNumerator / creatorRewardDenominator encode the 12% share of
// the prize pool owed to the pool creator, floored by integer division.
var (
	creatorRewardNumerator   = big.NewInt(12)
	creatorRewardDenominator = big.NewInt(100)
)

func (d *Dispatcher) applyPoolCreated(tx *sql.Tx, env event.Envelope, ev *event.PoolCreated) error {
	creatorKey := event.AddressKey(ev.Creator)

	pool := &store.Pool{
		PoolID:         ev.PoolID,
		Creator:        creatorKey,
		EntryFee:       ev.EntryFee,
		MaxPlayers:     ev.MaxPlayers,
		CurrentPlayers: 0,
		PrizePool:      big.NewInt(0),
		Status:         store.StatusOpened,
		CreatedAt:      env.BlockTime,
	}

	if err := store.UpsertPool(tx, pool); err != nil {
		return err
	}

	creator, err := store.GetCreator(tx, creatorKey)
	if errors.Is(err, store.ErrNotFound) {
		// Creating a pool requires an active stake, so a creator first seen
		// here is assumed staked even though no StakeDeposited was indexed.
		creator = &store.Creator{
			Address:        creatorKey,
			StakedAmount:   big.NewInt(0),
			TotalRewards:   big.NewInt(0),
			HasActiveStake: true,
		}
	} else if err != nil {
		return err
	}

	creator.PoolsCreated++

	if err := store.UpsertCreator(tx, creator); err != nil {
		return err
	}

	stats, err := store.GetOrInitGlobalStats(tx)
	if err != nil {
		return err
	}

	stats.TotalPools++

	return store.UpsertGlobalStats(tx, stats)
}

func (d *Dispatcher) applyPlayerJoined(tx *sql.Tx, env event.Envelope, ev *event.PlayerJoined) error {
	pool, err := store.GetPool(tx, ev.PoolID)

	switch {
	case errors.Is(err, store.ErrNotFound):
		d.log.Warnf("PlayerJoined for unknown pool %s, membership recorded without pool update", ev.PoolID)
	case err != nil:
		return err
	default:
		// The player count comes from the event, the prize pool grows by one
		// entry fee per join.
		pool.CurrentPlayers = ev.CurrentPlayers
		pool.PrizePool = new(big.Int).Add(pool.PrizePool, pool.EntryFee)

		if err := store.UpsertPool(tx, pool); err != nil {
			return err
		}
	}

	player := &store.Player{
		ID:           event.PlayerKey(ev.PoolID, ev.Player),
		PoolID:       ev.PoolID,
		Player:       event.AddressKey(ev.Player),
		JoinedAt:     env.BlockTime,
		IsEliminated: false,
	}

	return store.UpsertPlayer(tx, player)
}

func (d *Dispatcher) applyPoolActivated(tx *sql.Tx, env event.Envelope, ev *event.PoolActivated) error {
	pool, err := store.GetPool(tx, ev.PoolID)
	if errors.Is(err, store.ErrNotFound) {
		d.log.Warnf("PoolActivated for unknown pool %s, skipping", ev.PoolID)
		return nil
	}

	if err != nil {
		return err
	}

	activatedAt := env.BlockTime

	pool.Status = store.StatusActive
	// The contract reports the final pot on activation; trust it over the
	// per-join accumulation.
	pool.PrizePool = ev.PrizePool
	pool.ActivatedAt = &activatedAt

	return store.UpsertPool(tx, pool)
}

func (d *Dispatcher) applyGameCompleted(tx *sql.Tx, env event.Envelope, ev *event.GameCompleted) error {
	pool, err := store.GetPool(tx, ev.PoolID)

	switch {
	case errors.Is(err, store.ErrNotFound):
		// The pool and creator updates are skipped, but the completion still
		// counts toward the global total.
		d.log.Warnf("GameCompleted for unknown pool %s, pool and creator unchanged", ev.PoolID)
	case err != nil:
		return err
	default:
		if err := d.completePool(tx, env, ev, pool); err != nil {
			return err
		}
	}

	stats, err := store.GetOrInitGlobalStats(tx)
	if err != nil {
		return err
	}

	stats.TotalGamesCompleted++

	return store.UpsertGlobalStats(tx, stats)
}

func (d *Dispatcher) completePool(tx *sql.Tx, env event.Envelope, ev *event.GameCompleted, pool *store.Pool) error {
	// The reward derives from the prize pool as it stood when the game
	// completed, before any field is overwritten.
	reward := new(big.Int).Div(
		new(big.Int).Mul(pool.PrizePool, creatorRewardNumerator),
		creatorRewardDenominator,
	)

	winnerKey := event.AddressKey(ev.Winner)
	completedAt := env.BlockTime

	pool.Status = store.StatusCompleted
	pool.CompletedAt = &completedAt
	pool.Winner = &winnerKey
	pool.WinnerPrize = ev.PrizeAmount
	pool.CreatorReward = reward

	if err := store.UpsertPool(tx, pool); err != nil {
		return err
	}

	creator, err := store.GetCreator(tx, pool.Creator)

	switch {
	case errors.Is(err, store.ErrNotFound):
		d.log.Warnf("GameCompleted for pool %s with unknown creator %s", ev.PoolID, pool.Creator)
		return nil
	case err != nil:
		return err
	}

	creator.PoolsCompleted++
	creator.TotalRewards = new(big.Int).Add(creator.TotalRewards, reward)

	return store.UpsertCreator(tx, creator)
}

func (d *Dispatcher) applyPoolAbandoned(tx *sql.Tx, env event.Envelope, ev *event.PoolAbandoned) error {
	pool, err := store.GetPool(tx, ev.PoolID)
	if errors.Is(err, store.ErrNotFound) {
		d.log.Warnf("PoolAbandoned for unknown pool %s, skipping", ev.PoolID)
		return nil
	}

	if err != nil {
		return err
	}

	abandonedAt := env.BlockTime

	pool.Status = store.StatusAbandoned
	pool.AbandonedAt = &abandonedAt

	return store.UpsertPool(tx, pool)
}
