package store

import (
	"errors"
	"fmt"

	"github.com/russross/meddler"
)

// PoolDetail is a pool together with its memberships and round history.
type PoolDetail struct {
	Pool    *Pool     `json:"pool"`
	Players []*Player `json:"players"`
	Rounds  []*Round  `json:"rounds"`
}

// PlayerGame is one pool a player participated in, with the membership record.
type PlayerGame struct {
	Player *Player `json:"player"`
	Pool   *Pool   `json:"pool"`
}

// ListPools returns pools ordered newest first, optionally filtered by
// status, together with the total count for pagination.
func (s *Store) ListPools(status *PoolStatus, limit, offset uint64) ([]*Pool, uint64, error) {
	where := ""
	args := []interface{}{}

	if status != nil {
		where = " WHERE status = ?"
		args = append(args, string(*status))
	}

	var total uint64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM pools"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pools: %w", err)
	}

	// pool_id is decimal TEXT, cast so "10" outranks "9" on ties.
	query := fmt.Sprintf(
		"SELECT * FROM pools%s ORDER BY created_at DESC, CAST(pool_id AS INTEGER) DESC LIMIT ? OFFSET ?", where)
	args = append(args, limit, offset)

	var pools []*Pool
	if err := meddler.QueryAll(s.db, &pools, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to query pools: %w", err)
	}

	return pools, total, nil
}

// GetPoolDetail returns the pool, its players ordered by join time and its
// rounds in ascending order.
func (s *Store) GetPoolDetail(poolID string) (*PoolDetail, error) {
	pool := new(Pool)
	if err := queryOne(s.db, pool, "SELECT * FROM pools WHERE pool_id = ?", poolID); err != nil {
		return nil, err
	}

	var players []*Player
	if err := meddler.QueryAll(s.db, &players,
		"SELECT * FROM players WHERE pool_id = ? ORDER BY joined_at ASC, id ASC", poolID); err != nil {
		return nil, fmt.Errorf("failed to query players for pool %s: %w", poolID, err)
	}

	var rounds []*Round
	if err := meddler.QueryAll(s.db, &rounds,
		"SELECT * FROM rounds WHERE pool_id = ? ORDER BY round ASC, id ASC", poolID); err != nil {
		return nil, fmt.Errorf("failed to query rounds for pool %s: %w", poolID, err)
	}

	return &PoolDetail{Pool: pool, Players: players, Rounds: rounds}, nil
}

// GetCreatorStats returns the lifetime aggregate for one creator.
func (s *Store) GetCreatorStats(address string) (*Creator, error) {
	return GetCreator(s.db, address)
}

// ListCreatorPools returns pools created by the given address, newest first.
func (s *Store) ListCreatorPools(address string, limit, offset uint64) ([]*Pool, uint64, error) {
	var total uint64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM pools WHERE creator = ?", address).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count creator pools: %w", err)
	}

	var pools []*Pool
	if err := meddler.QueryAll(s.db, &pools,
		"SELECT * FROM pools WHERE creator = ? ORDER BY created_at DESC, CAST(pool_id AS INTEGER) DESC LIMIT ? OFFSET ?",
		address, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to query creator pools: %w", err)
	}

	return pools, total, nil
}

// ListPlayerHistory returns the pools a player joined, newest membership
// first, each paired with the membership record.
func (s *Store) ListPlayerHistory(address string, limit, offset uint64) ([]*PlayerGame, uint64, error) {
	var total uint64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM players WHERE player = ?", address).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count player memberships: %w", err)
	}

	var memberships []*Player
	if err := meddler.QueryAll(s.db, &memberships,
		"SELECT * FROM players WHERE player = ? ORDER BY joined_at DESC, id DESC LIMIT ? OFFSET ?",
		address, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to query player memberships: %w", err)
	}

	games := make([]*PlayerGame, 0, len(memberships))

	for _, m := range memberships {
		pool, err := GetPool(s.db, m.PoolID)
		if err != nil {
			// Membership without a pool means the PoolCreated event was
			// never indexed. Surface the membership anyway.
			if errors.Is(err, ErrNotFound) {
				games = append(games, &PlayerGame{Player: m})
				continue
			}

			return nil, 0, err
		}

		games = append(games, &PlayerGame{Player: m, Pool: pool})
	}

	return games, total, nil
}

// GlobalStats returns the protocol-wide accumulator, zeroed if nothing has
// been indexed yet.
func (s *Store) GlobalStats() (*GlobalStats, error) {
	return GetOrInitGlobalStats(s.db)
}

// ListActiveGames returns pools currently in play, most recently activated first.
func (s *Store) ListActiveGames(limit uint64) ([]*Pool, error) {
	var pools []*Pool
	if err := meddler.QueryAll(s.db, &pools,
		"SELECT * FROM pools WHERE status = ? ORDER BY activated_at DESC, CAST(pool_id AS INTEGER) DESC LIMIT ?",
		string(StatusActive), limit); err != nil {
		return nil, fmt.Errorf("failed to query active games: %w", err)
	}

	return pools, nil
}

// ListRecentGames returns completed pools, most recently finished first.
func (s *Store) ListRecentGames(limit uint64) ([]*Pool, error) {
	var pools []*Pool
	if err := meddler.QueryAll(s.db, &pools,
		"SELECT * FROM pools WHERE status = ? ORDER BY completed_at DESC, CAST(pool_id AS INTEGER) DESC LIMIT ?",
		string(StatusCompleted), limit); err != nil {
		return nil, fmt.Errorf("failed to query recent games: %w", err)
	}

	return pools, nil
}
