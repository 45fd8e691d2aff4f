package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/russross/meddler"

	"github.com/lastmonad/lastmonad-indexer/internal/event"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Store serves read queries over the aggregated entities.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for transaction management.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Upsert writes src as a full row into table, replacing any existing row
// with the same primary key. Aggregation handlers always write back the
// complete next state, so last write wins per field is exactly the contract.
func Upsert(q meddler.DB, table string, src interface{}) error {
	cols, err := meddler.ColumnsQuoted(src, true)
	if err != nil {
		return fmt.Errorf("failed to derive columns for %s: %w", table, err)
	}

	placeholders, err := meddler.PlaceholdersString(src, true)
	if err != nil {
		return fmt.Errorf("failed to derive placeholders for %s: %w", table, err)
	}

	vals, err := meddler.Values(src, true)
	if err != nil {
		return fmt.Errorf("failed to derive values for %s: %w", table, err)
	}

	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)", table, cols, placeholders)

	if _, err := q.Exec(query, vals...); err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", table, err)
	}

	return nil
}

func queryOne(q meddler.DB, dst interface{}, query string, args ...interface{}) error {
	if err := meddler.QueryRow(q, dst, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}

		return err
	}

	return nil
}

// GetPool loads a pool by its on-chain id.
func GetPool(q meddler.DB, poolID *big.Int) (*Pool, error) {
	pool := new(Pool)
	if err := queryOne(q, pool, "SELECT * FROM pools WHERE pool_id = ?", poolID.String()); err != nil {
		return nil, err
	}

	return pool, nil
}

// GetPlayer loads a player membership by its composite key.
func GetPlayer(q meddler.DB, id string) (*Player, error) {
	player := new(Player)
	if err := queryOne(q, player, "SELECT * FROM players WHERE id = ?", id); err != nil {
		return nil, err
	}

	return player, nil
}

// GetRound loads a round record by its key.
func GetRound(q meddler.DB, id string) (*Round, error) {
	round := new(Round)
	if err := queryOne(q, round, "SELECT * FROM rounds WHERE id = ?", id); err != nil {
		return nil, err
	}

	return round, nil
}

// GetCreator loads a creator by lowercased address.
func GetCreator(q meddler.DB, address string) (*Creator, error) {
	creator := new(Creator)
	if err := queryOne(q, creator, "SELECT * FROM creators WHERE address = ?", address); err != nil {
		return nil, err
	}

	return creator, nil
}

// GetGlobalStats loads the protocol-wide accumulator.
func GetGlobalStats(q meddler.DB) (*GlobalStats, error) {
	stats := new(GlobalStats)
	if err := queryOne(q, stats, "SELECT * FROM global_stats WHERE id = ?", event.GlobalStatsID); err != nil {
		return nil, err
	}

	return stats, nil
}

// GetOrInitGlobalStats loads the accumulator, falling back to a zeroed
// instance when no event has touched it yet. The zeroed instance is not
// persisted until the caller upserts it.
func GetOrInitGlobalStats(q meddler.DB) (*GlobalStats, error) {
	stats, err := GetGlobalStats(q)
	if errors.Is(err, ErrNotFound) {
		return &GlobalStats{
			ID:                 event.GlobalStatsID,
			TotalMonStaked:     big.NewInt(0),
			ProjectPoolBalance: big.NewInt(0),
		}, nil
	}

	if err != nil {
		return nil, err
	}

	return stats, nil
}

func UpsertPool(q meddler.DB, pool *Pool) error {
	return Upsert(q, "pools", pool)
}

func UpsertPlayer(q meddler.DB, player *Player) error {
	return Upsert(q, "players", player)
}

func UpsertRound(q meddler.DB, round *Round) error {
	return Upsert(q, "rounds", round)
}

func UpsertCreator(q meddler.DB, creator *Creator) error {
	return Upsert(q, "creators", creator)
}

func UpsertGlobalStats(q meddler.DB, stats *GlobalStats) error {
	return Upsert(q, "global_stats", stats)
}
