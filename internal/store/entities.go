// Package store holds the aggregated entities derived from contract events
// and the queries the read API serves them with.
package store

import (
	"math/big"
)

// PoolStatus is the lifecycle state of a pool. Transitions only move
// forward: OPENED -> ACTIVE -> COMPLETED, or OPENED/ACTIVE -> ABANDONED.
type PoolStatus string

const (
	StatusOpened    PoolStatus = "OPENED"
	StatusActive    PoolStatus = "ACTIVE"
	StatusCompleted PoolStatus = "COMPLETED"
	StatusAbandoned PoolStatus = "ABANDONED"
)

// ValidStatuses is used to validate status filters coming from the API.
var ValidStatuses = map[PoolStatus]struct{}{
	StatusOpened:    {},
	StatusActive:    {},
	StatusCompleted: {},
	StatusAbandoned: {},
}

// Pool is one elimination game pool.
type Pool struct {
	PoolID         *big.Int   `meddler:"pool_id,bigint" json:"poolId"`
	Creator        string     `meddler:"creator" json:"creator"`
	EntryFee       *big.Int   `meddler:"entry_fee,bigint" json:"entryFee"`
	MaxPlayers     uint64     `meddler:"max_players" json:"maxPlayers"`
	CurrentPlayers uint64     `meddler:"current_players" json:"currentPlayers"`
	PrizePool      *big.Int   `meddler:"prize_pool,bigint" json:"prizePool"`
	Status         PoolStatus `meddler:"status" json:"status"`
	CreatedAt      uint64     `meddler:"created_at" json:"createdAt"`
	ActivatedAt    *uint64    `meddler:"activated_at" json:"activatedAt,omitempty"`
	CompletedAt    *uint64    `meddler:"completed_at" json:"completedAt,omitempty"`
	AbandonedAt    *uint64    `meddler:"abandoned_at" json:"abandonedAt,omitempty"`
	Winner         *string    `meddler:"winner" json:"winner,omitempty"`
	WinnerPrize    *big.Int   `meddler:"winner_prize,bigint" json:"winnerPrize,omitempty"`
	CreatorReward  *big.Int   `meddler:"creator_reward,bigint" json:"creatorReward,omitempty"`
}

// Player is one player's membership in one pool, keyed "{poolId}-{address}".
type Player struct {
	ID                string   `meddler:"id" json:"id"`
	PoolID            *big.Int `meddler:"pool_id,bigint" json:"poolId"`
	Player            string   `meddler:"player" json:"player"`
	JoinedAt          uint64   `meddler:"joined_at" json:"joinedAt"`
	IsEliminated      bool     `meddler:"is_eliminated" json:"isEliminated"`
	EliminatedInRound *uint64  `meddler:"eliminated_in_round" json:"eliminatedInRound,omitempty"`
}

// Round is one resolved or voided elimination round. A voided unanimous
// round gets its own record with the "-repeated" key suffix.
type Round struct {
	ID              string   `meddler:"id" json:"id"`
	PoolID          *big.Int `meddler:"pool_id,bigint" json:"poolId"`
	Round           uint64   `meddler:"round" json:"round"`
	WinningChoice   *string  `meddler:"winning_choice" json:"winningChoice,omitempty"`
	UnanimousChoice *string  `meddler:"unanimous_choice" json:"unanimousChoice,omitempty"`
	EliminatedCount uint64   `meddler:"eliminated_count" json:"eliminatedCount"`
	RemainingCount  uint64   `meddler:"remaining_count" json:"remainingCount"`
	IsRepeated      bool     `meddler:"is_repeated" json:"isRepeated"`
	Timestamp       uint64   `meddler:"timestamp" json:"timestamp"`
}

// Creator aggregates a pool creator's lifetime activity, keyed by
// lowercased address.
type Creator struct {
	Address        string   `meddler:"address" json:"address"`
	StakedAmount   *big.Int `meddler:"staked_amount,bigint" json:"stakedAmount"`
	PoolsCreated   uint64   `meddler:"pools_created" json:"poolsCreated"`
	PoolsCompleted uint64   `meddler:"pools_completed" json:"poolsCompleted"`
	TotalRewards   *big.Int `meddler:"total_rewards,bigint" json:"totalRewards"`
	HasActiveStake bool     `meddler:"has_active_stake" json:"hasActiveStake"`
}

// GlobalStats is the protocol-wide singleton accumulator.
type GlobalStats struct {
	ID                  string   `meddler:"id" json:"id"`
	TotalPools          uint64   `meddler:"total_pools" json:"totalPools"`
	TotalGamesCompleted uint64   `meddler:"total_games_completed" json:"totalGamesCompleted"`
	TotalMonStaked      *big.Int `meddler:"total_mon_staked,bigint" json:"totalMonStaked"`
	ProjectPoolBalance  *big.Int `meddler:"project_pool_balance,bigint" json:"projectPoolBalance"`
}
