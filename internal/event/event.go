// Package event defines the decoded contract events the indexer consumes and
// the on-chain position metadata that travels with them.
package event

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// GlobalStatsID is the singleton row key for protocol-wide counters.
const GlobalStatsID = "global"

// EventType names one of the contract events.
type EventType string

const (
	TypePoolCreated          EventType = "PoolCreated"
	TypePlayerJoined         EventType = "PlayerJoined"
	TypePoolActivated        EventType = "PoolActivated"
	TypePlayerMadeChoice     EventType = "PlayerMadeChoice"
	TypeRoundResolved        EventType = "RoundResolved"
	TypeRoundRepeated        EventType = "RoundRepeated"
	TypeGameCompleted        EventType = "GameCompleted"
	TypePoolAbandoned        EventType = "PoolAbandoned"
	TypeStakeDeposited       EventType = "StakeDeposited"
	TypeStakeWithdrawn       EventType = "StakeWithdrawn"
	TypeCreatorRewardClaimed EventType = "CreatorRewardClaimed"
	TypeProjectPoolUpdated   EventType = "ProjectPoolUpdated"
	TypeOwnershipTransferred EventType = "OwnershipTransferred"
)

// Choice is a player's pick in an elimination round.
type Choice uint8

const (
	ChoiceNone  Choice = 0
	ChoiceHeads Choice = 1
	ChoiceTails Choice = 2
)

func (c Choice) String() string {
	switch c {
	case ChoiceHeads:
		return "HEADS"
	case ChoiceTails:
		return "TAILS"
	default:
		return "NONE"
	}
}

// Value stores the choice as its text name.
func (c Choice) Value() (driver.Value, error) {
	return c.String(), nil
}

// Scan restores a choice from its text name.
func (c *Choice) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*c = ChoiceNone
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Choice", src)
	}

	switch s {
	case "HEADS":
		*c = ChoiceHeads
	case "TAILS":
		*c = ChoiceTails
	case "NONE", "":
		*c = ChoiceNone
	default:
		return fmt.Errorf("unknown choice %q", s)
	}

	return nil
}

// Envelope carries a decoded event together with its on-chain position.
// (ChainID, BlockNumber, LogIndex) uniquely identifies the emission and is
// the deduplication key for replays.
type Envelope struct {
	ChainID     uint64
	BlockNumber uint64
	LogIndex    uint64
	BlockTime   uint64
	Event       Event
}

// Event is the closed set of decoded contract events. Only types in this
// package implement it.
type Event interface {
	Type() EventType

	// Table names the raw event table the emission is recorded in.
	Table() string

	sealed()
}

type PoolCreated struct {
	PoolID     *big.Int       `meddler:"pool_id,bigint"`
	Creator    common.Address `meddler:"creator,address"`
	EntryFee   *big.Int       `meddler:"entry_fee,bigint"`
	MaxPlayers uint64         `meddler:"max_players"`
}

func (*PoolCreated) Type() EventType { return TypePoolCreated }
func (*PoolCreated) Table() string   { return "raw_pool_created" }
func (*PoolCreated) sealed()         {}

type PlayerJoined struct {
	PoolID         *big.Int       `meddler:"pool_id,bigint"`
	Player         common.Address `meddler:"player,address"`
	CurrentPlayers uint64         `meddler:"current_players"`
	MaxPlayers     uint64         `meddler:"max_players"`
}

func (*PlayerJoined) Type() EventType { return TypePlayerJoined }
func (*PlayerJoined) Table() string   { return "raw_player_joined" }
func (*PlayerJoined) sealed()         {}

type PoolActivated struct {
	PoolID       *big.Int `meddler:"pool_id,bigint"`
	TotalPlayers uint64   `meddler:"total_players"`
	PrizePool    *big.Int `meddler:"prize_pool,bigint"`
}

func (*PoolActivated) Type() EventType { return TypePoolActivated }
func (*PoolActivated) Table() string   { return "raw_pool_activated" }
func (*PoolActivated) sealed()         {}

type PlayerMadeChoice struct {
	PoolID *big.Int       `meddler:"pool_id,bigint"`
	Player common.Address `meddler:"player,address"`
	Choice Choice         `meddler:"choice"`
	Round  uint64         `meddler:"round"`
}

func (*PlayerMadeChoice) Type() EventType { return TypePlayerMadeChoice }
func (*PlayerMadeChoice) Table() string   { return "raw_player_made_choice" }
func (*PlayerMadeChoice) sealed()         {}

type RoundResolved struct {
	PoolID          *big.Int `meddler:"pool_id,bigint"`
	Round           uint64   `meddler:"round"`
	WinningChoice   Choice   `meddler:"winning_choice"`
	EliminatedCount uint64   `meddler:"eliminated_count"`
	RemainingCount  uint64   `meddler:"remaining_count"`
}

func (*RoundResolved) Type() EventType { return TypeRoundResolved }
func (*RoundResolved) Table() string   { return "raw_round_resolved" }
func (*RoundResolved) sealed()         {}

type RoundRepeated struct {
	PoolID          *big.Int `meddler:"pool_id,bigint"`
	Round           uint64   `meddler:"round"`
	UnanimousChoice Choice   `meddler:"unanimous_choice"`
	PlayerCount     uint64   `meddler:"player_count"`
}

func (*RoundRepeated) Type() EventType { return TypeRoundRepeated }
func (*RoundRepeated) Table() string   { return "raw_round_repeated" }
func (*RoundRepeated) sealed()         {}

type GameCompleted struct {
	PoolID      *big.Int       `meddler:"pool_id,bigint"`
	Winner      common.Address `meddler:"winner,address"`
	PrizeAmount *big.Int       `meddler:"prize_amount,bigint"`
}

func (*GameCompleted) Type() EventType { return TypeGameCompleted }
func (*GameCompleted) Table() string   { return "raw_game_completed" }
func (*GameCompleted) sealed()         {}

type PoolAbandoned struct {
	PoolID       *big.Int       `meddler:"pool_id,bigint"`
	Creator      common.Address `meddler:"creator,address"`
	RefundAmount *big.Int       `meddler:"refund_amount,bigint"`
}

func (*PoolAbandoned) Type() EventType { return TypePoolAbandoned }
func (*PoolAbandoned) Table() string   { return "raw_pool_abandoned" }
func (*PoolAbandoned) sealed()         {}

type StakeDeposited struct {
	Creator       common.Address `meddler:"creator,address"`
	Amount        *big.Int       `meddler:"amount,bigint"`
	PoolsEligible uint64         `meddler:"pools_eligible"`
}

func (*StakeDeposited) Type() EventType { return TypeStakeDeposited }
func (*StakeDeposited) Table() string   { return "raw_stake_deposited" }
func (*StakeDeposited) sealed()         {}

type StakeWithdrawn struct {
	Creator common.Address `meddler:"creator,address"`
	Amount  *big.Int       `meddler:"amount,bigint"`
	Penalty *big.Int       `meddler:"penalty,bigint"`
}

func (*StakeWithdrawn) Type() EventType { return TypeStakeWithdrawn }
func (*StakeWithdrawn) Table() string   { return "raw_stake_withdrawn" }
func (*StakeWithdrawn) sealed()         {}

type CreatorRewardClaimed struct {
	Creator common.Address `meddler:"creator,address"`
	Amount  *big.Int       `meddler:"amount,bigint"`
}

func (*CreatorRewardClaimed) Type() EventType { return TypeCreatorRewardClaimed }
func (*CreatorRewardClaimed) Table() string   { return "raw_creator_reward_claimed" }
func (*CreatorRewardClaimed) sealed()         {}

type ProjectPoolUpdated struct {
	Amount    *big.Int `meddler:"amount,bigint"`
	Source    string   `meddler:"source"`
	TotalPool *big.Int `meddler:"total_pool,bigint"`
}

func (*ProjectPoolUpdated) Type() EventType { return TypeProjectPoolUpdated }
func (*ProjectPoolUpdated) Table() string   { return "raw_project_pool_updated" }
func (*ProjectPoolUpdated) sealed()         {}

type OwnershipTransferred struct {
	PreviousOwner common.Address `meddler:"previous_owner,address"`
	NewOwner      common.Address `meddler:"new_owner,address"`
}

func (*OwnershipTransferred) Type() EventType { return TypeOwnershipTransferred }
func (*OwnershipTransferred) Table() string   { return "raw_ownership_transferred" }
func (*OwnershipTransferred) sealed()         {}

// AddressKey lowercases an address for use as an entity key.
func AddressKey(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// PlayerKey builds the composite player membership key "{poolId}-{address}".
func PlayerKey(poolID *big.Int, player common.Address) string {
	return poolID.String() + "-" + AddressKey(player)
}

// RoundKey builds the round record key "{poolId}-{round}".
func RoundKey(poolID *big.Int, round uint64) string {
	return fmt.Sprintf("%s-%d", poolID.String(), round)
}

// RepeatedRoundKey builds the key for a voided unanimous round. The suffix
// keeps it from colliding with the eventual resolution of the same round.
func RepeatedRoundKey(poolID *big.Int, round uint64) string {
	return fmt.Sprintf("%s-%d-repeated", poolID.String(), round)
}
