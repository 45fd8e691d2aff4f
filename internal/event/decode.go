package event

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrUnknownEvent marks a log whose topic does not match any contract event.
// Callers are expected to drop such logs.
var ErrUnknownEvent = errors.New("unknown event")

const contractABIJSON = `[
	{"type":"event","name":"PoolCreated","inputs":[
		{"name":"poolId","type":"uint256","indexed":true},
		{"name":"creator","type":"address","indexed":true},
		{"name":"entryFee","type":"uint256","indexed":false},
		{"name":"maxPlayers","type":"uint256","indexed":false}]},
	{"type":"event","name":"PlayerJoined","inputs":[
		{"name":"poolId","type":"uint256","indexed":true},
		{"name":"player","type":"address","indexed":true},
		{"name":"currentPlayers","type":"uint256","indexed":false},
		{"name":"maxPlayers","type":"uint256","indexed":false}]},
	{"type":"event","name":"PoolActivated","inputs":[
		{"name":"poolId","type":"uint256","indexed":true},
		{"name":"totalPlayers","type":"uint256","indexed":false},
		{"name":"prizePool","type":"uint256","indexed":false}]},
	{"type":"event","name":"PlayerMadeChoice","inputs":[
		{"name":"poolId","type":"uint256","indexed":true},
		{"name":"player","type":"address","indexed":true},
		{"name":"choice","type":"uint8","indexed":false},
		{"name":"round","type":"uint256","indexed":false}]},
	{"type":"event","name":"RoundResolved","inputs":[
		{"name":"poolId","type":"uint256","indexed":true},
		{"name":"round","type":"uint256","indexed":false},
		{"name":"winningChoice","type":"uint8","indexed":false},
		{"name":"eliminatedCount","type":"uint256","indexed":false},
		{"name":"remainingCount","type":"uint256","indexed":false}]},
	{"type":"event","name":"RoundRepeated","inputs":[
		{"name":"poolId","type":"uint256","indexed":true},
		{"name":"round","type":"uint256","indexed":false},
		{"name":"unanimousChoice","type":"uint8","indexed":false},
		{"name":"playerCount","type":"uint256","indexed":false}]},
	{"type":"event","name":"GameCompleted","inputs":[
		{"name":"poolId","type":"uint256","indexed":true},
		{"name":"winner","type":"address","indexed":true},
		{"name":"prizeAmount","type":"uint256","indexed":false}]},
	{"type":"event","name":"PoolAbandoned","inputs":[
		{"name":"poolId","type":"uint256","indexed":true},
		{"name":"creator","type":"address","indexed":true},
		{"name":"refundAmount","type":"uint256","indexed":false}]},
	{"type":"event","name":"StakeDeposited","inputs":[
		{"name":"creator","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false},
		{"name":"poolsEligible","type":"uint256","indexed":false}]},
	{"type":"event","name":"StakeWithdrawn","inputs":[
		{"name":"creator","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false},
		{"name":"penalty","type":"uint256","indexed":false}]},
	{"type":"event","name":"CreatorRewardClaimed","inputs":[
		{"name":"creator","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"ProjectPoolUpdated","inputs":[
		{"name":"amount","type":"uint256","indexed":false},
		{"name":"source","type":"string","indexed":false},
		{"name":"totalPool","type":"uint256","indexed":false}]},
	{"type":"event","name":"OwnershipTransferred","inputs":[
		{"name":"previousOwner","type":"address","indexed":true},
		{"name":"newOwner","type":"address","indexed":true}]}
]`

var contractABI = mustParseABI(contractABIJSON)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("invalid contract ABI: %v", err))
	}

	return parsed
}

// TopicFor returns the topic0 hash for the named event. It is mainly useful
// for building log filters and tests.
func TopicFor(name EventType) common.Hash {
	return contractABI.Events[string(name)].ID
}

// AllTopics returns topic0 hashes for every event the indexer consumes.
func AllTopics() []common.Hash {
	topics := make([]common.Hash, 0, len(contractABI.Events))
	for _, ev := range contractABI.Events {
		topics = append(topics, ev.ID)
	}

	return topics
}

// Decode turns a raw log into a typed event. Logs whose topic0 does not
// belong to the contract return ErrUnknownEvent.
func Decode(lg types.Log) (Event, error) {
	if len(lg.Topics) == 0 {
		return nil, ErrUnknownEvent
	}

	topic := lg.Topics[0]

	switch topic {
	case contractABI.Events["PoolCreated"].ID:
		vals, err := unpack("PoolCreated", lg, 3)
		if err != nil {
			return nil, err
		}

		return &PoolCreated{
			PoolID:     topicBigInt(lg.Topics[1]),
			Creator:    topicAddress(lg.Topics[2]),
			EntryFee:   vals[0].(*big.Int),
			MaxPlayers: vals[1].(*big.Int).Uint64(),
		}, nil

	case contractABI.Events["PlayerJoined"].ID:
		vals, err := unpack("PlayerJoined", lg, 3)
		if err != nil {
			return nil, err
		}

		return &PlayerJoined{
			PoolID:         topicBigInt(lg.Topics[1]),
			Player:         topicAddress(lg.Topics[2]),
			CurrentPlayers: vals[0].(*big.Int).Uint64(),
			MaxPlayers:     vals[1].(*big.Int).Uint64(),
		}, nil

	case contractABI.Events["PoolActivated"].ID:
		vals, err := unpack("PoolActivated", lg, 2)
		if err != nil {
			return nil, err
		}

		return &PoolActivated{
			PoolID:       topicBigInt(lg.Topics[1]),
			TotalPlayers: vals[0].(*big.Int).Uint64(),
			PrizePool:    vals[1].(*big.Int),
		}, nil

	case contractABI.Events["PlayerMadeChoice"].ID:
		vals, err := unpack("PlayerMadeChoice", lg, 3)
		if err != nil {
			return nil, err
		}

		return &PlayerMadeChoice{
			PoolID: topicBigInt(lg.Topics[1]),
			Player: topicAddress(lg.Topics[2]),
			Choice: Choice(vals[0].(uint8)),
			Round:  vals[1].(*big.Int).Uint64(),
		}, nil

	case contractABI.Events["RoundResolved"].ID:
		vals, err := unpack("RoundResolved", lg, 2)
		if err != nil {
			return nil, err
		}

		return &RoundResolved{
			PoolID:          topicBigInt(lg.Topics[1]),
			Round:           vals[0].(*big.Int).Uint64(),
			WinningChoice:   Choice(vals[1].(uint8)),
			EliminatedCount: vals[2].(*big.Int).Uint64(),
			RemainingCount:  vals[3].(*big.Int).Uint64(),
		}, nil

	case contractABI.Events["RoundRepeated"].ID:
		vals, err := unpack("RoundRepeated", lg, 2)
		if err != nil {
			return nil, err
		}

		return &RoundRepeated{
			PoolID:          topicBigInt(lg.Topics[1]),
			Round:           vals[0].(*big.Int).Uint64(),
			UnanimousChoice: Choice(vals[1].(uint8)),
			PlayerCount:     vals[2].(*big.Int).Uint64(),
		}, nil

	case contractABI.Events["GameCompleted"].ID:
		vals, err := unpack("GameCompleted", lg, 3)
		if err != nil {
			return nil, err
		}

		return &GameCompleted{
			PoolID:      topicBigInt(lg.Topics[1]),
			Winner:      topicAddress(lg.Topics[2]),
			PrizeAmount: vals[0].(*big.Int),
		}, nil

	case contractABI.Events["PoolAbandoned"].ID:
		vals, err := unpack("PoolAbandoned", lg, 3)
		if err != nil {
			return nil, err
		}

		return &PoolAbandoned{
			PoolID:       topicBigInt(lg.Topics[1]),
			Creator:      topicAddress(lg.Topics[2]),
			RefundAmount: vals[0].(*big.Int),
		}, nil

	case contractABI.Events["StakeDeposited"].ID:
		vals, err := unpack("StakeDeposited", lg, 2)
		if err != nil {
			return nil, err
		}

		return &StakeDeposited{
			Creator:       topicAddress(lg.Topics[1]),
			Amount:        vals[0].(*big.Int),
			PoolsEligible: vals[1].(*big.Int).Uint64(),
		}, nil

	case contractABI.Events["StakeWithdrawn"].ID:
		vals, err := unpack("StakeWithdrawn", lg, 2)
		if err != nil {
			return nil, err
		}

		return &StakeWithdrawn{
			Creator: topicAddress(lg.Topics[1]),
			Amount:  vals[0].(*big.Int),
			Penalty: vals[1].(*big.Int),
		}, nil

	case contractABI.Events["CreatorRewardClaimed"].ID:
		vals, err := unpack("CreatorRewardClaimed", lg, 2)
		if err != nil {
			return nil, err
		}

		return &CreatorRewardClaimed{
			Creator: topicAddress(lg.Topics[1]),
			Amount:  vals[0].(*big.Int),
		}, nil

	case contractABI.Events["ProjectPoolUpdated"].ID:
		vals, err := unpack("ProjectPoolUpdated", lg, 1)
		if err != nil {
			return nil, err
		}

		return &ProjectPoolUpdated{
			Amount:    vals[0].(*big.Int),
			Source:    vals[1].(string),
			TotalPool: vals[2].(*big.Int),
		}, nil

	case contractABI.Events["OwnershipTransferred"].ID:
		if len(lg.Topics) < 3 {
			return nil, fmt.Errorf("OwnershipTransferred: expected 3 topics, got %d", len(lg.Topics))
		}

		return &OwnershipTransferred{
			PreviousOwner: topicAddress(lg.Topics[1]),
			NewOwner:      topicAddress(lg.Topics[2]),
		}, nil

	default:
		return nil, ErrUnknownEvent
	}
}

func unpack(name string, lg types.Log, minTopics int) ([]interface{}, error) {
	if len(lg.Topics) < minTopics {
		return nil, fmt.Errorf("%s: expected at least %d topics, got %d", name, minTopics, len(lg.Topics))
	}

	vals, err := contractABI.Unpack(name, lg.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to unpack data: %w", name, err)
	}

	return vals, nil
}

func topicBigInt(t common.Hash) *big.Int {
	return new(big.Int).SetBytes(t.Bytes())
}

func topicAddress(t common.Hash) common.Address {
	return common.BytesToAddress(t.Bytes())
}
