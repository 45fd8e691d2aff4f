package event

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packData(t *testing.T, name string, vals ...interface{}) []byte {
	t.Helper()

	data, err := contractABI.Events[name].Inputs.NonIndexed().Pack(vals...)
	require.NoError(t, err)

	return data
}

func hashUint(v int64) common.Hash {
	return common.BigToHash(big.NewInt(v))
}

func hashAddr(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func TestDecode(t *testing.T) {
	t.Parallel()

	creator := common.HexToAddress("0xAbCd000000000000000000000000000000000001")
	player := common.HexToAddress("0xAbCd000000000000000000000000000000000002")

	t.Run("PoolCreated", func(t *testing.T) {
		t.Parallel()

		lg := types.Log{
			Topics: []common.Hash{TopicFor(TypePoolCreated), hashUint(7), hashAddr(creator)},
			Data:   packData(t, "PoolCreated", big.NewInt(1000), big.NewInt(8)),
		}

		ev, err := Decode(lg)
		require.NoError(t, err)

		pc, ok := ev.(*PoolCreated)
		require.True(t, ok)
		assert.Equal(t, "7", pc.PoolID.String())
		assert.Equal(t, creator, pc.Creator)
		assert.Equal(t, "1000", pc.EntryFee.String())
		assert.Equal(t, uint64(8), pc.MaxPlayers)
	})

	t.Run("PlayerJoined", func(t *testing.T) {
		t.Parallel()

		lg := types.Log{
			Topics: []common.Hash{TopicFor(TypePlayerJoined), hashUint(7), hashAddr(player)},
			Data:   packData(t, "PlayerJoined", big.NewInt(3), big.NewInt(8)),
		}

		ev, err := Decode(lg)
		require.NoError(t, err)

		pj, ok := ev.(*PlayerJoined)
		require.True(t, ok)
		assert.Equal(t, player, pj.Player)
		assert.Equal(t, uint64(3), pj.CurrentPlayers)
		assert.Equal(t, uint64(8), pj.MaxPlayers)
	})

	t.Run("PlayerMadeChoice", func(t *testing.T) {
		t.Parallel()

		lg := types.Log{
			Topics: []common.Hash{TopicFor(TypePlayerMadeChoice), hashUint(7), hashAddr(player)},
			Data:   packData(t, "PlayerMadeChoice", uint8(ChoiceTails), big.NewInt(2)),
		}

		ev, err := Decode(lg)
		require.NoError(t, err)

		mc, ok := ev.(*PlayerMadeChoice)
		require.True(t, ok)
		assert.Equal(t, ChoiceTails, mc.Choice)
		assert.Equal(t, uint64(2), mc.Round)
	})

	t.Run("RoundResolved", func(t *testing.T) {
		t.Parallel()

		lg := types.Log{
			Topics: []common.Hash{TopicFor(TypeRoundResolved), hashUint(7)},
			Data:   packData(t, "RoundResolved", big.NewInt(2), uint8(ChoiceHeads), big.NewInt(3), big.NewInt(5)),
		}

		ev, err := Decode(lg)
		require.NoError(t, err)

		rr, ok := ev.(*RoundResolved)
		require.True(t, ok)
		assert.Equal(t, uint64(2), rr.Round)
		assert.Equal(t, ChoiceHeads, rr.WinningChoice)
		assert.Equal(t, uint64(3), rr.EliminatedCount)
		assert.Equal(t, uint64(5), rr.RemainingCount)
	})

	t.Run("ProjectPoolUpdated", func(t *testing.T) {
		t.Parallel()

		lg := types.Log{
			Topics: []common.Hash{TopicFor(TypeProjectPoolUpdated)},
			Data:   packData(t, "ProjectPoolUpdated", big.NewInt(500), "game_completion", big.NewInt(1500)),
		}

		ev, err := Decode(lg)
		require.NoError(t, err)

		pu, ok := ev.(*ProjectPoolUpdated)
		require.True(t, ok)
		assert.Equal(t, "500", pu.Amount.String())
		assert.Equal(t, "game_completion", pu.Source)
		assert.Equal(t, "1500", pu.TotalPool.String())
	})

	t.Run("OwnershipTransferred", func(t *testing.T) {
		t.Parallel()

		lg := types.Log{
			Topics: []common.Hash{TopicFor(TypeOwnershipTransferred), hashAddr(creator), hashAddr(player)},
		}

		ev, err := Decode(lg)
		require.NoError(t, err)

		ot, ok := ev.(*OwnershipTransferred)
		require.True(t, ok)
		assert.Equal(t, creator, ot.PreviousOwner)
		assert.Equal(t, player, ot.NewOwner)
	})

	t.Run("unknown topic", func(t *testing.T) {
		t.Parallel()

		lg := types.Log{Topics: []common.Hash{common.HexToHash("0xdeadbeef")}}

		_, err := Decode(lg)
		assert.ErrorIs(t, err, ErrUnknownEvent)
	})

	t.Run("missing topics", func(t *testing.T) {
		t.Parallel()

		_, err := Decode(types.Log{})
		assert.ErrorIs(t, err, ErrUnknownEvent)
	})
}

func TestKeys(t *testing.T) {
	t.Parallel()

	addr := common.HexToAddress("0xAbCd000000000000000000000000000000000001")

	assert.Equal(t, "7-0xabcd000000000000000000000000000000000001", PlayerKey(big.NewInt(7), addr))
	assert.Equal(t, "7-2", RoundKey(big.NewInt(7), 2))
	assert.Equal(t, "7-2-repeated", RepeatedRoundKey(big.NewInt(7), 2))
}

func TestChoiceScanValue(t *testing.T) {
	t.Parallel()

	v, err := ChoiceHeads.Value()
	require.NoError(t, err)
	assert.Equal(t, "HEADS", v)

	var c Choice
	require.NoError(t, c.Scan("TAILS"))
	assert.Equal(t, ChoiceTails, c)

	require.NoError(t, c.Scan(nil))
	assert.Equal(t, ChoiceNone, c)

	assert.Error(t, c.Scan("COIN"))
}
