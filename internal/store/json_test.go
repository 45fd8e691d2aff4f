package store

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolJSONAmountsAreStrings(t *testing.T) {
	t.Parallel()

	// Beyond 2^53, where a JSON number would lose precision in JS clients.
	prize, ok := new(big.Int).SetString("90071992547409919001", 10)
	require.True(t, ok)

	pool := &Pool{
		PoolID:     big.NewInt(7),
		Creator:    testCreator,
		EntryFee:   big.NewInt(1000),
		MaxPlayers: 8,
		PrizePool:  prize,
		Status:     StatusActive,
		CreatedAt:  1000,
	}

	encoded, err := json.Marshal(pool)
	require.NoError(t, err)

	assert.Contains(t, string(encoded), `"poolId":"7"`)
	assert.Contains(t, string(encoded), `"entryFee":"1000"`)
	assert.Contains(t, string(encoded), `"prizePool":"90071992547409919001"`)
	assert.NotContains(t, string(encoded), `"winnerPrize"`)

	var decoded Pool
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	assert.Equal(t, "7", decoded.PoolID.String())
	assert.Equal(t, "90071992547409919001", decoded.PrizePool.String())
	assert.Equal(t, StatusActive, decoded.Status)
	assert.Nil(t, decoded.WinnerPrize)
}

func TestPoolJSONNullableAmounts(t *testing.T) {
	t.Parallel()

	winner := testPlayer
	completedAt := uint64(2000)

	pool := &Pool{
		PoolID:        big.NewInt(1),
		Creator:       testCreator,
		EntryFee:      big.NewInt(100),
		PrizePool:     big.NewInt(800),
		Status:        StatusCompleted,
		CreatedAt:     1000,
		CompletedAt:   &completedAt,
		Winner:        &winner,
		WinnerPrize:   big.NewInt(704),
		CreatorReward: big.NewInt(96),
	}

	encoded, err := json.Marshal(pool)
	require.NoError(t, err)

	assert.Contains(t, string(encoded), `"winnerPrize":"704"`)
	assert.Contains(t, string(encoded), `"creatorReward":"96"`)

	var decoded Pool
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	require.NotNil(t, decoded.WinnerPrize)
	assert.Equal(t, "704", decoded.WinnerPrize.String())
}

func TestCreatorAndStatsJSONAmountsAreStrings(t *testing.T) {
	t.Parallel()

	staked, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	encoded, err := json.Marshal(&Creator{
		Address:        testCreator,
		StakedAmount:   staked,
		TotalRewards:   big.NewInt(0),
		HasActiveStake: true,
	})
	require.NoError(t, err)

	assert.Contains(t, string(encoded), `"stakedAmount":"123456789012345678901234567890"`)
	assert.Contains(t, string(encoded), `"totalRewards":"0"`)

	var creator Creator
	require.NoError(t, json.Unmarshal(encoded, &creator))
	assert.Equal(t, staked.String(), creator.StakedAmount.String())

	encoded, err = json.Marshal(&GlobalStats{
		ID:                 "global",
		TotalPools:         2,
		TotalMonStaked:     big.NewInt(12000),
		ProjectPoolBalance: big.NewInt(800),
	})
	require.NoError(t, err)

	assert.Contains(t, string(encoded), `"totalMonStaked":"12000"`)
	assert.Contains(t, string(encoded), `"projectPoolBalance":"800"`)
}

func TestPlayerAndRoundJSONPoolID(t *testing.T) {
	t.Parallel()

	encoded, err := json.Marshal(&Player{
		ID:     "5-" + testPlayer,
		PoolID: big.NewInt(5),
		Player: testPlayer,
	})
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"poolId":"5"`)

	var player Player
	require.NoError(t, json.Unmarshal(encoded, &player))
	assert.Equal(t, "5", player.PoolID.String())

	winning := "HEADS"
	encoded, err = json.Marshal(&Round{
		ID:            "5-1",
		PoolID:        big.NewInt(5),
		Round:         1,
		WinningChoice: &winning,
	})
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"poolId":"5"`)

	var round Round
	require.NoError(t, json.Unmarshal(encoded, &round))
	assert.Equal(t, "5", round.PoolID.String())
	require.NotNil(t, round.WinningChoice)
	assert.Equal(t, "HEADS", *round.WinningChoice)
}
