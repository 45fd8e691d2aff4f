package api

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmonad/lastmonad-indexer/internal/db"
	"github.com/lastmonad/lastmonad-indexer/internal/logger"
	"github.com/lastmonad/lastmonad-indexer/internal/migrations"
	"github.com/lastmonad/lastmonad-indexer/internal/store"
	"github.com/lastmonad/lastmonad-indexer/pkg/config"
)

const (
	creatorAddr = "0x1111111111111111111111111111111111111111"
	playerAddr  = "0x2222222222222222222222222222222222222222"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	database, err := db.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrations.RunDB(logger.NewNopLogger(), database))

	st := store.New(database)

	cfg := &config.APIConfig{Enabled: true}
	cfg.ApplyDefaults()

	srv := NewServer(cfg, st, logger.NewNopLogger())

	ts := httptest.NewServer(srv.server.Handler)
	t.Cleanup(ts.Close)

	return ts, st
}

func seedPool(t *testing.T, st *store.Store, id int64, status store.PoolStatus, createdAt uint64) {
	t.Helper()

	pool := &store.Pool{
		PoolID:     big.NewInt(id),
		Creator:    creatorAddr,
		EntryFee:   big.NewInt(1000),
		MaxPlayers: 8,
		PrizePool:  big.NewInt(0),
		Status:     status,
		CreatedAt:  createdAt,
	}

	switch status {
	case store.StatusActive:
		activatedAt := createdAt + 10
		pool.ActivatedAt = &activatedAt
	case store.StatusCompleted:
		completedAt := createdAt + 20
		winner := playerAddr
		pool.CompletedAt = &completedAt
		pool.Winner = &winner
		pool.WinnerPrize = big.NewInt(880)
		pool.CreatorReward = big.NewInt(120)
	}

	require.NoError(t, store.UpsertPool(st.DB(), pool))
}

func getJSON(t *testing.T, ts *httptest.Server, path string, expectStatus int, dst interface{}) {
	t.Helper()

	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, expectStatus, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	if dst != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)

	var health HealthResponse
	getJSON(t, ts, "/health", http.StatusOK, &health)

	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, uint64(0), health.LastAppliedBlock)
}

func TestListPools(t *testing.T) {
	t.Parallel()

	ts, st := newTestServer(t)

	seedPool(t, st, 1, store.StatusCompleted, 1000)
	seedPool(t, st, 2, store.StatusActive, 2000)
	seedPool(t, st, 3, store.StatusOpened, 3000)

	t.Run("all pools newest first", func(t *testing.T) {
		var resp PoolsResponse
		getJSON(t, ts, "/api/v1/pools", http.StatusOK, &resp)

		require.Len(t, resp.Pools, 3)
		assert.Equal(t, "3", resp.Pools[0].PoolID.String())
		assert.Equal(t, "1", resp.Pools[2].PoolID.String())
		assert.Equal(t, uint64(3), resp.Pagination.Total)
		assert.False(t, resp.Pagination.HasMore)
	})

	t.Run("status filter", func(t *testing.T) {
		var resp PoolsResponse
		getJSON(t, ts, "/api/v1/pools?status=ACTIVE", http.StatusOK, &resp)

		require.Len(t, resp.Pools, 1)
		assert.Equal(t, store.StatusActive, resp.Pools[0].Status)
	})

	t.Run("pagination", func(t *testing.T) {
		var resp PoolsResponse
		getJSON(t, ts, "/api/v1/pools?limit=2", http.StatusOK, &resp)

		require.Len(t, resp.Pools, 2)
		assert.Equal(t, uint64(3), resp.Pagination.Total)
		assert.True(t, resp.Pagination.HasMore)
	})

	t.Run("invalid status", func(t *testing.T) {
		getJSON(t, ts, "/api/v1/pools?status=BOGUS", http.StatusBadRequest, nil)
	})

	t.Run("invalid limit", func(t *testing.T) {
		getJSON(t, ts, "/api/v1/pools?limit=0", http.StatusBadRequest, nil)
	})
}

func TestGetPool(t *testing.T) {
	t.Parallel()

	ts, st := newTestServer(t)

	seedPool(t, st, 7, store.StatusActive, 1000)

	require.NoError(t, store.UpsertPlayer(st.DB(), &store.Player{
		ID:       "7-" + playerAddr,
		PoolID:   big.NewInt(7),
		Player:   playerAddr,
		JoinedAt: 1005,
	}))

	winning := "HEADS"
	require.NoError(t, store.UpsertRound(st.DB(), &store.Round{
		ID:              "7-1",
		PoolID:          big.NewInt(7),
		Round:           1,
		WinningChoice:   &winning,
		EliminatedCount: 3,
		RemainingCount:  5,
		Timestamp:       1100,
	}))

	t.Run("found", func(t *testing.T) {
		var detail store.PoolDetail
		getJSON(t, ts, "/api/v1/pools/7", http.StatusOK, &detail)

		assert.Equal(t, "7", detail.Pool.PoolID.String())
		require.Len(t, detail.Players, 1)
		assert.Equal(t, playerAddr, detail.Players[0].Player)
		require.Len(t, detail.Rounds, 1)
		assert.Equal(t, uint64(1), detail.Rounds[0].Round)
	})

	t.Run("not found", func(t *testing.T) {
		getJSON(t, ts, "/api/v1/pools/999", http.StatusNotFound, nil)
	})

	t.Run("invalid id", func(t *testing.T) {
		getJSON(t, ts, "/api/v1/pools/not-a-number", http.StatusBadRequest, nil)
	})
}

func TestGetCreator(t *testing.T) {
	t.Parallel()

	ts, st := newTestServer(t)

	require.NoError(t, store.UpsertCreator(st.DB(), &store.Creator{
		Address:        creatorAddr,
		StakedAmount:   big.NewInt(5000),
		PoolsCreated:   3,
		PoolsCompleted: 2,
		TotalRewards:   big.NewInt(240),
		HasActiveStake: true,
	}))

	t.Run("found", func(t *testing.T) {
		var creator store.Creator
		getJSON(t, ts, "/api/v1/creators/0x1111111111111111111111111111111111111111", http.StatusOK, &creator)

		assert.Equal(t, uint64(3), creator.PoolsCreated)
		assert.Equal(t, "5000", creator.StakedAmount.String())
	})

	t.Run("not found", func(t *testing.T) {
		getJSON(t, ts, "/api/v1/creators/0x9999999999999999999999999999999999999999", http.StatusNotFound, nil)
	})

	t.Run("invalid address", func(t *testing.T) {
		getJSON(t, ts, "/api/v1/creators/nonsense", http.StatusBadRequest, nil)
	})
}

func TestCreatorPools(t *testing.T) {
	t.Parallel()

	ts, st := newTestServer(t)

	seedPool(t, st, 1, store.StatusOpened, 1000)
	seedPool(t, st, 2, store.StatusOpened, 2000)

	var resp PoolsResponse
	getJSON(t, ts, "/api/v1/creators/"+creatorAddr+"/pools", http.StatusOK, &resp)

	require.Len(t, resp.Pools, 2)
	assert.Equal(t, "2", resp.Pools[0].PoolID.String())
	assert.Equal(t, uint64(2), resp.Pagination.Total)
}

func TestPlayerHistory(t *testing.T) {
	t.Parallel()

	ts, st := newTestServer(t)

	seedPool(t, st, 1, store.StatusCompleted, 1000)

	require.NoError(t, store.UpsertPlayer(st.DB(), &store.Player{
		ID:       "1-" + playerAddr,
		PoolID:   big.NewInt(1),
		Player:   playerAddr,
		JoinedAt: 1005,
	}))

	var resp PlayerHistoryResponse
	getJSON(t, ts, "/api/v1/players/"+playerAddr+"/history", http.StatusOK, &resp)

	require.Len(t, resp.Games, 1)
	require.NotNil(t, resp.Games[0].Pool)
	assert.Equal(t, "1", resp.Games[0].Pool.PoolID.String())
	assert.Equal(t, playerAddr, resp.Games[0].Player.Player)
}

func TestGlobalStats(t *testing.T) {
	t.Parallel()

	ts, st := newTestServer(t)

	t.Run("zeroed before any event", func(t *testing.T) {
		var stats store.GlobalStats
		getJSON(t, ts, "/api/v1/stats", http.StatusOK, &stats)

		assert.Equal(t, uint64(0), stats.TotalPools)
		assert.Equal(t, "0", stats.TotalMonStaked.String())
	})

	require.NoError(t, store.UpsertGlobalStats(st.DB(), &store.GlobalStats{
		ID:                  "global",
		TotalPools:          5,
		TotalGamesCompleted: 3,
		TotalMonStaked:      big.NewInt(12000),
		ProjectPoolBalance:  big.NewInt(800),
	}))

	t.Run("seeded", func(t *testing.T) {
		var stats store.GlobalStats
		getJSON(t, ts, "/api/v1/stats", http.StatusOK, &stats)

		assert.Equal(t, uint64(5), stats.TotalPools)
		assert.Equal(t, "12000", stats.TotalMonStaked.String())
	})
}

func TestGameViews(t *testing.T) {
	t.Parallel()

	ts, st := newTestServer(t)

	seedPool(t, st, 1, store.StatusActive, 1000)
	seedPool(t, st, 2, store.StatusActive, 2000)
	seedPool(t, st, 3, store.StatusCompleted, 1500)
	seedPool(t, st, 4, store.StatusOpened, 3000)

	t.Run("active games", func(t *testing.T) {
		var resp GamesResponse
		getJSON(t, ts, "/api/v1/games/active", http.StatusOK, &resp)

		require.Len(t, resp.Games, 2)
		assert.Equal(t, "2", resp.Games[0].PoolID.String())
	})

	t.Run("recent games", func(t *testing.T) {
		var resp GamesResponse
		getJSON(t, ts, "/api/v1/games/recent", http.StatusOK, &resp)

		require.Len(t, resp.Games, 1)
		assert.Equal(t, "3", resp.Games[0].PoolID.String())
	})
}
