package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/lastmonad/lastmonad-indexer/internal/logger"
	"github.com/lastmonad/lastmonad-indexer/internal/store"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	defaultGamesLimit = 10
)

// Handler handles HTTP requests for the read API.
type Handler struct {
	store *store.Store
	log   *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(st *store.Store, log *logger.Logger) *Handler {
	return &Handler{
		store: st,
		log:   log,
	}
}

// Health reports service liveness and indexing progress.
// @Summary Health check
// @Description Reports service status and the highest fully indexed block
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service status"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	var lastApplied uint64

	// Zero when nothing has been indexed yet; health stays OK either way.
	err := h.store.DB().QueryRow(
		"SELECT COALESCE(MAX(last_applied_block), 0) FROM sync_state").Scan(&lastApplied)
	if err != nil {
		h.log.Errorf("failed to read sync state: %v", err)
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:           "ok",
		Timestamp:        time.Now().UTC(),
		LastAppliedBlock: lastApplied,
	})
}

// ListPools returns pools newest first, optionally filtered by status.
// @Summary List pools
// @Description Get pools ordered by creation time descending, optionally filtered by status
// @Tags Pools
// @Produce json
// @Param status query string false "Pool status filter" Enums(OPENED, ACTIVE, COMPLETED, ABANDONED)
// @Param limit query int false "Maximum number of pools to return" default(50)
// @Param offset query int false "Number of pools to skip" default(0)
// @Success 200 {object} PoolsResponse "List of pools with pagination info"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /pools [get]
func (h *Handler) ListPools(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var status *store.PoolStatus

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		s := store.PoolStatus(strings.ToUpper(statusStr))
		if _, ok := store.ValidStatuses[s]; !ok {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid status '%s'", statusStr))
			return
		}

		status = &s
	}

	pools, total, err := h.store.ListPools(status, limit, offset)
	if err != nil {
		h.log.Errorf("failed to list pools: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list pools")

		return
	}

	respondJSON(w, http.StatusOK, PoolsResponse{
		Pools:      pools,
		Pagination: paginationResult(total, limit, offset),
	})
}

// GetPool returns one pool with its players and round history.
// @Summary Get pool details
// @Description Get a pool by id together with its players and rounds
// @Tags Pools
// @Produce json
// @Param id path string true "Pool id"
// @Success 200 {object} store.PoolDetail "Pool with players and rounds"
// @Failure 400 {object} ErrorResponse "Invalid pool id"
// @Failure 404 {object} ErrorResponse "Pool not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /pools/{id} [get]
func (h *Handler) GetPool(w http.ResponseWriter, r *http.Request) {
	poolID := r.PathValue("id")

	if _, ok := new(big.Int).SetString(poolID, 10); !ok {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid pool id '%s'", poolID))
		return
	}

	detail, err := h.store.GetPoolDetail(poolID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("pool '%s' not found", poolID))
			return
		}

		h.log.Errorf("failed to get pool %s: %v", poolID, err)
		respondError(w, http.StatusInternalServerError, "failed to get pool")

		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// GetCreator returns a creator's lifetime aggregate.
// @Summary Get creator stats
// @Description Get lifetime statistics for a pool creator
// @Tags Creators
// @Produce json
// @Param address path string true "Creator address"
// @Success 200 {object} store.Creator "Creator stats"
// @Failure 400 {object} ErrorResponse "Invalid address"
// @Failure 404 {object} ErrorResponse "Creator not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /creators/{address} [get]
func (h *Handler) GetCreator(w http.ResponseWriter, r *http.Request) {
	address, err := parseAddress(r.PathValue("address"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	creator, err := h.store.GetCreatorStats(address)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("creator '%s' not found", address))
			return
		}

		h.log.Errorf("failed to get creator %s: %v", address, err)
		respondError(w, http.StatusInternalServerError, "failed to get creator")

		return
	}

	respondJSON(w, http.StatusOK, creator)
}

// ListCreatorPools returns the pools created by an address.
// @Summary List a creator's pools
// @Description Get pools created by the given address, newest first
// @Tags Creators
// @Produce json
// @Param address path string true "Creator address"
// @Param limit query int false "Maximum number of pools to return" default(50)
// @Param offset query int false "Number of pools to skip" default(0)
// @Success 200 {object} PoolsResponse "List of pools with pagination info"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /creators/{address}/pools [get]
func (h *Handler) ListCreatorPools(w http.ResponseWriter, r *http.Request) {
	address, err := parseAddress(r.PathValue("address"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit, offset, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	pools, total, err := h.store.ListCreatorPools(address, limit, offset)
	if err != nil {
		h.log.Errorf("failed to list pools for creator %s: %v", address, err)
		respondError(w, http.StatusInternalServerError, "failed to list creator pools")

		return
	}

	respondJSON(w, http.StatusOK, PoolsResponse{
		Pools:      pools,
		Pagination: paginationResult(total, limit, offset),
	})
}

// GetPlayerHistory returns the pools a player joined.
// @Summary Get player history
// @Description Get the pools a player joined, newest membership first
// @Tags Players
// @Produce json
// @Param address path string true "Player address"
// @Param limit query int false "Maximum number of games to return" default(50)
// @Param offset query int false "Number of games to skip" default(0)
// @Success 200 {object} PlayerHistoryResponse "Player history with pagination info"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /players/{address}/history [get]
func (h *Handler) GetPlayerHistory(w http.ResponseWriter, r *http.Request) {
	address, err := parseAddress(r.PathValue("address"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit, offset, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	games, total, err := h.store.ListPlayerHistory(address, limit, offset)
	if err != nil {
		h.log.Errorf("failed to get history for player %s: %v", address, err)
		respondError(w, http.StatusInternalServerError, "failed to get player history")

		return
	}

	respondJSON(w, http.StatusOK, PlayerHistoryResponse{
		Games:      games,
		Pagination: paginationResult(total, limit, offset),
	})
}

// GetGlobalStats returns the protocol-wide accumulator.
// @Summary Get global stats
// @Description Get protocol-wide counters and balances
// @Tags Stats
// @Produce json
// @Success 200 {object} store.GlobalStats "Global statistics"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /stats [get]
func (h *Handler) GetGlobalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GlobalStats()
	if err != nil {
		h.log.Errorf("failed to get global stats: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to get global stats")

		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// ListActiveGames returns pools currently in play.
// @Summary List active games
// @Description Get pools currently in play, most recently activated first
// @Tags Games
// @Produce json
// @Param limit query int false "Maximum number of games to return" default(10)
// @Success 200 {object} GamesResponse "Active games"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /games/active [get]
func (h *Handler) ListActiveGames(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultGamesLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	games, err := h.store.ListActiveGames(limit)
	if err != nil {
		h.log.Errorf("failed to list active games: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list active games")

		return
	}

	respondJSON(w, http.StatusOK, GamesResponse{Games: games})
}

// ListRecentGames returns recently completed pools.
// @Summary List recent games
// @Description Get completed pools, most recently finished first
// @Tags Games
// @Produce json
// @Param limit query int false "Maximum number of games to return" default(10)
// @Success 200 {object} GamesResponse "Recent games"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /games/recent [get]
func (h *Handler) ListRecentGames(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultGamesLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	games, err := h.store.ListRecentGames(limit)
	if err != nil {
		h.log.Errorf("failed to list recent games: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list recent games")

		return
	}

	respondJSON(w, http.StatusOK, GamesResponse{Games: games})
}

func parseAddress(raw string) (string, error) {
	if !ethcommon.IsHexAddress(raw) {
		return "", fmt.Errorf("invalid address '%s'", raw)
	}

	return strings.ToLower(ethcommon.HexToAddress(raw).Hex()), nil
}

func parseLimit(r *http.Request, def uint64) (uint64, error) {
	limit := def

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.ParseUint(limitStr, 10, 64)
		if err != nil || parsed < 1 || parsed > maxLimit {
			return 0, fmt.Errorf("invalid limit: must be between 1 and %d", maxLimit)
		}

		limit = parsed
	}

	return limit, nil
}

func parsePagination(r *http.Request) (limit, offset uint64, err error) {
	limit, err = parseLimit(r, defaultLimit)
	if err != nil {
		return 0, 0, err
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err = strconv.ParseUint(offsetStr, 10, 64)
		if err != nil {
			return 0, 0, errors.New("invalid offset: must be non-negative")
		}
	}

	return limit, offset, nil
}

func paginationResult(total, limit, offset uint64) PaginationResult {
	return PaginationResult{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}
}

// respondJSON sends a JSON response, encoding before writing the status so
// encoding failures can still produce a clean 500.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")

	encoded, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)

	_, _ = w.Write(encoded)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
