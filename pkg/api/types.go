package api

import (
	"time"

	"github.com/lastmonad/lastmonad-indexer/internal/store"
)

// PaginationResult contains pagination metadata.
type PaginationResult struct {
	Total   uint64 `json:"total"`
	Limit   uint64 `json:"limit"`
	Offset  uint64 `json:"offset"`
	HasMore bool   `json:"has_more"`
}

// PoolsResponse is a page of pools.
type PoolsResponse struct {
	Pools      []*store.Pool    `json:"pools"`
	Pagination PaginationResult `json:"pagination"`
}

// PlayerHistoryResponse is a page of a player's games.
type PlayerHistoryResponse struct {
	Games      []*store.PlayerGame `json:"games"`
	Pagination PaginationResult    `json:"pagination"`
}

// GamesResponse is an unpaginated list of games for the dashboard views.
type GamesResponse struct {
	Games []*store.Pool `json:"games"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status           string    `json:"status"`
	Timestamp        time.Time `json:"timestamp"`
	LastAppliedBlock uint64    `json:"last_applied_block"`
}
