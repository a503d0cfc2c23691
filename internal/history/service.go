// Package history proxies the aggregator's transaction history. History is
// best-effort: the player surface must never block on it.
package history

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/lucentplay/seamless-wallet/internal/upstream"
)

// Fetcher is the aggregator history call.
type Fetcher interface {
	History(ctx context.Context, username string, filters upstream.HistoryFilters, page, limit int) (upstream.HistoryPage, error)
}

// Page is one page of history rendered to callers.
type Page struct {
	Data  []json.RawMessage `json:"data"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// Service fetches history from the aggregator, degrading to an empty page on
// any failure.
type Service struct {
	gateway Fetcher
	logger  *slog.Logger
}

// NewService builds a history service.
func NewService(gateway Fetcher, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, logger: logger}
}

// Fetch returns the player's history page. Upstream failure yields an empty
// page, never an error.
func (s *Service) Fetch(ctx context.Context, username string, filters upstream.HistoryFilters, page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	result, err := s.gateway.History(ctx, username, filters, page, limit)
	if err != nil {
		s.logger.Warn("history unavailable, returning empty page", "username", username, "error", err)
		return Page{Data: []json.RawMessage{}, Page: page, Limit: limit}
	}
	if result.Data == nil {
		result.Data = []json.RawMessage{}
	}
	return Page{Data: result.Data, Total: result.Total, Page: page, Limit: limit}
}
