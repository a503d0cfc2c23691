package launch

import (
	"context"
	"log/slog"

	"github.com/lucentplay/seamless-wallet/internal/upstream"
)

// GameLister fetches the aggregator catalog for a provider.
type GameLister interface {
	GameList(ctx context.Context, provider string) ([]upstream.Game, error)
}

// Catalog exposes the provider game list, degrading to an empty catalog when
// the aggregator is unavailable so the player surface stays responsive.
type Catalog struct {
	gateway GameLister
	logger  *slog.Logger
}

// NewCatalog builds a catalog over the aggregator gateway.
func NewCatalog(gateway GameLister, logger *slog.Logger) *Catalog {
	return &Catalog{gateway: gateway, logger: logger}
}

// List returns the games for a provider, or an empty slice on upstream failure.
func (c *Catalog) List(ctx context.Context, provider Provider) []upstream.Game {
	games, err := c.gateway.GameList(ctx, string(provider))
	if err != nil {
		c.logger.Warn("game list unavailable", "provider", provider, "error", err)
		return []upstream.Game{}
	}
	if games == nil {
		games = []upstream.Game{}
	}
	return games
}
