package launch

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lucentplay/seamless-wallet/internal/account"
)

// Handler exposes the game catalog and launch endpoints.
type Handler struct {
	resolver *Resolver
	catalog  *Catalog
}

// NewHandler builds a launch HTTP handler.
func NewHandler(resolver *Resolver, catalog *Catalog) *Handler {
	return &Handler{resolver: resolver, catalog: catalog}
}

// Games lists the provider catalog. Upstream failure yields an empty list.
func (h *Handler) Games(c *fiber.Ctx) error {
	provider, err := ParseProvider(c.Query("provider", string(ProviderA)))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	games := h.catalog.List(c.UserContext(), provider)
	return c.JSON(fiber.Map{"games": games})
}

type launchRequest struct {
	Username string `json:"username"`
	Provider string `json:"provider"`
	GameCode string `json:"gameCode"`
	GameID   string `json:"gameId"`
}

// Launch resolves a launch URL for the player, preferring the aggregator and
// falling back to the local template when upstream is unavailable.
func (h *Handler) Launch(c *fiber.Ctx) error {
	var req launchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Username == "" || req.GameCode == "" {
		return fiber.NewError(http.StatusBadRequest, "username and gameCode are required")
	}
	provider, err := ParseProvider(req.Provider)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.resolver.Resolve(c.UserContext(), Request{
		Username: req.Username,
		Provider: provider,
		GameCode: req.GameCode,
		GameID:   req.GameID,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "user not found")
		case errors.Is(err, ErrURLConstruction):
			return fiber.NewError(http.StatusBadGateway, "game launch unavailable")
		default:
			return fiber.NewError(http.StatusInternalServerError, "game launch failed")
		}
	}

	return c.JSON(fiber.Map{
		"url":          result.URL,
		"sessionToken": result.SessionToken,
		"usedFallback": result.UsedFallback,
	})
}
