package history

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lucentplay/seamless-wallet/internal/account"
	"github.com/lucentplay/seamless-wallet/internal/upstream"
)

// Handler exposes the player transaction history view.
type Handler struct {
	service *Service
	store   account.Store
}

// NewHandler builds a history HTTP handler.
func NewHandler(service *Service, store account.Store) *Handler {
	return &Handler{service: service, store: store}
}

type transactionsRequest struct {
	Username  string `json:"username"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Type      string `json:"type"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
}

// Transactions returns the aggregator-held history for the player, degrading
// to an empty page when the aggregator cannot be reached.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	var req transactionsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Username == "" {
		return fiber.NewError(http.StatusBadRequest, "username is required")
	}
	if _, err := h.store.Get(c.UserContext(), req.Username); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "user not found")
		}
		return fiber.NewError(http.StatusInternalServerError, "history lookup failed")
	}

	page := h.service.Fetch(c.UserContext(), req.Username, upstream.HistoryFilters{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Type:      req.Type,
	}, req.Page, req.Limit)

	return c.JSON(page)
}
