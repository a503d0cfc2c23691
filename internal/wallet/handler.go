package wallet

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/lucentplay/seamless-wallet/internal/account"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type movementRequest struct {
	Username string `json:"username"`
	Amount   string `json:"amount"`
}

type balanceResponse struct {
	Username string `json:"username"`
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

// Balance returns the player's current balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	username := c.Params("username")
	acct, err := h.service.Balance(c.UserContext(), username)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "user not found")
		}
		return fiber.NewError(http.StatusInternalServerError, "balance lookup failed")
	}
	return c.JSON(balanceResponse{Username: acct.Username, Balance: acct.Balance.StringFixed(2), Currency: acct.Currency})
}

// Deposit credits the player's balance.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	return h.move(c, h.service.Deposit)
}

// Withdraw debits the player's balance.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	return h.move(c, h.service.Withdraw)
}

func (h *Handler) move(c *fiber.Ctx, op func(ctx context.Context, username string, amount decimal.Decimal) (account.Account, error)) error {
	var req movementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid amount")
	}
	acct, err := op(c.UserContext(), req.Username, amount)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "user not found")
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInsufficientBalance):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "wallet operation failed")
		}
	}
	return c.JSON(balanceResponse{Username: acct.Username, Balance: acct.Balance.StringFixed(2), Currency: acct.Currency})
}
