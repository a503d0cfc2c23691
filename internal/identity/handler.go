package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lucentplay/seamless-wallet/internal/account"
)

// Handler exposes registration and login HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

func toResponse(acct account.Account) accountResponse {
	return accountResponse{
		ID:       acct.ID,
		Username: acct.Username,
		Balance:  acct.Balance.StringFixed(2),
		Currency: acct.Currency,
	}
}

// Register creates a player account with the configured starting balance.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	acct, err := h.service.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrExists) {
			return fiber.NewError(http.StatusConflict, "username already exists")
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(acct))
}

// Login verifies the player's password.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	acct, err := h.service.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "login failed")
	}
	return c.JSON(toResponse(acct))
}
