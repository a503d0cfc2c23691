// Package partner serves the wallet contract the aggregator calls into:
// balance checks, wager settlement, and history pass-through. Responses follow
// the partner protocol, including its numeric status codes; balances cross the
// boundary as fixed-point strings with two fraction digits.
package partner

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/lucentplay/seamless-wallet/internal/account"
	"github.com/lucentplay/seamless-wallet/internal/history"
	"github.com/lucentplay/seamless-wallet/internal/settlement"
	"github.com/lucentplay/seamless-wallet/internal/upstream"
)

// Partner protocol status codes.
const (
	statusOK                  = 0
	statusUnknownUserOrKey    = 30001
	statusInsufficientBalance = 30002
	statusInternalError       = 50001
)

const apiKeyHeader = "x-api-key"

// Handler implements the inbound aggregator endpoints.
type Handler struct {
	secret     string
	store      account.Store
	settlement *settlement.Engine
	history    *history.Service
	logger     *slog.Logger
}

// NewHandler builds the partner-facing handler. secret is the per-agent
// shared key the aggregator presents; it is compared by exact match.
func NewHandler(secret string, store account.Store, engine *settlement.Engine, hist *history.Service, logger *slog.Logger) *Handler {
	return &Handler{secret: secret, store: store, settlement: engine, history: hist, logger: logger}
}

func (h *Handler) authorized(c *fiber.Ctx) bool {
	presented := c.Get(apiKeyHeader)
	return presented != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(h.secret)) == 1
}

type checkBalanceRequest struct {
	Username string `json:"username"`
}

// CheckBalance reports the player's current balance to the aggregator.
func (h *Handler) CheckBalance(c *fiber.Ctx) error {
	if !h.authorized(c) {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid API Key",
		})
	}

	var req checkBalanceRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "username is required",
		})
	}

	acct, err := h.store.Get(c.UserContext(), req.Username)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "User not found",
			})
		}
		h.logger.Error("check balance failed", "username", req.Username, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"balance":  acct.Balance.StringFixed(2),
		"currency": acct.Currency,
	})
}

type settleTxn struct {
	BetAmount    decimal.Decimal `json:"betAmount"`
	PayoutAmount decimal.Decimal `json:"payoutAmount"`
}

type settleBetsRequest struct {
	Username string      `json:"username"`
	ID       string      `json:"id"`
	Txns     []settleTxn `json:"txns"`
}

// SettleBets applies a wager outcome to the player's balance. Only the first
// element of txns is processed; the aggregator has never sent more than one,
// and the contract documents the limitation.
func (h *Handler) SettleBets(c *fiber.Ctx) error {
	if !h.authorized(c) {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"success":    false,
			"statusCode": statusUnknownUserOrKey,
			"message":    "Invalid API Key",
		})
	}

	var req settleBetsRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" || len(req.Txns) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"success":    false,
			"statusCode": statusInternalError,
			"message":    "username and txns are required",
		})
	}

	txn := req.Txns[0]
	result, err := h.settlement.Settle(c.UserContext(), settlement.Wager{
		Username:     req.Username,
		WagerID:      req.ID,
		BetAmount:    txn.BetAmount,
		PayoutAmount: txn.PayoutAmount,
	})
	switch {
	case err == nil:
		return c.JSON(fiber.Map{
			"success":       true,
			"statusCode":    statusOK,
			"balanceBefore": result.BalanceBefore.StringFixed(2),
			"balanceAfter":  result.BalanceAfter.StringFixed(2),
			"currency":      result.Currency,
		})
	case errors.Is(err, settlement.ErrInsufficientBalance):
		// Business rejection, not a server error: HTTP 200 with the partner
		// status code so the aggregator records a rejected wager.
		return c.JSON(fiber.Map{
			"success":       false,
			"statusCode":    statusInsufficientBalance,
			"message":       "Insufficient balance",
			"balanceBefore": result.BalanceBefore.StringFixed(2),
			"balanceAfter":  result.BalanceAfter.StringFixed(2),
		})
	case errors.Is(err, account.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"success":    false,
			"statusCode": statusUnknownUserOrKey,
			"message":    "User not found",
		})
	default:
		// Silently skipping a ledger mutation would be unsafe; settlement is
		// the one path that propagates as 500.
		h.logger.Error("settlement failed", "username", req.Username, "wager_id", req.ID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"success":    false,
			"statusCode": statusInternalError,
			"message":    "Internal server error",
		})
	}
}

type historyRequest struct {
	Username  string `json:"username"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Type      string `json:"type"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
}

// History forwards the history query upstream. Outbound failure degrades to
// an empty successful result so the caller's UI stays non-blocking.
func (h *Handler) History(c *fiber.Ctx) error {
	if !h.authorized(c) {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid API Key",
		})
	}

	var req historyRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "username is required",
		})
	}

	if _, err := h.store.Get(c.UserContext(), req.Username); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "User not found",
			})
		}
		h.logger.Error("history lookup failed", "username", req.Username, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Internal server error",
		})
	}

	page := h.history.Fetch(c.UserContext(), req.Username, upstream.HistoryFilters{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Type:      req.Type,
	}, req.Page, req.Limit)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    page.Data,
		"total":   page.Total,
		"page":    page.Page,
		"limit":   page.Limit,
	})
}
