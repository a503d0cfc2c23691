package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lucentplay/seamless-wallet/internal/wallet"
)

// RegisterWalletRoutes wires balance and manual movement endpoints.
func RegisterWalletRoutes(router fiber.Router, h *wallet.Handler) {
	router.Get("/balance/:username", h.Balance)
	router.Post("/wallet/deposit", h.Deposit)
	router.Post("/wallet/withdraw", h.Withdraw)
}
