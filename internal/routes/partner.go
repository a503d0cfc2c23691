package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lucentplay/seamless-wallet/internal/partner"
)

// RegisterPartnerRoutes wires the inbound endpoints the aggregator calls.
func RegisterPartnerRoutes(router fiber.Router, h *partner.Handler) {
	router.Post("/checkBalance", h.CheckBalance)
	router.Post("/settleBets", h.SettleBets)
	router.Post("/history", h.History)
}
