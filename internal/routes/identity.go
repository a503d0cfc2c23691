package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lucentplay/seamless-wallet/internal/identity"
)

// RegisterIdentityRoutes wires registration and login endpoints.
func RegisterIdentityRoutes(router fiber.Router, h *identity.Handler, rateLimiter fiber.Handler) {
	router.Post("/register", h.Register)
	router.Post("/login", rateLimiter, h.Login)
}
