package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lucentplay/seamless-wallet/internal/history"
	"github.com/lucentplay/seamless-wallet/internal/launch"
)

// RegisterGameRoutes wires the game catalog, launch, and history views.
func RegisterGameRoutes(router fiber.Router, launchHandler *launch.Handler, historyHandler *history.Handler) {
	router.Get("/games", launchHandler.Games)
	router.Post("/launch", launchHandler.Launch)
	router.Post("/transactions", historyHandler.Transactions)
}
