package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourorg/transitload/internal/handlers"
	"github.com/yourorg/transitload/internal/middleware"
)

// Register wires the run-status surface onto the fiber app.
func Register(app *fiber.App) {
	api := app.Group("/api", middleware.RateLimiter(), middleware.Metrics())
	api.Get("/health", handlers.Health)
	api.Get("/status", handlers.RunStatus)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
