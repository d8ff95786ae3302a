package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/uts-support/ticket-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Tickets     *handlers.TicketsHandler
	Diagnostics *handlers.DiagnosticsHandler
	Directory   *handlers.DirectoryHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/db-test", cfg.Diagnostics.DBTest)
	app.Get("/directory", cfg.Directory.List)

	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("/:ticketId", cfg.Tickets.GetTicket)
	tickets.Patch("/:ticketId", cfg.Tickets.UpdateTicket)
	tickets.Patch("/:ticketId/people", cfg.Tickets.UpdatePeople)
	tickets.Patch("/:ticketId/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:ticketId/close", cfg.Tickets.CloseTicket)
	tickets.Post("/:ticketId/comments", cfg.Tickets.AddComment)
}
