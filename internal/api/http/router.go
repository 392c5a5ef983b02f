package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/krakatau-dev/helpdesk/internal/api/http/handlers"
	"github.com/krakatau-dev/helpdesk/internal/auth"
	"github.com/krakatau-dev/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Catalog         *handlers.CatalogHandler
	Tickets         *handlers.TicketsHandler
	Technicians     *handlers.TechniciansHandler
	Escalations     *handlers.EscalationsHandler
	Dashboard       *handlers.DashboardHandler
	ActorMiddleware *auth.ActorMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1", cfg.ActorMiddleware.Handle)

	api.Get("/applications/:id", cfg.Catalog.GetApplication)
	api.Get("/applications/:id/categories", cfg.Catalog.ListCategories)

	tickets := api.Group("/tickets")
	tickets.Post("", auth.RequireActorType(domain.ActorTypeUser, domain.ActorTypeAdminHelpdesk, domain.ActorTypeAdminAplikasi), cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/number/:number", cfg.Tickets.GetTicketByNumber)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Post("/:id/transition", cfg.Tickets.Transition)
	tickets.Post("/:id/assign", auth.RequireAdmin(), cfg.Tickets.Assign)
	tickets.Post("/:id/reassign", auth.RequireAdmin(), cfg.Tickets.Reassign)
	tickets.Post("/:id/rating", auth.RequireActorType(domain.ActorTypeUser), cfg.Tickets.Rate)

	technicians := api.Group("/technicians", auth.RequireActorType(
		domain.ActorTypeTechnician, domain.ActorTypeAdminHelpdesk, domain.ActorTypeAdminAplikasi))
	technicians.Get("", cfg.Technicians.List)
	technicians.Get("/:nip", cfg.Technicians.Get)

	categories := api.Group("/categories", auth.RequireAdmin())
	categories.Get("/:id/candidates", cfg.Technicians.Candidates)
	categories.Get("/:id/candidates/best", cfg.Technicians.BestCandidate)
	categories.Get("/:id/stats", cfg.Dashboard.CategoryStats)

	admin := api.Group("", auth.RequireAdmin())
	admin.Get("/dashboard/summary", cfg.Dashboard.Summary)
	admin.Post("/escalations/sweep", cfg.Escalations.Sweep)
}
