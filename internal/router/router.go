package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/advait122/ROADmap/internal/config"
	"github.com/advait122/ROADmap/internal/handler"
	"github.com/advait122/ROADmap/internal/middleware"
	"github.com/advait122/ROADmap/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	RoadmapHandler          *handler.RoadmapHandler
	StudentDashboardHandler *handler.StudentDashboardHandler
	OpportunityHandler      *handler.OpportunityHandler
	NotificationHandler     *handler.NotificationHandler
	CompanyHandler          *handler.CompanyHandler
	JWTMiddleware           fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.RoadmapHandler != nil || deps.StudentDashboardHandler != nil {
		roadmapGroup := api.Group("/roadmap", jwtMiddleware)
		if deps.RoadmapHandler != nil {
			deps.RoadmapHandler.Register(roadmapGroup)
		}
		if deps.StudentDashboardHandler != nil {
			deps.StudentDashboardHandler.Register(roadmapGroup)
		}
	}

	if deps.OpportunityHandler != nil {
		opportunities := api.Group("/opportunities", jwtMiddleware)
		deps.OpportunityHandler.Register(opportunities,
			middleware.RateLimit("match-refresh", cfg.RefreshRateLimit, cfg.RefreshRateWindow),
		)

		admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(middleware.RoleAdmin, middleware.RoleCurator))
		deps.OpportunityHandler.RegisterAdmin(admin)
	}

	if deps.CompanyHandler != nil {
		company := api.Group("/company", jwtMiddleware, middleware.RequireRole(middleware.RoleCompany))
		deps.CompanyHandler.RegisterCompany(company)

		invites := api.Group("/invites", jwtMiddleware)
		deps.CompanyHandler.RegisterStudent(invites)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}
}
