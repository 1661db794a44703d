package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-portal/internal/api/http/handlers"
	"github.com/spec-kit/incident-portal/internal/auth"
	"github.com/spec-kit/incident-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Incidents      *handlers.IncidentsHandler
	Chat           *handlers.ChatHandler
	Staff          *handlers.StaffHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Auth.Me)

	employeeOnly := auth.RequireRole(domain.RoleEmployee)
	staffOnly := auth.RequireRole(domain.RoleSupport, domain.RoleAdmin)
	adminOnly := auth.RequireRole(domain.RoleAdmin)

	incidents := app.Group("/incidents", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	incidents.Post("/", employeeOnly, cfg.Incidents.Submit)
	incidents.Get("/", cfg.Incidents.List)
	incidents.Get("/summary", staffOnly, cfg.Incidents.Summary)
	incidents.Get("/:id", cfg.Incidents.Get)
	incidents.Post("/:id/confirm", employeeOnly, cfg.Incidents.Confirm)
	incidents.Post("/:id/actions/:action", staffOnly, cfg.Incidents.ApplyAction)
	incidents.Get("/:id/transitions", staffOnly, cfg.Incidents.Transitions)
	incidents.Patch("/:id", adminOnly, cfg.Incidents.Update)
	incidents.Delete("/:id", adminOnly, cfg.Incidents.Delete)
	incidents.Get("/:id/messages", cfg.Chat.ListMessages)
	incidents.Post("/:id/messages", cfg.Chat.PostMessage)

	chat := app.Group("/chat", cfg.AuthMiddleware.Handle, employeeOnly)
	chat.Post("/assistant", cfg.Chat.Assistant)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	admin.Get("/staff", staffOnly, cfg.Staff.List)
	admin.Post("/staff", adminOnly, cfg.Staff.Create)
	admin.Patch("/staff/:id", adminOnly, cfg.Staff.Update)
	admin.Post("/staff/:id/skills", adminOnly, cfg.Staff.UpdateSkills)
	admin.Delete("/staff/:id", adminOnly, cfg.Staff.Delete)
}
