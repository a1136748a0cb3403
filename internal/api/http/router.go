package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wardwatch/grievance-service/internal/api/http/handlers"
	"github.com/wardwatch/grievance-service/internal/auth"
	"github.com/wardwatch/grievance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Discussions    *handlers.DiscussionsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	protected := cfg.AuthMiddleware.Handle

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/admin/login", cfg.Auth.AdminLogin)
	authGroup.Post("/wardadmin/login", cfg.Auth.WardAdminLogin)
	authGroup.Post("/google/login", cfg.Auth.GoogleLogin)
	authGroup.Get("/me", protected, cfg.Auth.Me)

	complaints := api.Group("/complaints")
	complaints.Post("/public", cfg.Complaints.CreatePublic)
	complaints.Post("/", protected, cfg.Complaints.Create)
	complaints.Get("/my", protected, auth.RequireRole(domain.RoleCitizen), cfg.Complaints.ListMine)
	complaints.Get("/", protected, auth.RequireRole(domain.RoleAdmin), cfg.Complaints.List)
	complaints.Get("/stats", protected, auth.RequireRole(domain.RoleAdmin, domain.RoleWardAdmin), cfg.Complaints.Stats)
	complaints.Get("/ward/:wardNumber", protected, auth.RequireRole(domain.RoleAdmin, domain.RoleWardAdmin), cfg.Complaints.ListByWard)
	complaints.Get("/:id", protected, cfg.Complaints.Get)
	complaints.Get("/:id/history", protected, auth.RequireRole(domain.RoleAdmin, domain.RoleWardAdmin), cfg.Complaints.History)
	complaints.Put("/:id", protected, auth.RequireRole(domain.RoleAdmin, domain.RoleWardAdmin), cfg.Complaints.UpdateStatus)
	complaints.Delete("/:id", protected, cfg.Complaints.Delete)

	discussions := api.Group("/discussions", protected)
	discussions.Get("/", cfg.Discussions.List)
	discussions.Post("/", cfg.Discussions.Create)
	discussions.Delete("/:id", cfg.Discussions.Delete)
	discussions.Put("/:id/like", cfg.Discussions.ToggleLike)

	admin := api.Group("/admin", protected, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/activity", cfg.Admin.Activity)
}
