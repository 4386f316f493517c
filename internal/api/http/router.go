package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/forum-service/internal/api/http/handlers"
	"github.com/campuskit/forum-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Posts          *handlers.PostsHandler
	Comments       *handlers.CommentsHandler
	Users          *handlers.UsersHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/code", cfg.Auth.SendCode)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)

	// Listings are public; detail accepts an optional bearer so the
	// liked flag reflects the viewer.
	api.Get("/posts", cfg.Posts.List)
	api.Get("/posts/search", cfg.Posts.Search)
	api.Get("/posts/hot", cfg.Posts.Hot)
	api.Get("/posts/:id", cfg.AuthMiddleware.Optional, cfg.Posts.Detail)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protected.Post("/posts", cfg.Posts.Create)
	protected.Post("/posts/:id/like", cfg.Posts.ToggleLike)
	protected.Delete("/posts/:id", cfg.Posts.Delete)
	protected.Post("/comments", cfg.Comments.Create)
	protected.Post("/comments/:id/like", cfg.Comments.ToggleLike)
	protected.Delete("/comments/:id", cfg.Comments.Delete)
	protected.Get("/users/me", cfg.Users.Me)
	protected.Put("/users/me", cfg.Users.UpdateProfile)
	protected.Put("/users/me/password", cfg.Users.ChangePassword)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/users/review", cfg.Admin.ReviewAuth)
	admin.Post("/users/mute", cfg.Admin.Mute)
	admin.Post("/users/kick", cfg.Admin.Kick)
	admin.Post("/users/role", cfg.Admin.ChangeRole)
	admin.Delete("/posts/:id", cfg.Admin.DeletePost)
	admin.Delete("/comments/:id", cfg.Admin.DeleteComment)
}
