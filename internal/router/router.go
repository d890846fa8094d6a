package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-user-admin/internal/config"
	"go-user-admin/internal/handler"
	"go-user-admin/internal/middleware"
)

// Handlers bundles everything the routers mount.
type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	Group  *handler.GroupHandler
	Import *handler.ImportHandler
}

// NewPublic builds the router for the public API service.
func NewPublic(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := base(cfg)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)
		})

		api.Post("/users", h.User.Register)
		api.With(authMiddleware.RequireAdmin).Get("/users", h.User.List)
		api.With(authMiddleware.RequireAuth).Get("/users/{id}", h.User.Get)
		api.With(authMiddleware.RequireAdmin).Put("/users/{id}", h.User.Update)
		api.With(authMiddleware.RequireAuth).Put("/users/{id}/password", h.User.ChangePassword)
		api.With(authMiddleware.RequireAdmin).Put("/users/{id}/role", h.User.SetRole)
		api.With(authMiddleware.RequireAdmin).Delete("/users/{id}", h.User.Delete)

		api.With(authMiddleware.RequireAuth).Get("/groups", h.Group.List)
		api.With(authMiddleware.RequireAuth).Get("/groups/{id}", h.Group.Get)
		api.With(authMiddleware.RequireAdmin).Post("/groups", h.Group.Create)
		api.With(authMiddleware.RequireAdmin).Put("/groups/{id}", h.Group.Update)
		api.With(authMiddleware.RequireAdmin).Delete("/groups/{id}", h.Group.Delete)
		api.With(authMiddleware.RequireAdmin).Post("/groups/{id}/members", h.Group.AddMember)
		api.With(authMiddleware.RequireAdmin).Delete("/groups/{id}/members/{userID}", h.Group.RemoveMember)
	})

	return r
}

// NewAdmin builds the router for the privileged admin service. Login is the
// only route reachable without an admin token.
func NewAdmin(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := base(cfg)

	r.Route("/admin/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Post("/auth/login", h.Auth.Login)
		api.With(authMiddleware.RequireAdmin).Get("/auth/me", h.Auth.Me)

		api.Group(func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAdmin)

			admin.Get("/users", h.User.List)
			admin.Post("/users", h.User.Create)
			admin.Post("/users/import", h.Import.ImportUsers)
			admin.Get("/users/{id}", h.User.Get)
			admin.Put("/users/{id}", h.User.Update)
			admin.Put("/users/{id}/password", h.User.ChangePassword)
			admin.Put("/users/{id}/role", h.User.SetRole)
			admin.Delete("/users/{id}", h.User.Delete)

			admin.Get("/groups", h.Group.List)
			admin.Post("/groups", h.Group.Create)
			admin.Get("/groups/{id}", h.Group.Get)
			admin.Put("/groups/{id}", h.Group.Update)
			admin.Delete("/groups/{id}", h.Group.Delete)
			admin.Post("/groups/{id}/members", h.Group.AddMember)
			admin.Delete("/groups/{id}/members/{userID}", h.Group.RemoveMember)
		})
	})

	return r
}

func base(cfg *config.Config) chi.Router {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
