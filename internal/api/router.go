package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lrivas/postly-be/internal/api/handlers"
	"github.com/lrivas/postly-be/internal/auth"
	"github.com/lrivas/postly-be/internal/authz"
	"github.com/lrivas/postly-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	issuer *auth.Issuer,
	userService services.UserServiceProvider,
	postService services.PostServiceProvider,
	corsOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, issuer)
	userHandler := handlers.NewUserHandler(userService)
	postHandler := handlers.NewPostHandler(postService)

	r.Route("/api/v1", func(r chi.Router) {
		// Open endpoints: register and login only.
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Everything below requires a valid token resolving to an
		// active account.
		r.Group(func(r chi.Router) {
			r.Use(issuer.Middleware())
			r.Use(resolveCaller(userService))

			r.Get("/auth/me", authHandler.Me)

			r.Route("/users", func(r chi.Router) {
				r.With(requireRole(authz.OpListUsers)).Get("/", userHandler.List)
				r.With(requireRole(authz.OpFilterUsers)).Get("/filter", userHandler.Filter)
				r.Route("/{id}", func(r chi.Router) {
					r.With(requireRole(authz.OpReadUser)).Get("/", userHandler.Get)
					r.With(requireRole(authz.OpManageUser)).Put("/", userHandler.Update)
					r.With(requireRole(authz.OpManageUser)).Delete("/", userHandler.Deactivate)
					r.With(requireRole(authz.OpManageUser)).Post("/activate", userHandler.Activate)
				})
			})

			r.Route("/posts", func(r chi.Router) {
				r.With(requireRole(authz.OpListPosts)).Get("/", postHandler.List)
				r.With(requireRole(authz.OpWritePost)).Post("/", postHandler.Create)
				r.With(requireRole(authz.OpFilterPosts)).Get("/filter", postHandler.Filter)
				r.With(requireRole(authz.OpListPosts)).Get("/tags", postHandler.ListTags)
				r.Route("/{id}", func(r chi.Router) {
					r.With(requireRole(authz.OpReadPost)).Get("/", postHandler.Get)
					r.With(requireRole(authz.OpWritePost)).Put("/", postHandler.Update)
					r.With(requireRole(authz.OpWritePost)).Delete("/", postHandler.Delete)
				})
			})
		})
	})

	return r
}
