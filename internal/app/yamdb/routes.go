// Package yamdb собирает HTTP API платформы отзывов: хранилище, кеш,
// доставку писем, сервисы и маршруты.
package yamdb

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/yamdb/internal/http/handlers/auth"
	"github.com/magabrotheeeer/yamdb/internal/http/handlers/catalog"
	"github.com/magabrotheeeer/yamdb/internal/http/handlers/comments"
	"github.com/magabrotheeeer/yamdb/internal/http/handlers/health"
	"github.com/magabrotheeeer/yamdb/internal/http/handlers/reviews"
	"github.com/magabrotheeeer/yamdb/internal/http/handlers/titles"
	"github.com/magabrotheeeer/yamdb/internal/http/handlers/users"
	"github.com/magabrotheeeer/yamdb/internal/http/middlewarectx"
)

// Handlers обработчики всех ресурсов API.
type Handlers struct {
	Auth       *auth.Handler
	Users      *users.Handler
	Categories *catalog.Handler
	Genres     *catalog.Handler
	Titles     *titles.Handler
	Reviews    *reviews.Handler
	Comments   *comments.Handler
	Health     *health.Handler
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, h Handlers,
	tokens middlewarectx.TokenParser, limiter *middlewarectx.IPRateLimiter) {
	// Глобальные middleware. URLFormat не подключён: username может содержать точку.
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.StripSlashes,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(tokens, logger))

		r.Route("/auth", func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))
			r.Post("/signup", h.Auth.Signup)
			r.Post("/token", h.Auth.Token)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middlewarectx.RequireAuth)
			r.Get("/me", h.Users.Me)
			r.Patch("/me", h.Users.UpdateMe)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin)
				r.Get("/", h.Users.List)
				r.Post("/", h.Users.Create)
				r.Get("/{username}", h.Users.Get)
				r.Patch("/{username}", h.Users.Update)
				r.Delete("/{username}", h.Users.Delete)
			})
		})

		r.Route("/categories", catalogRoutes(h.Categories))
		r.Route("/genres", catalogRoutes(h.Genres))

		r.Route("/titles", func(r chi.Router) {
			r.Get("/", h.Titles.List)
			r.With(middlewarectx.RequireAdmin).Post("/", h.Titles.Create)

			r.Route("/{title_id}", func(r chi.Router) {
				r.Get("/", h.Titles.Get)
				r.With(middlewarectx.RequireAdmin).Patch("/", h.Titles.Update)
				r.With(middlewarectx.RequireAdmin).Delete("/", h.Titles.Delete)

				r.Route("/reviews", func(r chi.Router) {
					r.Get("/", h.Reviews.List)
					r.With(middlewarectx.RequireAuth).Post("/", h.Reviews.Create)

					r.Route("/{review_id}", func(r chi.Router) {
						r.Get("/", h.Reviews.Get)
						r.With(middlewarectx.RequireAuth).Patch("/", h.Reviews.Update)
						r.With(middlewarectx.RequireAuth).Delete("/", h.Reviews.Delete)

						r.Route("/comments", func(r chi.Router) {
							r.Get("/", h.Comments.List)
							r.With(middlewarectx.RequireAuth).Post("/", h.Comments.Create)
							r.Get("/{comment_id}", h.Comments.Get)
							r.With(middlewarectx.RequireAuth).Patch("/{comment_id}", h.Comments.Update)
							r.With(middlewarectx.RequireAuth).Delete("/{comment_id}", h.Comments.Delete)
						})
					})
				})
			})
		})
	})

	r.Handle("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

func catalogRoutes(h *catalog.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Use(middlewarectx.AdminUnlessSafe)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Delete("/{slug}", h.Delete)
	}
}
