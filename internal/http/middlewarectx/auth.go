// Package middlewarectx содержит HTTP middleware: разбор JWT токена в контекст
// запроса, проверку прав, ограничение частоты запросов и метрики.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
	"github.com/magabrotheeeer/yamdb/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// ActorKey ключ пользователя, выполняющего запрос.
const ActorKey Key = "actor"

// TokenParser проверяет токен и возвращает пользователя из его claims.
type TokenParser interface {
	ParseToken(token string) (*models.Actor, error)
}

// WithActor кладёт пользователя в контекст.
func WithActor(ctx context.Context, actor *models.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

// ActorFrom возвращает пользователя из контекста или nil для анонимного запроса.
func ActorFrom(ctx context.Context) *models.Actor {
	actor, _ := ctx.Value(ActorKey).(*models.Actor)
	return actor
}

// JWTMiddleware возвращает HTTP middleware, который разбирает заголовок Authorization.
//
// Запрос без заголовка проходит как анонимный. Если заголовок есть, но токен
// не Bearer или не проходит проверку, возвращается 401 Unauthorized.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("invalid authorization header")
				response.Render(w, r, http.StatusUnauthorized, response.Error("invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			actor, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				response.Render(w, r, http.StatusUnauthorized, response.Error("invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireAuth пропускает только аутентифицированные запросы.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActorFrom(r.Context()) == nil {
			response.Render(w, r, http.StatusUnauthorized,
				response.Error("authentication credentials were not provided"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin пропускает только администраторов.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActorFrom(r.Context()).IsAdmin() {
			response.Render(w, r, http.StatusForbidden,
				response.Error("you do not have permission to perform this action"))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// AdminUnlessSafe пропускает GET/HEAD/OPTIONS для всех, остальные методы только администраторам.
func AdminUnlessSafe(next http.Handler) http.Handler {
	admin := RequireAdmin(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			admin.ServeHTTP(w, r)
		}
	})
}
