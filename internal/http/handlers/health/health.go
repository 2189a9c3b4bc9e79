// Package health отдаёт состояние сервиса и его зависимостей.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/yamdb/internal/http/response"
)

// Checker проверяет зависимости сервиса.
type Checker interface {
	Check(ctx context.Context) (map[string]string, bool)
}

// Handler обрабатывает GET /health.
type Handler struct {
	log     *slog.Logger
	checker Checker
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, checker Checker) *Handler {
	return &Handler{log: log, checker: checker}
}

// ServeHTTP godoc
// @Summary Проверка здоровья
// @Description Пингует PostgreSQL и Redis. 503, если хотя бы одна зависимость недоступна.
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	statuses, healthy := h.checker.Check(r.Context())
	if !healthy {
		h.log.Warn("dependency is down", slog.String("op", op), slog.Any("statuses", statuses))
		response.Render(w, r, http.StatusServiceUnavailable, response.Response{
			Status: response.StatusError,
			Error:  "service unavailable",
			Data:   statuses,
		})
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(statuses))
}
