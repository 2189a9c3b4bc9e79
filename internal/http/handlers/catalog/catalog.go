// Package catalog реализует HTTP-обработчики справочников категорий и жанров.
// Один Handler обслуживает один справочник.
package catalog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/yamdb/internal/http/request"
	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/models"
)

// Service бизнес-логика справочника.
type Service interface {
	Kind() models.CatalogKind
	List(ctx context.Context, search string, page models.Page) (models.List[models.CatalogItem], error)
	Create(ctx context.Context, item models.CatalogItem) (models.CatalogItem, error)
	Delete(ctx context.Context, slug string) error
}

// Handler обрабатывает запросы /categories или /genres.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log.With(slog.String("catalog", string(service.Kind()))),
		service: service,
	}
}

// CreateRequest — новая запись справочника.
type CreateRequest struct {
	Name string `json:"name" validate:"required,max=256" example:"Books"`
	Slug string `json:"slug" validate:"required,max=50,slug" example:"books"`
}

// List godoc
// @Summary Список категорий или жанров
// @Tags Catalog
// @Produce  json
// @Param search query string false "Поиск по названию"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "count и results"
// @Router /categories [get]
// @Router /genres [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.List"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.List(r.Context(), request.Search(r), request.Page(r))
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(res))
}

// Create godoc
// @Summary Добавление категории или жанра
// @Tags Catalog
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body CreateRequest true "Название и slug"
// @Success 201 {object} response.Response{data=models.CatalogItem}
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или занятый slug"
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /categories [post]
// @Router /genres [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.Create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req CreateRequest
	if err := request.Decode(r, &req); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	item, err := h.service.Create(r.Context(), models.CatalogItem{Name: req.Name, Slug: req.Slug})
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusCreated, response.StatusOKWithData(item))
}

// Delete godoc
// @Summary Удаление категории или жанра по slug
// @Tags Catalog
// @Security BearerAuth
// @Param slug path string true "Slug"
// @Success 204
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /categories/{slug} [delete]
// @Router /genres/{slug} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.Delete"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.NoContent(w, r)
}
