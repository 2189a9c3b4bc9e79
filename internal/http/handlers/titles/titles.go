// Package titles реализует HTTP-обработчики произведений.
package titles

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/yamdb/internal/http/request"
	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services/svcerr"
)

// Service бизнес-логика произведений.
type Service interface {
	List(ctx context.Context, filter models.TitleFilter, page models.Page) (models.List[models.Title], error)
	Get(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, in models.TitleInput) (*models.Title, error)
	Update(ctx context.Context, id int64, patch models.TitlePatch) (*models.Title, error)
	Delete(ctx context.Context, id int64) error
}

// Handler обрабатывает запросы /titles.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// CreateRequest — данные нового произведения. Категория и жанры задаются слагами.
type CreateRequest struct {
	Name        string   `json:"name" validate:"required,max=256" example:"Solaris"`
	Year        int      `json:"year" validate:"required" example:"1961"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"required,max=50" example:"books"`
	Genre       []string `json:"genre" validate:"dive,max=50" example:"drama"`
}

// PatchRequest — частичное обновление произведения.
type PatchRequest struct {
	Name        *string   `json:"name" validate:"omitempty,max=256"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category" validate:"omitempty,max=50"`
	Genre       *[]string `json:"genre"`
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// List godoc
// @Summary Список произведений
// @Description Фильтры по slug категории и жанра без учёта регистра, подстроке названия и году. search ищет сразу по названию, году и слагам.
// @Tags Titles
// @Produce  json
// @Param category query string false "Slug категории"
// @Param genre query string false "Slug жанра"
// @Param name query string false "Подстрока названия"
// @Param year query int false "Год"
// @Param search query string false "Поиск"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "count и results"
// @Failure 400 {object} response.ErrorResponse
// @Router /titles [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.titles.List")

	filter, err := parseFilter(r)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	res, err := h.service.List(r.Context(), filter, request.Page(r))
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(res))
}

func parseFilter(r *http.Request) (models.TitleFilter, error) {
	q := r.URL.Query()
	filter := models.TitleFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Genre:    strings.TrimSpace(q.Get("genre")),
		Name:     strings.TrimSpace(q.Get("name")),
		Search:   request.Search(r),
	}
	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return filter, svcerr.NewValidationError("year", "Enter a whole number.")
		}
		if year < models.MinYear || year > models.MaxYear {
			return filter, svcerr.NewValidationError("year", "Year is out of range.")
		}
		filter.Year = &year
	}
	return filter, nil
}

// Get godoc
// @Summary Произведение по id
// @Tags Titles
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Success 200 {object} response.Response{data=models.Title}
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.titles.Get")

	id, err := request.ID(r, "title_id")
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	title, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(title))
}

// Create godoc
// @Summary Добавление произведения
// @Tags Titles
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body CreateRequest true "Данные произведения"
// @Success 201 {object} response.Response{data=models.Title}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /titles [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.titles.Create")

	var req CreateRequest
	if err := request.Decode(r, &req); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	title, err := h.service.Create(r.Context(), models.TitleInput{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Category:    req.Category,
		Genres:      req.Genre,
	})
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusCreated, response.StatusOKWithData(title))
}

// Update godoc
// @Summary Изменение произведения
// @Tags Titles
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Param request body PatchRequest true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Title}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.titles.Update")

	id, err := request.ID(r, "title_id")
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	var req PatchRequest
	if err = request.Decode(r, &req); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	title, err := h.service.Update(r.Context(), id, models.TitlePatch{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Category:    req.Category,
		Genres:      req.Genre,
	})
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(title))
}

// Delete godoc
// @Summary Удаление произведения
// @Tags Titles
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.titles.Delete")

	id, err := request.ID(r, "title_id")
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	if err = h.service.Delete(r.Context(), id); err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.NoContent(w, r)
}
