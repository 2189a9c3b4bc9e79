// Package reviews реализует HTTP-обработчики отзывов на произведения.
package reviews

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/yamdb/internal/http/middlewarectx"
	"github.com/magabrotheeeer/yamdb/internal/http/request"
	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/models"
	reviewservice "github.com/magabrotheeeer/yamdb/internal/services/reviews"
)

// Service бизнес-логика отзывов.
type Service interface {
	ListReviews(ctx context.Context, titleID int64, page models.Page) (models.List[models.Review], error)
	GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	CreateReview(ctx context.Context, actor *models.Actor, titleID int64, text string, score int) (*models.Review, error)
	UpdateReview(ctx context.Context, actor *models.Actor, titleID, reviewID int64,
		patch reviewservice.ReviewPatch) (*models.Review, error)
	DeleteReview(ctx context.Context, actor *models.Actor, titleID, reviewID int64) error
}

// Handler обрабатывает запросы /titles/{title_id}/reviews.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// CreateRequest — новый отзыв.
type CreateRequest struct {
	Text  string `json:"text" validate:"required" example:"Great book"`
	Score int    `json:"score" validate:"required" example:"9"`
}

// PatchRequest — изменение отзыва.
type PatchRequest struct {
	Text  *string `json:"text" validate:"omitempty,min=1"`
	Score *int    `json:"score"`
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// List godoc
// @Summary Отзывы на произведение
// @Tags Reviews
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "count и results"
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id}/reviews [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.reviews.List")

	titleID, err := request.ID(r, "title_id")
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	res, err := h.service.ListReviews(r.Context(), titleID, request.Page(r))
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(res))
}

// Get godoc
// @Summary Отзыв по id
// @Tags Reviews
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Success 200 {object} response.Response{data=models.Review}
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.reviews.Get")

	titleID, reviewID, err := ids(r)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	review, err := h.service.GetReview(r.Context(), titleID, reviewID)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(review))
}

// Create godoc
// @Summary Новый отзыв
// @Description Один пользователь может оставить только один отзыв на произведение.
// @Tags Reviews
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Param request body CreateRequest true "Текст и оценка 1..10"
// @Success 201 {object} response.Response{data=models.Review}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id}/reviews [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.reviews.Create")

	titleID, err := request.ID(r, "title_id")
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	var req CreateRequest
	if err = request.Decode(r, &req); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	review, err := h.service.CreateReview(r.Context(), middlewarectx.ActorFrom(r.Context()), titleID, req.Text, req.Score)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusCreated, response.StatusOKWithData(review))
}

// Update godoc
// @Summary Изменение отзыва
// @Description Доступно автору, модератору и администратору.
// @Tags Reviews
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param request body PatchRequest true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Review}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.reviews.Update")

	titleID, reviewID, err := ids(r)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	var req PatchRequest
	if err = request.Decode(r, &req); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	review, err := h.service.UpdateReview(r.Context(), middlewarectx.ActorFrom(r.Context()), titleID, reviewID,
		reviewservice.ReviewPatch{Text: req.Text, Score: req.Score})
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(review))
}

// Delete godoc
// @Summary Удаление отзыва
// @Tags Reviews
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Success 204
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.reviews.Delete")

	titleID, reviewID, err := ids(r)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	if err = h.service.DeleteReview(r.Context(), middlewarectx.ActorFrom(r.Context()), titleID, reviewID); err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.NoContent(w, r)
}

func ids(r *http.Request) (titleID, reviewID int64, err error) {
	if titleID, err = request.ID(r, "title_id"); err != nil {
		return 0, 0, err
	}
	if reviewID, err = request.ID(r, "review_id"); err != nil {
		return 0, 0, err
	}
	return titleID, reviewID, nil
}
