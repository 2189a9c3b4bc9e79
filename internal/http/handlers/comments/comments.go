// Package comments реализует HTTP-обработчики комментариев к отзывам.
package comments

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/yamdb/internal/http/middlewarectx"
	"github.com/magabrotheeeer/yamdb/internal/http/request"
	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/models"
)

// Service бизнес-логика комментариев.
type Service interface {
	ListComments(ctx context.Context, titleID, reviewID int64, page models.Page) (models.List[models.Comment], error)
	GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error)
	CreateComment(ctx context.Context, actor *models.Actor, titleID, reviewID int64, text string) (*models.Comment, error)
	UpdateComment(ctx context.Context, actor *models.Actor, titleID, reviewID, commentID int64,
		text *string) (*models.Comment, error)
	DeleteComment(ctx context.Context, actor *models.Actor, titleID, reviewID, commentID int64) error
}

// Handler обрабатывает запросы /titles/{title_id}/reviews/{review_id}/comments.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// CreateRequest — новый комментарий.
type CreateRequest struct {
	Text string `json:"text" validate:"required" example:"Agree"`
}

// PatchRequest — изменение комментария.
type PatchRequest struct {
	Text *string `json:"text" validate:"omitempty,min=1"`
}

type path struct {
	titleID, reviewID, commentID int64
}

// parsePath читает идентификаторы из URL; commentID только при withComment.
func parsePath(r *http.Request, withComment bool) (path, error) {
	var (
		p   path
		err error
	)
	if p.titleID, err = request.ID(r, "title_id"); err != nil {
		return p, err
	}
	if p.reviewID, err = request.ID(r, "review_id"); err != nil {
		return p, err
	}
	if withComment {
		if p.commentID, err = request.ID(r, "comment_id"); err != nil {
			return p, err
		}
	}
	return p, nil
}

// List godoc
// @Summary Комментарии к отзыву
// @Tags Comments
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "count и results"
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/comments [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.List"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

	p, err := parsePath(r, false)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	res, err := h.service.ListComments(r.Context(), p.titleID, p.reviewID, request.Page(r))
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(res))
}

// Get godoc
// @Summary Комментарий по id
// @Tags Comments
// @Produce  json
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param comment_id path int true "ID комментария"
// @Success 200 {object} response.Response{data=models.Comment}
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.Get"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

	p, err := parsePath(r, true)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	comment, err := h.service.GetComment(r.Context(), p.titleID, p.reviewID, p.commentID)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(comment))
}

// Create godoc
// @Summary Новый комментарий
// @Tags Comments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param request body CreateRequest true "Текст"
// @Success 201 {object} response.Response{data=models.Comment}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/comments [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.Create"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

	p, err := parsePath(r, false)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	var req CreateRequest
	if err = request.Decode(r, &req); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	comment, err := h.service.CreateComment(r.Context(), middlewarectx.ActorFrom(r.Context()), p.titleID, p.reviewID, req.Text)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusCreated, response.StatusOKWithData(comment))
}

// Update godoc
// @Summary Изменение комментария
// @Tags Comments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param comment_id path int true "ID комментария"
// @Param request body PatchRequest true "Текст"
// @Success 200 {object} response.Response{data=models.Comment}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.Update"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

	p, err := parsePath(r, true)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	var req PatchRequest
	if err = request.Decode(r, &req); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	comment, err := h.service.UpdateComment(r.Context(), middlewarectx.ActorFrom(r.Context()),
		p.titleID, p.reviewID, p.commentID, req.Text)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(comment))
}

// Delete godoc
// @Summary Удаление комментария
// @Tags Comments
// @Security BearerAuth
// @Param title_id path int true "ID произведения"
// @Param review_id path int true "ID отзыва"
// @Param comment_id path int true "ID комментария"
// @Success 204
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comments.Delete"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))

	p, err := parsePath(r, true)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	err = h.service.DeleteComment(r.Context(), middlewarectx.ActorFrom(r.Context()), p.titleID, p.reviewID, p.commentID)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.NoContent(w, r)
}
