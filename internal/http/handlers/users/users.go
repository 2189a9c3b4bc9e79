// Package users реализует HTTP-обработчики управления пользователями
// и собственным профилем.
package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/yamdb/internal/http/middlewarectx"
	"github.com/magabrotheeeer/yamdb/internal/http/request"
	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/models"
)

// Service описывает бизнес-логику пользователей.
type Service interface {
	List(ctx context.Context, search string, page models.Page) (models.List[models.User], error)
	Create(ctx context.Context, user models.User) (*models.User, error)
	Get(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, username string, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, username string) error
	Me(ctx context.Context, actor *models.Actor) (*models.User, error)
	UpdateMe(ctx context.Context, actor *models.Actor, patch models.UserPatch) (*models.User, error)
}

// Handler обрабатывает запросы /users.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// CreateRequest — данные нового пользователя.
type CreateRequest struct {
	Username  string      `json:"username" validate:"required,max=150,username"`
	Email     string      `json:"email" validate:"required,max=254,email"`
	FirstName string      `json:"first_name" validate:"max=150"`
	LastName  string      `json:"last_name" validate:"max=150"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

// PatchRequest — частичное обновление пользователя.
type PatchRequest struct {
	Username  *string      `json:"username" validate:"omitempty,max=150,username"`
	Email     *string      `json:"email" validate:"omitempty,max=254,email"`
	FirstName *string      `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string      `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string      `json:"bio"`
	Role      *models.Role `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

func (p PatchRequest) toPatch() models.UserPatch {
	return models.UserPatch{
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Bio:       p.Bio,
		Role:      p.Role,
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// List godoc
// @Summary Список пользователей
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param search query string false "Поиск по username"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "count и results"
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.users.List")

	res, err := h.service.List(r.Context(), request.Search(r), request.Page(r))
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(res))
}

// Create godoc
// @Summary Создание пользователя администратором
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body CreateRequest true "Данные пользователя"
// @Success 201 {object} response.Response{data=models.User}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.users.Create")

	var req CreateRequest
	if err := request.Decode(r, &req); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	user, err := h.service.Create(r.Context(), models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusCreated, response.StatusOKWithData(user))
}

// Get godoc
// @Summary Пользователь по username
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} response.Response{data=models.User}
// @Failure 404 {object} response.ErrorResponse
// @Router /users/{username} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.users.Get")

	user, err := h.service.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(user))
}

// Update godoc
// @Summary Изменение пользователя администратором
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param username path string true "Username"
// @Param request body PatchRequest true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.User}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /users/{username} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.users.Update")

	var req PatchRequest
	if err := request.Decode(r, &req); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	user, err := h.service.Update(r.Context(), chi.URLParam(r, "username"), req.toPatch())
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(user))
}

// Delete godoc
// @Summary Удаление пользователя
// @Tags Users
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Router /users/{username} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.users.Delete")

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "username")); err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.NoContent(w, r)
}

// Me godoc
// @Summary Собственный профиль
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.User}
// @Failure 401 {object} response.ErrorResponse
// @Router /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.users.Me")

	user, err := h.service.Me(r.Context(), middlewarectx.ActorFrom(r.Context()))
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(user))
}

// UpdateMe godoc
// @Summary Изменение собственного профиля
// @Description Поле role игнорируется.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body PatchRequest true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.User}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /users/me [patch]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.users.UpdateMe")

	var req PatchRequest
	if err := request.Decode(r, &req); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	user, err := h.service.UpdateMe(r.Context(), middlewarectx.ActorFrom(r.Context()), req.toPatch())
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(user))
}
