// Package auth реализует HTTP-обработчики регистрации по коду подтверждения
// и выдачи JWT токена.
package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/yamdb/internal/http/request"
	"github.com/magabrotheeeer/yamdb/internal/http/response"
	"github.com/magabrotheeeer/yamdb/internal/models"
)

// Service определяет методы бизнес-логики аутентификации.
type Service interface {
	Signup(ctx context.Context, username, email string) (*models.User, error)
	ObtainToken(ctx context.Context, username, code string) (string, error)
}

// Handler обрабатывает запросы /auth/signup и /auth/token.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// SignupRequest — входные данные для регистрации.
type SignupRequest struct {
	Username string `json:"username" validate:"required,max=150,username" example:"alice"`
	Email    string `json:"email" validate:"required,max=254,email" example:"alice@example.com"`
}

// SignupResponse — зарегистрированная пара имени и почты.
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest — входные данные для получения токена.
type TokenRequest struct {
	Username         string `json:"username" validate:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" validate:"required,max=36"`
}

// TokenResponse — выданный токен доступа.
type TokenResponse struct {
	Token string `json:"token"`
}

// Signup godoc
// @Summary Регистрация и получение кода подтверждения
// @Description Создает пользователя и отправляет код подтверждения на email. Повторный запрос с той же парой username и email отправляет новый код.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body SignupRequest true "Имя пользователя и email"
// @Success 200 {object} response.Response{data=SignupResponse}
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или занятые username/email"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.Signup"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req SignupRequest
	if err := request.Decode(r, &req); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	user, err := h.service.Signup(r.Context(), req.Username, req.Email)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("signup success", slog.String("username", user.Username))
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(SignupResponse{
		Username: user.Username,
		Email:    user.Email,
	}))
}

// Token godoc
// @Summary Получение JWT токена
// @Description Обменивает username и код подтверждения на токен доступа. Код одноразовый.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body TokenRequest true "Имя пользователя и код подтверждения"
// @Success 200 {object} response.Response{data=TokenResponse}
// @Failure 400 {object} response.ErrorResponse "Неверный код подтверждения"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /auth/token [post]
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.Token"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req TokenRequest
	if err := request.Decode(r, &req); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	token, err := h.service.ObtainToken(r.Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("token issued", slog.String("username", req.Username))
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(TokenResponse{Token: token}))
}
