// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/yamdb/internal/http/request"
	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
	"github.com/magabrotheeeer/yamdb/internal/services/svcerr"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Fields — ошибки валидации по полям запроса.
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string              `json:"status"`
	Error  string              `json:"error,omitempty"`
	Fields map[string][]string `json:"fields,omitempty"`
	Data   any                 `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string              `json:"status" example:"Error"`
	Error  string              `json:"error" example:"invalid request body"`
	Fields map[string][]string `json:"fields,omitempty"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

const (
	msgInvalidBody = "invalid request body"
	msgValidation  = "validation failed"
	msgNotFound    = "not found"
	msgInternal    = "internal server error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// FieldsError возвращает Response с ошибками по полям.
func FieldsError(fields map[string][]string) Response {
	return Response{
		Status: StatusError,
		Error:  msgValidation,
		Fields: fields,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидатора.
// Ключ — имя поля в JSON, значение — человеко‑читаемые сообщения.
func ValidationError(errs validator.ValidationErrors) Response {
	fields := make(map[string][]string, len(errs))
	for _, err := range errs {
		fields[err.Field()] = append(fields[err.Field()], fieldMessage(err))
	}
	return FieldsError(fields)
}

func fieldMessage(err validator.FieldError) string {
	switch err.ActualTag() {
	case "required":
		return "This field is required."
	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", err.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", err.Param())
	case "min":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", err.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", err.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. It may contain only letters, numbers and @/./+/-/_ characters and cannot be \"me\"."
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", err.Value())
	default:
		return "This value is not valid."
	}
}

// Render отправляет JSON с кодом статуса.
func Render(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// RenderError переводит ошибку слоя сервисов в HTTP‑ответ. Неизвестные ошибки
// логируются и возвращаются клиенту как 500 без подробностей.
func RenderError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var (
		verr *svcerr.ValidationError
		errs validator.ValidationErrors
	)
	switch {
	case errors.As(err, &verr):
		log.Info("request rejected", sl.Err(err))
		Render(w, r, http.StatusBadRequest, FieldsError(verr.Fields))
	case errors.As(err, &errs):
		log.Info("validation failed", sl.Err(err))
		Render(w, r, http.StatusBadRequest, ValidationError(errs))
	case errors.Is(err, request.ErrInvalidBody):
		log.Info("failed to decode request body", sl.Err(err))
		Render(w, r, http.StatusBadRequest, Error(msgInvalidBody))
	case errors.Is(err, svcerr.ErrNotFound), errors.Is(err, request.ErrInvalidParam):
		Render(w, r, http.StatusNotFound, Error(msgNotFound))
	case errors.Is(err, svcerr.ErrForbidden):
		log.Info("permission denied", sl.Err(err))
		Render(w, r, http.StatusForbidden, Error(svcerr.ErrForbidden.Error()))
	default:
		log.Error("request failed", sl.Err(err))
		Render(w, r, http.StatusInternalServerError, Error(msgInternal))
	}
}

// NoContent отвечает 204 без тела.
func NoContent(w http.ResponseWriter, r *http.Request) {
	render.NoContent(w, r)
}
