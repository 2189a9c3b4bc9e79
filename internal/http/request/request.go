// Package request разбирает тело, параметры пути и строки запроса
// и проверяет входные данные валидатором.
package request

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

var (
	// ErrInvalidBody тело запроса не удалось разобрать.
	ErrInvalidBody = errors.New("invalid request body")
	// ErrInvalidParam параметр пути имеет неверный формат.
	ErrInvalidParam = errors.New("invalid path parameter")
)

const (
	// ReservedUsername занято адресом собственного профиля.
	ReservedUsername = "me"
	MaxUsernameLen   = 150
	MaxEmailLen      = 254
	MaxSlugLen       = 50
)

var (
	usernameRe = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

var validate = NewValidator()

// NewValidator создаёт валидатор, который называет поля по JSON‑тегам
// и знает теги username и slug.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRe.MatchString(fl.Field().String())
	})
	return v
}

// ValidUsername допустимое имя пользователя: буквы, цифры и @.+-_, кроме "me" в любом регистре.
func ValidUsername(s string) bool {
	return usernameRe.MatchString(s) && !strings.EqualFold(s, ReservedUsername)
}

// Decode разбирает JSON из тела запроса в dst и валидирует его.
// Ошибки валидации возвращаются как validator.ValidationErrors.
func Decode(r *http.Request, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return verrs
		}
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// ID читает числовой идентификатор из параметра пути.
func ID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParam, name, raw)
	}
	return id, nil
}

// Page читает limit и offset. Неверные значения заменяются значениями по умолчанию.
func Page(r *http.Request) models.Page {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return models.NewPage(limit, offset)
}

// Search значение параметра search без пробелов по краям.
func Search(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("search"))
}
