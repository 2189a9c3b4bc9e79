// Package svcerr содержит ошибки уровня сервисов, которые HTTP-слой
// переводит в коды ответа.
package svcerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("you do not have permission to perform this action")
	ErrInvalidCode = errors.New("invalid confirmation code")
)

// ValidationError ошибки валидации по полям запроса.
type ValidationError struct {
	Fields map[string][]string
	Err    error
}

// NewValidationError ошибка с одним сообщением для поля.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

// Add добавляет сообщение к полю.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// OrNil возвращает nil, если ни одно поле не добавлено.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
