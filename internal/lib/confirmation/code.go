// Package confirmation реализует выпуск и проверку кодов подтверждения регистрации.
//
// Код — случайная UUID-строка, которая отправляется пользователю по почте.
// В базе хранится только bcrypt-хеш кода вместе со сроком его действия.
package confirmation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MaxCodeLength максимальная длина кода подтверждения.
const MaxCodeLength = 36

// ErrInvalidCode код не совпадает, отсутствует или просрочен.
var ErrInvalidCode = errors.New("invalid confirmation code")

// NewCode генерирует новый код подтверждения.
func NewCode() string {
	return uuid.NewString()
}

// GetHash возвращает bcrypt-хеш кода для хранения в базе данных.
func GetHash(code string) (string, error) {
	const op = "confirmation.GetHash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Verify сверяет присланный код с сохранённым хешем и сроком действия.
// hash и expiry равны nil, если код не выпускался или уже использован.
func Verify(hash *string, expiry *time.Time, code string, now time.Time) error {
	const op = "confirmation.Verify"
	if hash == nil || expiry == nil || code == "" || len(code) > MaxCodeLength {
		return fmt.Errorf("%s: %w", op, ErrInvalidCode)
	}
	if !now.Before(*expiry) {
		return fmt.Errorf("%s: code expired: %w", op, ErrInvalidCode)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*hash), []byte(code)); err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidCode)
	}
	return nil
}
