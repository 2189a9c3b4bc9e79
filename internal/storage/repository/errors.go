package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrReference     = errors.New("referenced record does not exist")
	ErrConstraint    = errors.New("check constraint violated")
)

// Имена ограничений из migrations/000001_init.up.sql.
const (
	ConstraintUsername     = "users_username_key"
	ConstraintEmail        = "users_email_key"
	ConstraintCategorySlug = "categories_slug_key"
	ConstraintGenreSlug    = "genres_slug_key"
	ConstraintReview       = "unique_review_per_title"
)

// ConstraintError нарушение ограничения базы с именем ограничения.
type ConstraintError struct {
	Err        error
	Constraint string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Err, e.Constraint)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// ConstraintName возвращает имя нарушенного ограничения, если err его содержит.
func ConstraintName(err error) string {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Constraint
	}
	return ""
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return &ConstraintError{Err: ErrAlreadyExists, Constraint: pgErr.ConstraintName}
	case pgerrcode.ForeignKeyViolation:
		return &ConstraintError{Err: ErrReference, Constraint: pgErr.ConstraintName}
	case pgerrcode.CheckViolation:
		return &ConstraintError{Err: ErrConstraint, Constraint: pgErr.ConstraintName}
	}
	return err
}
