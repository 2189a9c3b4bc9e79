// Package repository реализует хранилище платформы отзывов на PostgreSQL:
// пользователи, категории, жанры, произведения, отзывы и комментарии.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sqlx.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sqlx.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Ping проверяет соединение с базой.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

func rowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// affectedTitle строка LEFT JOIN удалённой записи с произведениями.
// TitleID пуст, если запись удалена, но ссылок не было.
type affectedTitle struct {
	TitleID *int64 `db:"title_id"`
}

// affectedTitleIDs отсутствие строк означает, что удалять было нечего.
func affectedTitleIDs(refs []affectedTitle) ([]int64, error) {
	if len(refs) == 0 {
		return nil, ErrNotFound
	}
	ids := make([]int64, 0, len(refs))
	for _, r := range refs {
		if r.TitleID != nil {
			ids = append(ids, *r.TitleID)
		}
	}
	return ids, nil
}
