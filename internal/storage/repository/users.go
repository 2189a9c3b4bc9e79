package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

const userColumns = `id, username, email, first_name, last_name, bio, role, is_superuser,
		confirmation_code_hash, confirmation_code_expiry`

// CreateUser сохраняет нового пользователя и возвращает его ID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	if user.Role == "" {
		user.Role = models.RoleUser
	}
	query := `INSERT INTO users (username, email, first_name, last_name, bio, role,
			      confirmation_code_hash, confirmation_code_expiry)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id;`
	var id int64
	if err := s.DB.QueryRowxContext(ctx, query,
		user.Username, user.Email, user.FirstName, user.LastName, user.Bio, user.Role,
		user.ConfirmationCodeHash, user.ConfirmationCodeExpiry).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return id, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var u models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	if err := s.DB.GetContext(ctx, &u, query, username); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var u models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := s.DB.GetContext(ctx, &u, query, email); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &u, nil
}

// GetUserByID возвращает пользователя по ID.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUserByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var u models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := s.DB.GetContext(ctx, &u, query, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &u, nil
}

// ListUsers возвращает страницу пользователей, упорядоченных по username,
// и общее число подходящих записей. Пустой search не фильтрует.
func (s *Storage) ListUsers(ctx context.Context, search string, page models.Page) ([]models.User, int, error) {
	const op = "storage.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.DB.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM users WHERE $1 = '' OR username ILIKE '%' || $1 || '%'`, search); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	users := []models.User{}
	query := `SELECT ` + userColumns + ` FROM users
			  WHERE $1 = '' OR username ILIKE '%' || $1 || '%'
			  ORDER BY username
			  LIMIT $2 OFFSET $3`
	if err := s.DB.SelectContext(ctx, &users, query, search, page.Limit, page.Offset); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return users, total, nil
}

// UpdateUser перезаписывает профиль пользователя по его ID.
func (s *Storage) UpdateUser(ctx context.Context, user models.User) error {
	const op = "storage.UpdateUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE users
			  SET username = $1, email = $2, first_name = $3, last_name = $4, bio = $5, role = $6
			  WHERE id = $7`
	res, err := s.DB.ExecContext(ctx, query,
		user.Username, user.Email, user.FirstName, user.LastName, user.Bio, user.Role, user.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err = rowsAffected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteUserByUsername удаляет пользователя; его отзывы и комментарии удаляются каскадно.
// Возвращает id произведений, на которые у пользователя были отзывы.
func (s *Storage) DeleteUserByUsername(ctx context.Context, username string) ([]int64, error) {
	const op = "storage.DeleteUserByUsername"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var refs []affectedTitle
	err := s.DB.SelectContext(ctx, &refs,
		`WITH deleted AS (DELETE FROM users WHERE username = $1 RETURNING id)
		SELECT DISTINCT r.title_id FROM deleted d LEFT JOIN reviews r ON r.author_id = d.id`, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ids, err := affectedTitleIDs(refs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

// SetConfirmationCode сохраняет хеш нового кода подтверждения и срок его действия.
func (s *Storage) SetConfirmationCode(ctx context.Context, userID int64, codeHash string, expiry time.Time) error {
	const op = "storage.SetConfirmationCode"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET confirmation_code_hash = $1, confirmation_code_expiry = $2 WHERE id = $3`,
		codeHash, expiry, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = rowsAffected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearConfirmationCode гасит код, только если в базе всё ещё хранится codeHash.
// Если код уже погашен или заменён, возвращает ErrNotFound.
func (s *Storage) ClearConfirmationCode(ctx context.Context, userID int64, codeHash string) error {
	const op = "storage.ClearConfirmationCode"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET confirmation_code_hash = NULL, confirmation_code_expiry = NULL
		WHERE id = $1 AND confirmation_code_hash = $2`,
		userID, codeHash)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = rowsAffected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
