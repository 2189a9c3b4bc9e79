package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

const commentSelect = `SELECT c.id, c.review_id, c.author_id, u.username AS author, c.text, c.pub_date
	FROM comments c
	JOIN users u ON u.id = c.author_id`

// ListComments возвращает страницу комментариев к отзыву.
func (s *Storage) ListComments(ctx context.Context, reviewID int64, page models.Page) ([]models.Comment, int, error) {
	const op = "storage.ListComments"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM comments WHERE review_id = $1`, reviewID); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	comments := []models.Comment{}
	query := commentSelect + ` WHERE c.review_id = $1 ORDER BY c.pub_date, c.id LIMIT $2 OFFSET $3`
	if err := s.DB.SelectContext(ctx, &comments, query, reviewID, page.Limit, page.Offset); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return comments, total, nil
}

// GetComment возвращает комментарий, если он относится к указанному отзыву.
func (s *Storage) GetComment(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	const op = "storage.GetComment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var c models.Comment
	query := commentSelect + ` WHERE c.id = $1 AND c.review_id = $2`
	if err := s.DB.GetContext(ctx, &c, query, commentID, reviewID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &c, nil
}

// CreateComment сохраняет комментарий.
func (s *Storage) CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error) {
	const op = "storage.CreateComment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var id int64
	err := s.DB.QueryRowxContext(ctx,
		`INSERT INTO comments (review_id, author_id, text) VALUES ($1, $2, $3) RETURNING id`,
		comment.ReviewID, comment.AuthorID, comment.Text).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return s.GetComment(ctx, comment.ReviewID, id)
}

// UpdateComment меняет текст комментария.
func (s *Storage) UpdateComment(ctx context.Context, comment models.Comment) error {
	const op = "storage.UpdateComment"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE comments SET text = $1 WHERE id = $2`, comment.Text, comment.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = rowsAffected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteComment удаляет комментарий.
func (s *Storage) DeleteComment(ctx context.Context, id int64) error {
	const op = "storage.DeleteComment"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = rowsAffected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
