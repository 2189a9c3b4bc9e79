package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

const reviewSelect = `SELECT r.id, r.title_id, r.author_id, u.username AS author, r.text, r.score, r.pub_date
	FROM reviews r
	JOIN users u ON u.id = r.author_id`

// ListReviews возвращает страницу отзывов на произведение в порядке публикации.
func (s *Storage) ListReviews(ctx context.Context, titleID int64, page models.Page) ([]models.Review, int, error) {
	const op = "storage.ListReviews"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM reviews WHERE title_id = $1`, titleID); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	reviews := []models.Review{}
	query := reviewSelect + ` WHERE r.title_id = $1 ORDER BY r.pub_date, r.id LIMIT $2 OFFSET $3`
	if err := s.DB.SelectContext(ctx, &reviews, query, titleID, page.Limit, page.Offset); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, total, nil
}

// GetReview возвращает отзыв, если он относится к указанному произведению.
func (s *Storage) GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	const op = "storage.GetReview"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var r models.Review
	query := reviewSelect + ` WHERE r.id = $1 AND r.title_id = $2`
	if err := s.DB.GetContext(ctx, &r, query, reviewID, titleID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &r, nil
}

// CreateReview сохраняет отзыв. Повторный отзыв того же автора на то же
// произведение возвращает ErrAlreadyExists с ограничением ConstraintReview.
func (s *Storage) CreateReview(ctx context.Context, review models.Review) (*models.Review, error) {
	const op = "storage.CreateReview"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var id int64
	err := s.DB.QueryRowxContext(ctx,
		`INSERT INTO reviews (title_id, author_id, text, score) VALUES ($1, $2, $3, $4) RETURNING id`,
		review.TitleID, review.AuthorID, review.Text, review.Score).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return s.GetReview(ctx, review.TitleID, id)
}

// UpdateReview меняет текст и оценку отзыва.
func (s *Storage) UpdateReview(ctx context.Context, review models.Review) error {
	const op = "storage.UpdateReview"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE reviews SET text = $1, score = $2 WHERE id = $3`,
		review.Text, review.Score, review.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err = rowsAffected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteReview удаляет отзыв вместе с комментариями.
func (s *Storage) DeleteReview(ctx context.Context, id int64) error {
	const op = "storage.DeleteReview"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = rowsAffected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
