// Package reviews реализует отзывы на произведения и комментарии к ним.
//
// Создавать отзывы и комментарии может любой аутентифицированный пользователь,
// изменять и удалять — автор, модератор или администратор.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services/svcerr"
	"github.com/magabrotheeeer/yamdb/internal/storage/repository"
)

// Repository хранилище отзывов и комментариев.
type Repository interface {
	GetTitleRecord(ctx context.Context, id int64) (*models.TitleRecord, error)

	ListReviews(ctx context.Context, titleID int64, page models.Page) ([]models.Review, int, error)
	GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	CreateReview(ctx context.Context, review models.Review) (*models.Review, error)
	UpdateReview(ctx context.Context, review models.Review) error
	DeleteReview(ctx context.Context, id int64) error

	ListComments(ctx context.Context, reviewID int64, page models.Page) ([]models.Comment, int, error)
	GetComment(ctx context.Context, reviewID, commentID int64) (*models.Comment, error)
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)
	UpdateComment(ctx context.Context, comment models.Comment) error
	DeleteComment(ctx context.Context, id int64) error
}

// RatingInvalidator сбрасывает кешированную карточку произведения при изменении оценок.
type RatingInvalidator interface {
	Invalidate(ctx context.Context, titleID int64)
}

// ReviewPatch частичное обновление отзыва.
type ReviewPatch struct {
	Text  *string
	Score *int
}

// Service бизнес-логика отзывов и комментариев.
type Service struct {
	repo    Repository
	ratings RatingInvalidator
	log     *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, ratings RatingInvalidator, log *slog.Logger) *Service {
	return &Service{repo: repo, ratings: ratings, log: log}
}

// ListReviews возвращает отзывы на произведение.
func (s *Service) ListReviews(ctx context.Context, titleID int64, page models.Page) (models.List[models.Review], error) {
	const op = "services.reviews.ListReviews"
	if err := s.checkTitle(ctx, titleID); err != nil {
		return models.List[models.Review]{}, fmt.Errorf("%s: %w", op, err)
	}
	items, total, err := s.repo.ListReviews(ctx, titleID, page)
	if err != nil {
		return models.List[models.Review]{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewList(items, total), nil
}

// GetReview возвращает отзыв произведения.
func (s *Service) GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	const op = "services.reviews.GetReview"
	review, err := s.repo.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return review, nil
}

// CreateReview публикует отзыв. Второй отзыв автора на то же произведение отклоняется.
func (s *Service) CreateReview(ctx context.Context, actor *models.Actor, titleID int64,
	text string, score int) (*models.Review, error) {
	const op = "services.reviews.CreateReview"
	if actor == nil {
		return nil, fmt.Errorf("%s: %w", op, svcerr.ErrForbidden)
	}
	if err := s.checkTitle(ctx, titleID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := checkScore(score); err != nil {
		return nil, err
	}

	review, err := s.repo.CreateReview(ctx, models.Review{
		TitleID:  titleID,
		AuthorID: actor.UserID,
		Text:     text,
		Score:    score,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyExists):
			return nil, svcerr.NewValidationError("review", "You have already reviewed this title.")
		case errors.Is(err, repository.ErrReference):
			return nil, fmt.Errorf("%s: %w", op, svcerr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.ratings.Invalidate(ctx, titleID)
	s.log.Info("review created", slog.Int64("title_id", titleID), slog.Int64("review_id", review.ID))
	return review, nil
}

// UpdateReview меняет текст или оценку отзыва.
func (s *Service) UpdateReview(ctx context.Context, actor *models.Actor, titleID, reviewID int64,
	patch ReviewPatch) (*models.Review, error) {
	const op = "services.reviews.UpdateReview"
	review, err := s.repo.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	if !actor.CanModify(review.AuthorID) {
		return nil, fmt.Errorf("%s: %w", op, svcerr.ErrForbidden)
	}
	if patch.Text != nil {
		review.Text = *patch.Text
	}
	if patch.Score != nil {
		if err = checkScore(*patch.Score); err != nil {
			return nil, err
		}
		review.Score = *patch.Score
	}
	if err = s.repo.UpdateReview(ctx, *review); err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	if patch.Score != nil {
		s.ratings.Invalidate(ctx, titleID)
	}
	return review, nil
}

// DeleteReview удаляет отзыв вместе с комментариями.
func (s *Service) DeleteReview(ctx context.Context, actor *models.Actor, titleID, reviewID int64) error {
	const op = "services.reviews.DeleteReview"
	review, err := s.repo.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, notFound(err))
	}
	if !actor.CanModify(review.AuthorID) {
		return fmt.Errorf("%s: %w", op, svcerr.ErrForbidden)
	}
	if err = s.repo.DeleteReview(ctx, reviewID); err != nil {
		return fmt.Errorf("%s: %w", op, notFound(err))
	}
	s.ratings.Invalidate(ctx, titleID)
	s.log.Info("review deleted", slog.Int64("title_id", titleID), slog.Int64("review_id", reviewID))
	return nil
}

// ListComments возвращает комментарии к отзыву произведения.
func (s *Service) ListComments(ctx context.Context, titleID, reviewID int64,
	page models.Page) (models.List[models.Comment], error) {
	const op = "services.reviews.ListComments"
	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return models.List[models.Comment]{}, fmt.Errorf("%s: %w", op, notFound(err))
	}
	items, total, err := s.repo.ListComments(ctx, reviewID, page)
	if err != nil {
		return models.List[models.Comment]{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewList(items, total), nil
}

// GetComment возвращает комментарий, проверяя, что отзыв относится к произведению.
func (s *Service) GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	const op = "services.reviews.GetComment"
	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	comment, err := s.repo.GetComment(ctx, reviewID, commentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return comment, nil
}

// CreateComment публикует комментарий к отзыву.
func (s *Service) CreateComment(ctx context.Context, actor *models.Actor, titleID, reviewID int64,
	text string) (*models.Comment, error) {
	const op = "services.reviews.CreateComment"
	if actor == nil {
		return nil, fmt.Errorf("%s: %w", op, svcerr.ErrForbidden)
	}
	if _, err := s.repo.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	comment, err := s.repo.CreateComment(ctx, models.Comment{ReviewID: reviewID, AuthorID: actor.UserID, Text: text})
	if err != nil {
		if errors.Is(err, repository.ErrReference) {
			return nil, fmt.Errorf("%s: %w", op, svcerr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return comment, nil
}

// UpdateComment меняет текст комментария.
func (s *Service) UpdateComment(ctx context.Context, actor *models.Actor, titleID, reviewID, commentID int64,
	text *string) (*models.Comment, error) {
	const op = "services.reviews.UpdateComment"
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !actor.CanModify(comment.AuthorID) {
		return nil, fmt.Errorf("%s: %w", op, svcerr.ErrForbidden)
	}
	if text != nil {
		comment.Text = *text
	}
	if err = s.repo.UpdateComment(ctx, *comment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return comment, nil
}

// DeleteComment удаляет комментарий.
func (s *Service) DeleteComment(ctx context.Context, actor *models.Actor, titleID, reviewID, commentID int64) error {
	const op = "services.reviews.DeleteComment"
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !actor.CanModify(comment.AuthorID) {
		return fmt.Errorf("%s: %w", op, svcerr.ErrForbidden)
	}
	if err = s.repo.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("%s: %w", op, notFound(err))
	}
	return nil
}

func (s *Service) checkTitle(ctx context.Context, titleID int64) error {
	if _, err := s.repo.GetTitleRecord(ctx, titleID); err != nil {
		return notFound(err)
	}
	return nil
}

func checkScore(score int) error {
	if score < models.MinScore || score > models.MaxScore {
		return svcerr.NewValidationError("score",
			fmt.Sprintf("Score must be between %d and %d.", models.MinScore, models.MaxScore))
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return svcerr.ErrNotFound
	}
	return err
}
