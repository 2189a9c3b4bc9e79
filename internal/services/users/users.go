// Package users реализует управление учётными записями администратором
// и редактирование собственного профиля.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services/svcerr"
	"github.com/magabrotheeeer/yamdb/internal/storage/repository"
)

// Repository хранилище пользователей.
type Repository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, search string, page models.Page) ([]models.User, int, error)
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUserByUsername(ctx context.Context, username string) ([]int64, error)
}

// RatingInvalidator сбрасывает кешированную карточку произведения при изменении оценок.
type RatingInvalidator interface {
	Invalidate(ctx context.Context, titleID int64)
}

// Service бизнес-логика работы с пользователями.
type Service struct {
	repo    Repository
	ratings RatingInvalidator
	log     *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, ratings RatingInvalidator, log *slog.Logger) *Service {
	return &Service{repo: repo, ratings: ratings, log: log}
}

// List возвращает страницу пользователей.
func (s *Service) List(ctx context.Context, search string, page models.Page) (models.List[models.User], error) {
	const op = "services.users.List"
	items, total, err := s.repo.ListUsers(ctx, search, page)
	if err != nil {
		return models.List[models.User]{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewList(items, total), nil
}

// Create заводит пользователя от имени администратора.
func (s *Service) Create(ctx context.Context, user models.User) (*models.User, error) {
	const op = "services.users.Create"
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, mapError(op, err)
	}
	user.ID = id
	s.log.Info("user created", slog.String("username", user.Username), slog.String("role", string(user.Role)))
	return &user, nil
}

// Get возвращает пользователя по username.
func (s *Service) Get(ctx context.Context, username string) (*models.User, error) {
	const op = "services.users.Get"
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, mapError(op, err)
	}
	return user, nil
}

// Update частично обновляет пользователя по username, включая роль.
func (s *Service) Update(ctx context.Context, username string, patch models.UserPatch) (*models.User, error) {
	const op = "services.users.Update"
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, mapError(op, err)
	}
	return s.apply(ctx, op, user, patch)
}

// Delete удаляет пользователя по username. Вместе с ним удаляются его отзывы,
// поэтому рейтинги затронутых произведений сбрасываются.
func (s *Service) Delete(ctx context.Context, username string) error {
	const op = "services.users.Delete"
	titleIDs, err := s.repo.DeleteUserByUsername(ctx, username)
	if err != nil {
		return mapError(op, err)
	}
	for _, id := range titleIDs {
		s.ratings.Invalidate(ctx, id)
	}
	s.log.Info("user deleted", slog.String("username", username))
	return nil
}

// Me возвращает профиль пользователя запроса.
func (s *Service) Me(ctx context.Context, actor *models.Actor) (*models.User, error) {
	const op = "services.users.Me"
	if actor == nil {
		return nil, fmt.Errorf("%s: %w", op, svcerr.ErrForbidden)
	}
	user, err := s.repo.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, mapError(op, err)
	}
	return user, nil
}

// UpdateMe обновляет собственный профиль. Смена роли игнорируется.
func (s *Service) UpdateMe(ctx context.Context, actor *models.Actor, patch models.UserPatch) (*models.User, error) {
	const op = "services.users.UpdateMe"
	user, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	patch.Role = nil
	return s.apply(ctx, op, user, patch)
}

func (s *Service) apply(ctx context.Context, op string, user *models.User, patch models.UserPatch) (*models.User, error) {
	patch.Apply(user)
	if err := s.repo.UpdateUser(ctx, *user); err != nil {
		return nil, mapError(op, err)
	}
	return user, nil
}

func mapError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, svcerr.ErrNotFound)
	case errors.Is(err, repository.ErrAlreadyExists):
		switch repository.ConstraintName(err) {
		case repository.ConstraintUsername:
			return svcerr.NewValidationError("username", "A user with that username already exists.")
		case repository.ConstraintEmail:
			return svcerr.NewValidationError("email", "A user with that email already exists.")
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
