// Package catalog управляет справочниками категорий и жанров.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services/svcerr"
	"github.com/magabrotheeeer/yamdb/internal/storage/repository"
)

// Repository хранилище справочников.
type Repository interface {
	ListCatalog(ctx context.Context, kind models.CatalogKind, search string, page models.Page) ([]models.CatalogItem, int, error)
	CreateCatalogItem(ctx context.Context, kind models.CatalogKind, item models.CatalogItem) (models.CatalogItem, error)
	DeleteCatalogItem(ctx context.Context, kind models.CatalogKind, slug string) ([]int64, error)
}

// TitleInvalidator сбрасывает кешированные карточки произведений.
type TitleInvalidator interface {
	Invalidate(ctx context.Context, titleID int64)
}

// Service операции над одним справочником.
type Service struct {
	kind   models.CatalogKind
	repo   Repository
	titles TitleInvalidator
	log    *slog.Logger
}

// New создает сервис для справочника kind.
func New(kind models.CatalogKind, repo Repository, titles TitleInvalidator, log *slog.Logger) *Service {
	return &Service{kind: kind, repo: repo, titles: titles, log: log}
}

// Kind тип справочника.
func (s *Service) Kind() models.CatalogKind {
	return s.kind
}

// List возвращает страницу записей, search фильтрует по имени.
func (s *Service) List(ctx context.Context, search string, page models.Page) (models.List[models.CatalogItem], error) {
	const op = "services.catalog.List"
	items, total, err := s.repo.ListCatalog(ctx, s.kind, search, page)
	if err != nil {
		return models.List[models.CatalogItem]{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewList(items, total), nil
}

// Create добавляет запись. Занятый слаг возвращается как ошибка поля slug.
func (s *Service) Create(ctx context.Context, item models.CatalogItem) (models.CatalogItem, error) {
	const op = "services.catalog.Create"
	created, err := s.repo.CreateCatalogItem(ctx, s.kind, item)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return models.CatalogItem{}, svcerr.NewValidationError("slug",
				fmt.Sprintf("%s with this slug already exists.", s.kind))
		}
		return models.CatalogItem{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("catalog item created", slog.String("kind", string(s.kind)), slog.String("slug", created.Slug))
	return created, nil
}

// Delete удаляет запись по слагу и сбрасывает карточки произведений, которые на неё ссылались.
func (s *Service) Delete(ctx context.Context, slug string) error {
	const op = "services.catalog.Delete"
	titleIDs, err := s.repo.DeleteCatalogItem(ctx, s.kind, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, svcerr.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, id := range titleIDs {
		s.titles.Invalidate(ctx, id)
	}
	s.log.Info("catalog item deleted", slog.String("kind", string(s.kind)), slog.String("slug", slug),
		slog.Int("titles", len(titleIDs)))
	return nil
}
