// Package titles содержит бизнес-логику работы с произведениями и кеширование их карточек.
package titles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/yamdb/internal/cache"
	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services/svcerr"
	"github.com/magabrotheeeer/yamdb/internal/storage/repository"
)

// Repository определяет методы для работы с произведениями в хранилище.
type Repository interface {
	ListTitles(ctx context.Context, filter models.TitleFilter, page models.Page) ([]models.Title, int, error)
	GetTitle(ctx context.Context, id int64) (*models.Title, error)
	GetTitleRecord(ctx context.Context, id int64) (*models.TitleRecord, error)
	CreateTitle(ctx context.Context, rec models.TitleRecord, genreIDs []int64) (int64, error)
	UpdateTitle(ctx context.Context, rec models.TitleRecord, genreIDs []int64) error
	DeleteTitle(ctx context.Context, id int64) error
	CatalogBySlugs(ctx context.Context, kind models.CatalogKind, slugs []string) ([]models.CatalogItem, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значения из кеша по ключам.
	Invalidate(ctx context.Context, keys ...string) error
}

// Service реализует бизнес-логику работы с произведениями, включая кеширование.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

// List возвращает страницу произведений по фильтру.
func (s *Service) List(ctx context.Context, filter models.TitleFilter, page models.Page) (models.List[models.Title], error) {
	const op = "services.titles.List"
	items, total, err := s.repo.ListTitles(ctx, filter, page)
	if err != nil {
		return models.List[models.Title]{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewList(items, total), nil
}

// Get возвращает карточку произведения, используя кеш или репозиторий.
func (s *Service) Get(ctx context.Context, id int64) (*models.Title, error) {
	const op = "services.titles.Get"
	key := cache.TitleKey(id)

	var cached models.Title
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	title, err := s.repo.GetTitle(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, svcerr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.cache.Set(ctx, key, title, s.ttl); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", key), sl.Err(err))
	}
	return title, nil
}

// Create создаёт произведение. Категория обязательна, список жанров не может быть пустым.
func (s *Service) Create(ctx context.Context, in models.TitleInput) (*models.Title, error) {
	const op = "services.titles.Create"

	verr := &svcerr.ValidationError{}
	s.checkYear(verr, in.Year)
	rec := models.TitleRecord{Name: in.Name, Year: in.Year, Description: in.Description}
	if in.Category == "" {
		verr.Add("category", "This field is required.")
	} else if err := s.resolveCategory(ctx, verr, in.Category, &rec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	genreIDs, err := s.resolveGenres(ctx, verr, in.Genres)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = verr.OrNil(); err != nil {
		return nil, err
	}

	id, err := s.repo.CreateTitle(ctx, rec, genreIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created new title", slog.Int64("id", id))

	title, err := s.repo.GetTitle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return title, nil
}

// Update частично обновляет произведение и сбрасывает его карточку в кеше.
func (s *Service) Update(ctx context.Context, id int64, patch models.TitlePatch) (*models.Title, error) {
	const op = "services.titles.Update"

	rec, err := s.repo.GetTitleRecord(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, svcerr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	verr := &svcerr.ValidationError{}
	if patch.Name != nil {
		rec.Name = *patch.Name
	}
	if patch.Year != nil {
		s.checkYear(verr, *patch.Year)
		rec.Year = *patch.Year
	}
	if patch.Description != nil {
		rec.Description = *patch.Description
	}
	if patch.Category != nil {
		if err = s.resolveCategory(ctx, verr, *patch.Category, rec); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	var genreIDs []int64
	if patch.Genres != nil {
		if genreIDs, err = s.resolveGenres(ctx, verr, *patch.Genres); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if err = verr.OrNil(); err != nil {
		return nil, err
	}

	if err = s.repo.UpdateTitle(ctx, *rec, genreIDs); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, svcerr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.Invalidate(ctx, id)

	title, err := s.repo.GetTitle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return title, nil
}

// Delete удаляет произведение вместе с отзывами.
func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "services.titles.Delete"
	if err := s.repo.DeleteTitle(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, svcerr.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.Invalidate(ctx, id)
	s.log.Info("title deleted", slog.Int64("id", id))
	return nil
}

// Invalidate сбрасывает кешированную карточку, например после изменения отзывов.
func (s *Service) Invalidate(ctx context.Context, id int64) {
	key := cache.TitleKey(id)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", key), sl.Err(err))
	}
}

func (s *Service) checkYear(verr *svcerr.ValidationError, year int) {
	switch {
	case year > s.now().Year():
		verr.Add("year", "Year cannot be greater than the current year.")
	case year < models.MinYear:
		verr.Add("year", fmt.Sprintf("Ensure this value is greater than or equal to %d.", models.MinYear))
	}
}

func (s *Service) resolveCategory(ctx context.Context, verr *svcerr.ValidationError,
	slug string, rec *models.TitleRecord) error {
	found, err := s.repo.CatalogBySlugs(ctx, models.KindCategory, []string{slug})
	if err != nil {
		return err
	}
	if len(found) == 0 {
		verr.Add("category", fmt.Sprintf("Object with slug=%s does not exist.", slug))
		return nil
	}
	rec.CategoryID = &found[0].ID
	return nil
}

func (s *Service) resolveGenres(ctx context.Context, verr *svcerr.ValidationError, slugs []string) ([]int64, error) {
	if len(slugs) == 0 {
		verr.Add("genre", "The genre list cannot be empty.")
		return nil, nil
	}
	found, err := s.repo.CatalogBySlugs(ctx, models.KindGenre, slugs)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]int64, len(found))
	for _, g := range found {
		bySlug[g.Slug] = g.ID
	}
	ids := make([]int64, 0, len(slugs))
	for _, slug := range slugs {
		id, ok := bySlug[slug]
		if !ok {
			verr.Add("genre", fmt.Sprintf("Object with slug=%s does not exist.", slug))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
