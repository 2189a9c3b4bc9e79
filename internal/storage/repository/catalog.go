package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

func catalogTable(kind models.CatalogKind) (string, error) {
	switch kind {
	case models.KindCategory:
		return "categories", nil
	case models.KindGenre:
		return "genres", nil
	}
	return "", fmt.Errorf("unknown catalog kind %q", kind)
}

// ListCatalog возвращает страницу категорий или жанров, упорядоченных по имени.
// Пустой search не фильтрует.
func (s *Storage) ListCatalog(ctx context.Context, kind models.CatalogKind, search string,
	page models.Page) ([]models.CatalogItem, int, error) {
	const op = "storage.ListCatalog"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}
	table, err := catalogTable(kind)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	where := ` WHERE $1 = '' OR name ILIKE '%' || $1 || '%'`
	var total int
	if err = s.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM `+table+where, search); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	items := []models.CatalogItem{}
	query := `SELECT id, name, slug FROM ` + table + where + ` ORDER BY name, id LIMIT $2 OFFSET $3`
	if err = s.DB.SelectContext(ctx, &items, query, search, page.Limit, page.Offset); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return items, total, nil
}

// CreateCatalogItem добавляет категорию или жанр.
func (s *Storage) CreateCatalogItem(ctx context.Context, kind models.CatalogKind,
	item models.CatalogItem) (models.CatalogItem, error) {
	const op = "storage.CreateCatalogItem"
	if err := checkCtx(ctx, op); err != nil {
		return models.CatalogItem{}, err
	}
	table, err := catalogTable(kind)
	if err != nil {
		return models.CatalogItem{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO ` + table + ` (name, slug) VALUES ($1, $2) RETURNING id`
	if err = s.DB.QueryRowxContext(ctx, query, item.Name, item.Slug).Scan(&item.ID); err != nil {
		return models.CatalogItem{}, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return item, nil
}

// DeleteCatalogItem удаляет запись справочника по слагу и возвращает id произведений,
// которые на неё ссылались. Ссылки читаются из снимка до удаления.
func (s *Storage) DeleteCatalogItem(ctx context.Context, kind models.CatalogKind, slug string) ([]int64, error) {
	const op = "storage.DeleteCatalogItem"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var query string
	switch kind {
	case models.KindCategory:
		query = `WITH deleted AS (DELETE FROM categories WHERE slug = $1 RETURNING id)
			SELECT t.id AS title_id FROM deleted d LEFT JOIN titles t ON t.category_id = d.id`
	case models.KindGenre:
		query = `WITH deleted AS (DELETE FROM genres WHERE slug = $1 RETURNING id)
			SELECT tg.title_id FROM deleted d LEFT JOIN title_genres tg ON tg.genre_id = d.id`
	default:
		_, err := catalogTable(kind)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var refs []affectedTitle
	if err := s.DB.SelectContext(ctx, &refs, query, slug); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ids, err := affectedTitleIDs(refs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

// CatalogBySlugs возвращает записи справочника с указанными слагами.
// Отсутствующие слаги просто не попадают в результат.
func (s *Storage) CatalogBySlugs(ctx context.Context, kind models.CatalogKind,
	slugs []string) ([]models.CatalogItem, error) {
	const op = "storage.CatalogBySlugs"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	items := []models.CatalogItem{}
	if len(slugs) == 0 {
		return items, nil
	}
	table, err := catalogTable(kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := sqlx.In(`SELECT id, name, slug FROM `+table+` WHERE slug IN (?) ORDER BY name`, slugs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.DB.SelectContext(ctx, &items, s.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}
