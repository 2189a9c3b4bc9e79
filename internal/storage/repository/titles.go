package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

type titleRow struct {
	ID           int64   `db:"id"`
	Name         string  `db:"name"`
	Year         int     `db:"year"`
	Description  string  `db:"description"`
	Rating       *int    `db:"rating"`
	CategoryID   *int64  `db:"category_id"`
	CategoryName *string `db:"category_name"`
	CategorySlug *string `db:"category_slug"`
}

func (r titleRow) toModel() models.Title {
	t := models.Title{
		ID:          r.ID,
		Name:        r.Name,
		Year:        r.Year,
		Rating:      r.Rating,
		Description: r.Description,
		Genres:      []models.CatalogItem{},
	}
	if r.CategoryID != nil && r.CategoryName != nil && r.CategorySlug != nil {
		t.Category = &models.CatalogItem{ID: *r.CategoryID, Name: *r.CategoryName, Slug: *r.CategorySlug}
	}
	return t
}

// Рейтинг усекается до целого так же, как целочисленное поле ответа.
const titleSelect = `SELECT t.id, t.name, t.year, t.description, t.category_id,
		c.name AS category_name, c.slug AS category_slug,
		(SELECT FLOOR(AVG(r.score))::int FROM reviews r WHERE r.title_id = t.id) AS rating
	FROM titles t
	LEFT JOIN categories c ON c.id = t.category_id`

func titleWhere(filter models.TitleFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Category != "" {
		add("LOWER(c.slug) = LOWER($%d)", filter.Category)
	}
	if filter.Genre != "" {
		add(`EXISTS (SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = t.id AND LOWER(g.slug) = LOWER($%d))`, filter.Genre)
	}
	if filter.Name != "" {
		add("t.name ILIKE '%%' || $%d || '%%'", filter.Name)
	}
	if filter.Year != nil {
		add("t.year = $%d", *filter.Year)
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(t.name ILIKE '%%' || $%[1]d || '%%'
			OR t.year::text ILIKE '%%' || $%[1]d || '%%'
			OR c.slug ILIKE '%%' || $%[1]d || '%%'
			OR EXISTS (SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id
				WHERE tg.title_id = t.id AND g.slug ILIKE '%%' || $%[1]d || '%%'))`, n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListTitles возвращает страницу произведений с категорией, жанрами и рейтингом.
func (s *Storage) ListTitles(ctx context.Context, filter models.TitleFilter,
	page models.Page) ([]models.Title, int, error) {
	const op = "storage.ListTitles"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	where, args := titleWhere(filter)
	var total int
	countQuery := `SELECT COUNT(*) FROM titles t LEFT JOIN categories c ON c.id = t.category_id` + where
	if err := s.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	n := len(args)
	query := titleSelect + where + fmt.Sprintf(" ORDER BY t.name, t.year, t.id LIMIT $%d OFFSET $%d", n+1, n+2)
	var rows []titleRow
	if err := s.DB.SelectContext(ctx, &rows, query, append(args, page.Limit, page.Offset)...); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	titles := make([]models.Title, 0, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		titles = append(titles, r.toModel())
		ids = append(ids, r.ID)
	}
	genres, err := s.genresByTitle(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	for i := range titles {
		if g, ok := genres[titles[i].ID]; ok {
			titles[i].Genres = g
		}
	}
	return titles, total, nil
}

// GetTitle возвращает произведение по ID.
func (s *Storage) GetTitle(ctx context.Context, id int64) (*models.Title, error) {
	const op = "storage.GetTitle"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var row titleRow
	if err := s.DB.GetContext(ctx, &row, titleSelect+` WHERE t.id = $1`, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	title := row.toModel()
	genres, err := s.genresByTitle(ctx, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if g, ok := genres[id]; ok {
		title.Genres = g
	}
	return &title, nil
}

// GetTitleRecord возвращает строку titles без связанных данных.
func (s *Storage) GetTitleRecord(ctx context.Context, id int64) (*models.TitleRecord, error) {
	const op = "storage.GetTitleRecord"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var rec models.TitleRecord
	err := s.DB.QueryRowxContext(ctx,
		`SELECT id, name, year, description, category_id FROM titles WHERE id = $1`, id).
		Scan(&rec.ID, &rec.Name, &rec.Year, &rec.Description, &rec.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &rec, nil
}

func (s *Storage) genresByTitle(ctx context.Context, titleIDs []int64) (map[int64][]models.CatalogItem, error) {
	result := make(map[int64][]models.CatalogItem, len(titleIDs))
	if len(titleIDs) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT tg.title_id, g.id, g.name, g.slug
		FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id IN (?)
		ORDER BY g.name`, titleIDs)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryxContext(ctx, s.DB.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var titleID int64
		var g models.CatalogItem
		if err = rows.Scan(&titleID, &g.ID, &g.Name, &g.Slug); err != nil {
			return nil, err
		}
		result[titleID] = append(result[titleID], g)
	}
	return result, rows.Err()
}

// CreateTitle сохраняет произведение вместе с привязкой жанров.
func (s *Storage) CreateTitle(ctx context.Context, rec models.TitleRecord, genreIDs []int64) (int64, error) {
	const op = "storage.CreateTitle"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var id int64
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO titles (name, year, description, category_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		rec.Name, rec.Year, rec.Description, rec.CategoryID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err = setTitleGenres(ctx, tx, id, genreIDs); err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateTitle перезаписывает произведение. Если genreIDs равен nil, жанры не меняются.
func (s *Storage) UpdateTitle(ctx context.Context, rec models.TitleRecord, genreIDs []int64) error {
	const op = "storage.UpdateTitle"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE titles SET name = $1, year = $2, description = $3, category_id = $4 WHERE id = $5`,
		rec.Name, rec.Year, rec.Description, rec.CategoryID, rec.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err = rowsAffected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if genreIDs != nil {
		if _, err = tx.ExecContext(ctx, `DELETE FROM title_genres WHERE title_id = $1`, rec.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err = setTitleGenres(ctx, tx, rec.ID, genreIDs); err != nil {
			return fmt.Errorf("%s: %w", op, mapError(err))
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func setTitleGenres(ctx context.Context, tx *sqlx.Tx, titleID int64, genreIDs []int64) error {
	for _, genreID := range genreIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO title_genres (title_id, genre_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			titleID, genreID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTitle удаляет произведение; отзывы и комментарии удаляются каскадно.
func (s *Storage) DeleteTitle(ctx context.Context, id int64) error {
	const op = "storage.DeleteTitle"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = rowsAffected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
