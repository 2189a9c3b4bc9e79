package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/yamdb/internal/migrations"
	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/storage/storagetest"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(storagetest.StartPostgres(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, migrations.Run(s.DB.DB, storagetest.MigrationsPath(t)))
	return s
}

// testDataFactory содержит методы для создания тестовых данных
type testDataFactory struct {
	t *testing.T
	s *Storage
}

func (f testDataFactory) user(username string) int64 {
	id, err := f.s.CreateUser(context.Background(), models.User{Username: username, Email: username + "@example.com"})
	require.NoError(f.t, err)
	return id
}

func (f testDataFactory) catalog(kind models.CatalogKind, name, slug string) models.CatalogItem {
	item, err := f.s.CreateCatalogItem(context.Background(), kind, models.CatalogItem{Name: name, Slug: slug})
	require.NoError(f.t, err)
	return item
}

func (f testDataFactory) title(name string, year int, categoryID *int64, genreIDs ...int64) int64 {
	id, err := f.s.CreateTitle(context.Background(),
		models.TitleRecord{Name: name, Year: year, CategoryID: categoryID}, genreIDs)
	require.NoError(f.t, err)
	return id
}

func TestStorage_Users(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := testDataFactory{t: t, s: s}

	id := f.user("alice")

	t.Run("get by username and email", func(t *testing.T) {
		u, err := s.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, models.RoleUser, u.Role)
		assert.Nil(t, u.ConfirmationCodeHash)

		u, err = s.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
	})

	t.Run("duplicate username reports constraint", func(t *testing.T) {
		_, err := s.CreateUser(ctx, models.User{Username: "alice", Email: "other@example.com"})
		require.ErrorIs(t, err, ErrAlreadyExists)
		assert.Equal(t, ConstraintUsername, ConstraintName(err))
	})

	t.Run("duplicate email reports constraint", func(t *testing.T) {
		_, err := s.CreateUser(ctx, models.User{Username: "alice2", Email: "alice@example.com"})
		require.ErrorIs(t, err, ErrAlreadyExists)
		assert.Equal(t, ConstraintEmail, ConstraintName(err))
	})

	t.Run("confirmation code set and cleared", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		require.NoError(t, s.SetConfirmationCode(ctx, id, "hash", expiry))

		u, err := s.GetUserByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, u.ConfirmationCodeHash)
		assert.Equal(t, "hash", *u.ConfirmationCodeHash)
		require.NotNil(t, u.ConfirmationCodeExpiry)
		assert.True(t, expiry.Equal(*u.ConfirmationCodeExpiry))

		require.ErrorIs(t, s.ClearConfirmationCode(ctx, id, "other"), ErrNotFound)
		require.NoError(t, s.ClearConfirmationCode(ctx, id, "hash"))
		u, err = s.GetUserByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, u.ConfirmationCodeHash)
		assert.Nil(t, u.ConfirmationCodeExpiry)

		// Второе погашение того же кода не проходит.
		require.ErrorIs(t, s.ClearConfirmationCode(ctx, id, "hash"), ErrNotFound)
	})

	t.Run("list with search", func(t *testing.T) {
		f.user("bob")
		users, total, err := s.ListUsers(ctx, "", models.NewPage(10, 0))
		require.NoError(t, err)
		assert.Equal(t, 3, total) // admin из миграции
		require.Len(t, users, 3)
		assert.Equal(t, "admin", users[0].Username)

		users, total, err = s.ListUsers(ctx, "BO", models.NewPage(10, 0))
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "bob", users[0].Username)
	})

	t.Run("update and delete", func(t *testing.T) {
		u, err := s.GetUserByUsername(ctx, "bob")
		require.NoError(t, err)
		u.Bio = "reader"
		u.Role = models.RoleModerator
		require.NoError(t, s.UpdateUser(ctx, *u))

		u, err = s.GetUserByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "reader", u.Bio)
		assert.Equal(t, models.RoleModerator, u.Role)

		titleIDs, err := s.DeleteUserByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, titleIDs)
		_, err = s.GetUserByUsername(ctx, "bob")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.DeleteUserByUsername(ctx, "bob")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_Catalog(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := testDataFactory{t: t, s: s}

	drama := f.catalog(models.KindGenre, "Drama", "drama")
	f.catalog(models.KindGenre, "Comedy", "comedy")
	books := f.catalog(models.KindCategory, "Books", "books")
	solaris := f.title("Solaris", 1961, &books.ID, drama.ID)

	items, total, err := s.ListCatalog(ctx, models.KindGenre, "", models.NewPage(10, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "Comedy", items[0].Name)

	items, total, err = s.ListCatalog(ctx, models.KindGenre, "dra", models.NewPage(10, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "drama", items[0].Slug)

	_, err = s.CreateCatalogItem(ctx, models.KindGenre, models.CatalogItem{Name: "Drama 2", Slug: "drama"})
	require.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, ConstraintGenreSlug, ConstraintName(err))

	found, err := s.CatalogBySlugs(ctx, models.KindGenre, []string{"drama", "missing", "comedy"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	titleIDs, err := s.DeleteCatalogItem(ctx, models.KindCategory, "books")
	require.NoError(t, err)
	assert.Equal(t, []int64{solaris}, titleIDs)
	_, err = s.DeleteCatalogItem(ctx, models.KindCategory, "books")
	assert.ErrorIs(t, err, ErrNotFound)

	titleIDs, err = s.DeleteCatalogItem(ctx, models.KindGenre, "drama")
	require.NoError(t, err)
	assert.Equal(t, []int64{solaris}, titleIDs)
	titleIDs, err = s.DeleteCatalogItem(ctx, models.KindGenre, "comedy")
	require.NoError(t, err)
	assert.Empty(t, titleIDs)

	rec, err := s.GetTitleRecord(ctx, solaris)
	require.NoError(t, err)
	assert.Nil(t, rec.CategoryID)

	_, _, err = s.ListCatalog(ctx, models.CatalogKind("tag"), "", models.NewPage(10, 0))
	assert.Error(t, err)
}

func TestStorage_TitlesAndReviews(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := testDataFactory{t: t, s: s}

	books := f.catalog(models.KindCategory, "Books", "books")
	drama := f.catalog(models.KindGenre, "Drama", "drama")
	scifi := f.catalog(models.KindGenre, "Sci-Fi", "sci-fi")

	solaris := f.title("Solaris", 1961, &books.ID, drama.ID, scifi.ID)
	f.title("Anna Karenina", 1877, nil, drama.ID)

	alice := f.user("alice")
	bob := f.user("bob")

	t.Run("title without reviews has no rating", func(t *testing.T) {
		title, err := s.GetTitle(ctx, solaris)
		require.NoError(t, err)
		assert.Nil(t, title.Rating)
		require.NotNil(t, title.Category)
		assert.Equal(t, "books", title.Category.Slug)
		assert.Len(t, title.Genres, 2)
	})

	t.Run("rating truncates average", func(t *testing.T) {
		_, err := s.CreateReview(ctx, models.Review{TitleID: solaris, AuthorID: alice, Text: "great", Score: 10})
		require.NoError(t, err)
		r, err := s.CreateReview(ctx, models.Review{TitleID: solaris, AuthorID: bob, Text: "fine", Score: 7})
		require.NoError(t, err)
		assert.Equal(t, "bob", r.Author)

		title, err := s.GetTitle(ctx, solaris)
		require.NoError(t, err)
		require.NotNil(t, title.Rating)
		assert.Equal(t, 8, *title.Rating)
	})

	t.Run("second review by same author", func(t *testing.T) {
		_, err := s.CreateReview(ctx, models.Review{TitleID: solaris, AuthorID: alice, Text: "again", Score: 5})
		require.ErrorIs(t, err, ErrAlreadyExists)
		assert.Equal(t, ConstraintReview, ConstraintName(err))
	})

	t.Run("score out of range", func(t *testing.T) {
		other := f.user("carol")
		_, err := s.CreateReview(ctx, models.Review{TitleID: solaris, AuthorID: other, Text: "x", Score: 11})
		assert.ErrorIs(t, err, ErrConstraint)
	})

	t.Run("filters", func(t *testing.T) {
		year := 1961
		tests := []struct {
			name   string
			filter models.TitleFilter
			want   int
		}{
			{name: "no filter", filter: models.TitleFilter{}, want: 2},
			{name: "genre", filter: models.TitleFilter{Genre: "drama"}, want: 2},
			{name: "category", filter: models.TitleFilter{Category: "books"}, want: 1},
			{name: "name substring", filter: models.TitleFilter{Name: "KAREN"}, want: 1},
			{name: "year", filter: models.TitleFilter{Year: &year}, want: 1},
			{name: "genre ignores case", filter: models.TitleFilter{Genre: "DRAMA"}, want: 2},
			{name: "search by genre slug", filter: models.TitleFilter{Search: "sci"}, want: 1},
			{name: "search by year", filter: models.TitleFilter{Search: "1877"}, want: 1},
			{name: "combined", filter: models.TitleFilter{Genre: "sci-fi", Category: "missing"}, want: 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				titles, total, err := s.ListTitles(ctx, tt.filter, models.NewPage(10, 0))
				require.NoError(t, err)
				assert.Equal(t, tt.want, total)
				assert.Len(t, titles, tt.want)
			})
		}
	})

	t.Run("update replaces genres", func(t *testing.T) {
		rec, err := s.GetTitleRecord(ctx, solaris)
		require.NoError(t, err)
		rec.Description = "ocean"
		require.NoError(t, s.UpdateTitle(ctx, *rec, []int64{scifi.ID}))

		title, err := s.GetTitle(ctx, solaris)
		require.NoError(t, err)
		assert.Equal(t, "ocean", title.Description)
		require.Len(t, title.Genres, 1)
		assert.Equal(t, "sci-fi", title.Genres[0].Slug)
	})

	t.Run("comments scoped to review", func(t *testing.T) {
		reviews, total, err := s.ListReviews(ctx, solaris, models.NewPage(10, 0))
		require.NoError(t, err)
		require.Equal(t, 2, total)
		review := reviews[0]

		c, err := s.CreateComment(ctx, models.Comment{ReviewID: review.ID, AuthorID: bob, Text: "agree"})
		require.NoError(t, err)
		assert.Equal(t, "bob", c.Author)

		_, err = s.GetComment(ctx, reviews[1].ID, c.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.GetReview(ctx, solaris+100, review.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deleting reviewer reports reviewed titles", func(t *testing.T) {
		titleIDs, err := s.DeleteUserByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, []int64{solaris}, titleIDs)

		title, err := s.GetTitle(ctx, solaris)
		require.NoError(t, err)
		require.NotNil(t, title.Rating)
		assert.Equal(t, 10, *title.Rating)
	})

	t.Run("delete title cascades", func(t *testing.T) {
		require.NoError(t, s.DeleteTitle(ctx, solaris))
		_, total, err := s.ListReviews(ctx, solaris, models.NewPage(10, 0))
		require.NoError(t, err)
		assert.Zero(t, total)
		_, err = s.GetTitle(ctx, solaris)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestStorage_ContextCancelled(t *testing.T) {
	s := &Storage{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetUserByUsername(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)
	err = s.DeleteTitle(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
