package models

// CatalogKind тип справочника: категории или жанры.
type CatalogKind string

const (
	KindCategory CatalogKind = "category"
	KindGenre    CatalogKind = "genre"
)

// CatalogItem запись справочника категорий или жанров.
type CatalogItem struct {
	ID   int64  `db:"id" json:"-"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}
