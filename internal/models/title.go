package models

// Границы year задаются типом столбца SMALLINT.
const (
	MinYear = -32768
	MaxYear = 32767
)

// Title произведение. Rating вычисляется по отзывам и равен nil, пока отзывов нет.
type Title struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Year        int           `json:"year"`
	Rating      *int          `json:"rating"`
	Description string        `json:"description"`
	Category    *CatalogItem  `json:"category"`
	Genres      []CatalogItem `json:"genre"`
}

// TitleInput данные для создания произведения; категория и жанры задаются слагами.
type TitleInput struct {
	Name        string
	Year        int
	Description string
	Category    string
	Genres      []string
}

// TitlePatch частичное обновление произведения.
type TitlePatch struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string
	Genres      *[]string
}

// TitleRecord строка таблицы titles.
type TitleRecord struct {
	ID          int64
	Name        string
	Year        int
	Description string
	CategoryID  *int64
}

// TitleFilter фильтры списка произведений. Слаги сравниваются без учёта
// регистра, Name ищется как подстрока, Search сразу по названию, году и слагам.
type TitleFilter struct {
	Category string
	Genre    string
	Name     string
	Year     *int
	Search   string
}
