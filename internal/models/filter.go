package models

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page параметры постраничной выборки.
type Page struct {
	Limit  int
	Offset int
}

// NewPage нормализует limit и offset.
func NewPage(limit, offset int) Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// List страница результатов и общее число записей.
type List[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// NewList не отдаёт null вместо пустого списка.
func NewList[T any](items []T, count int) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Count: count, Results: items}
}
