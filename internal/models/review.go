package models

import "time"

const (
	MinScore = 1
	MaxScore = 10
)

// Review отзыв пользователя на произведение.
type Review struct {
	ID       int64     `db:"id" json:"id"`
	TitleID  int64     `db:"title_id" json:"-"`
	AuthorID int64     `db:"author_id" json:"-"`
	Author   string    `db:"author" json:"author"`
	Text     string    `db:"text" json:"text"`
	Score    int       `db:"score" json:"score"`
	PubDate  time.Time `db:"pub_date" json:"pub_date"`
}

// Comment комментарий к отзыву.
type Comment struct {
	ID       int64     `db:"id" json:"id"`
	ReviewID int64     `db:"review_id" json:"-"`
	AuthorID int64     `db:"author_id" json:"-"`
	Author   string    `db:"author" json:"author"`
	Text     string    `db:"text" json:"text"`
	PubDate  time.Time `db:"pub_date" json:"pub_date"`
}
