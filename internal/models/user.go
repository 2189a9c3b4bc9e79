// Package models содержит доменные сущности платформы отзывов:
// пользователей, категории, жанры, произведения, отзывы и комментарии.
package models

import "time"

// Role роль пользователя.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid сообщает, относится ли роль к известным.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User представляет учётную запись пользователя.
type User struct {
	ID                     int64      `db:"id" json:"-"`
	Username               string     `db:"username" json:"username"`
	Email                  string     `db:"email" json:"email"`
	FirstName              string     `db:"first_name" json:"first_name"`
	LastName               string     `db:"last_name" json:"last_name"`
	Bio                    string     `db:"bio" json:"bio"`
	Role                   Role       `db:"role" json:"role"`
	IsSuperuser            bool       `db:"is_superuser" json:"-"`
	ConfirmationCodeHash   *string    `db:"confirmation_code_hash" json:"-"`
	ConfirmationCodeExpiry *time.Time `db:"confirmation_code_expiry" json:"-"`
}

// EffectiveRole возвращает роль с учётом флага суперпользователя.
func (u *User) EffectiveRole() Role {
	if u.IsSuperuser {
		return RoleAdmin
	}
	return u.Role
}

// UserPatch частичное обновление пользователя. Nil означает "не менять".
type UserPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *Role
}

// Apply переносит заданные поля патча в пользователя.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}

// ConfirmationMail письмо с кодом подтверждения.
type ConfirmationMail struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Code     string `json:"code"`
}
