package models

// Actor пользователь, от имени которого выполняется запрос.
// Собирается из claims токена, без обращения к базе.
type Actor struct {
	UserID   int64
	Username string
	Role     Role
}

// IsAdmin администратор (или суперпользователь, которому при выдаче токена назначена роль admin).
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// IsModerator модератор.
func (a *Actor) IsModerator() bool {
	return a != nil && a.Role == RoleModerator
}

// CanModify разрешено ли изменять объект автора authorID: автору, модератору и администратору.
func (a *Actor) CanModify(authorID int64) bool {
	if a == nil {
		return false
	}
	return a.IsAdmin() || a.IsModerator() || a.UserID == authorID
}
