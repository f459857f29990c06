package domain

// Role роль пользователя в сессии
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

// Caller пользователь, от имени которого выполняется запрос.
// Нулевое значение означает отсутствие сессии.
type Caller struct {
	ID    string
	Role  Role
	Email string
}

// Authenticated сообщает, есть ли у запроса сессия
func (c Caller) Authenticated() bool {
	return c.ID != ""
}

// Is проверяет роль пользователя с активной сессией
func (c Caller) Is(role Role) bool {
	return c.Authenticated() && c.Role == role
}

// IsSelf проверяет, что пользователь с ролью role обращается к собственным данным
func (c Caller) IsSelf(userID string, role Role) bool {
	return c.Is(role) && c.ID == userID
}
