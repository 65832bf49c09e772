package domain

import "github.com/google/uuid"

// Role определяет глобальную роль пользователя
type Role string

// Возможные роли
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User представляет аутентифицированного пользователя
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
}

// Actor описывает действующего пользователя в рамках одного запроса.
// Роль и набор команд, где пользователь лидер, вычисляются один раз при разборе запроса.
type Actor struct {
	UserID       uuid.UUID
	Role         Role
	LeadingTeams map[uuid.UUID]struct{}
}

// NewActor создает Actor по пользователю и списку команд, которыми он руководит
func NewActor(user *User, leading []uuid.UUID) *Actor {
	teams := make(map[uuid.UUID]struct{}, len(leading))
	for _, id := range leading {
		teams[id] = struct{}{}
	}
	return &Actor{
		UserID:       user.ID,
		Role:         user.Role,
		LeadingTeams: teams,
	}
}

// Leads возвращает true если пользователь был лидером команды на момент разбора запроса
func (a *Actor) Leads(teamID uuid.UUID) bool {
	_, ok := a.LeadingTeams[teamID]
	return ok
}

// IsAdmin возвращает true для администраторов
func (a *Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
