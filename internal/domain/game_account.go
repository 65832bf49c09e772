package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxIngameNameLength ограничивает длину игрового имени
const MaxIngameNameLength = 100

// GameAccount представляет игровой аккаунт пользователя в конкретной игре
type GameAccount struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	GameID     uuid.UUID `json:"game_id"`
	IngameName string    `json:"ingame_name"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// UsableBy проверяет, что аккаунт активен и принадлежит пользователю
func (g *GameAccount) UsableBy(userID uuid.UUID) bool {
	return g.Active && g.UserID == userID
}

// NormalizeIngameName обрезает пробелы и валидирует игровое имя
func NormalizeIngameName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", Validation("ingame_name", "in-game name can't be empty")
	}
	if len([]rune(name)) > MaxIngameNameLength {
		return "", Validation("ingame_name", "in-game name is too long")
	}
	return name, nil
}
