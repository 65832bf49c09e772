package domain

import "github.com/google/uuid"

// Tournament содержит данные турнира, нужные для формирования команд.
// RegistrationOpen вычисляется каталогом турниров, ядро только читает флаг.
type Tournament struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	GameID           uuid.UUID `json:"game_id"`
	TeamSize         int       `json:"team_size"`
	RegistrationOpen bool      `json:"registration_open"`
}
