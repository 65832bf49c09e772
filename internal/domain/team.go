package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TeamStatus представляет статус регистрации команды
type TeamStatus string

// Возможные статусы команды
const (
	TeamStatusInvalid    TeamStatus = "invalid"    // состав неполный
	TeamStatusValid      TeamStatus = "valid"      // состав совпадает с размером команды формата
	TeamStatusRegistered TeamStatus = "registered" // команда подтверждена организатором
)

// LeaderOrder зарезервирован за лидером команды
const LeaderOrder = 0

// MaxTeamNameLength ограничивает длину названия команды
const MaxTeamNameLength = 100

// Team представляет регистрацию команды в турнире
type Team struct {
	ID           uuid.UUID    `json:"id"`
	TournamentID uuid.UUID    `json:"tournament_id"`
	Name         string       `json:"team_name"`
	Status       TeamStatus   `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	Members      []TeamMember `json:"members,omitempty"`
}

// TeamMember представляет участника команды (игровой аккаунт в слоте состава)
type TeamMember struct {
	TeamID        uuid.UUID `json:"team_id"`
	GameAccountID uuid.UUID `json:"game_account_id"`
	UserID        uuid.UUID `json:"user_id"`
	IngameName    string    `json:"ingame_name"`
	IsLeader      bool      `json:"is_leader"`
	Order         int       `json:"order"`
	JoinedAt      time.Time `json:"joined_at"`
}

// Leader возвращает лидера из загруженного состава
func (t *Team) Leader() (*TeamMember, bool) {
	for i := range t.Members {
		if t.Members[i].IsLeader {
			return &t.Members[i], true
		}
	}
	return nil, false
}

// NormalizeTeamName обрезает пробелы и валидирует название команды
func NormalizeTeamName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", Validation("team_name", "team name is required")
	}
	if len([]rune(name)) > MaxTeamNameLength {
		return "", Validation("team_name", "team name is too long")
	}
	return name, nil
}

// StatusForSize вычисляет статус команды по числу участников и размеру команды формата
func StatusForSize(memberCount, teamSize int) TeamStatus {
	if memberCount == teamSize {
		return TeamStatusValid
	}
	return TeamStatusInvalid
}

// NextFollowerOrder возвращает наименьший свободный слот для обычного участника.
// Второе значение false, если свободных слотов в пределах capacity нет.
func NextFollowerOrder(members []TeamMember, capacity int) (int, bool) {
	taken := make(map[int]bool, len(members))
	for _, m := range members {
		taken[m.Order] = true
	}
	for order := LeaderOrder + 1; order < capacity; order++ {
		if !taken[order] {
			return order, true
		}
	}
	return 0, false
}

// CheckRoster проверяет инварианты состава: ровно один лидер в слоте 0,
// уникальные слоты в пределах capacity и не больше capacity участников
func CheckRoster(members []TeamMember, capacity int) error {
	if len(members) == 0 {
		return nil
	}
	if len(members) > capacity {
		return ErrCapacityExceeded
	}

	leaders := 0
	seen := make(map[int]bool, len(members))
	for _, m := range members {
		if m.IsLeader {
			leaders++
		}
		if m.IsLeader != (m.Order == LeaderOrder) {
			return Validation("order", "order 0 is reserved for the leader")
		}
		if m.Order < 0 || m.Order >= capacity {
			return Validation("order", "order must be less than team size")
		}
		if seen[m.Order] {
			return ErrSlotTaken
		}
		seen[m.Order] = true
	}

	switch {
	case leaders == 0:
		return ErrMissingLeader
	case leaders > 1:
		return ErrDuplicateLeader
	}
	return nil
}

// SortMembers упорядочивает состав по слотам
func SortMembers(members []TeamMember) {
	sort.Slice(members, func(i, j int) bool {
		return members[i].Order < members[j].Order
	})
}
