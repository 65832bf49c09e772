package domain

import (
	"time"

	"github.com/google/uuid"
)

// InviteStatus представляет статус приглашения
type InviteStatus string

// Возможные статусы приглашения
const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusRejected InviteStatus = "rejected"
)

// Invite представляет приглашение пользователя в команду
type Invite struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	TeamID       uuid.UUID    `json:"team_id"`
	Status       InviteStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	TournamentID uuid.UUID    `json:"tournament_id"`
	TeamName     string       `json:"team_name"`
	Username     string       `json:"username"`
}

// IsPending возвращает true если приглашение еще не обработано
func (i *Invite) IsPending() bool {
	return i.Status == InviteStatusPending
}

// ParseInviteStatus разбирает фильтр статуса; пустая строка означает "все"
func ParseInviteStatus(s string) (InviteStatus, error) {
	switch InviteStatus(s) {
	case "", InviteStatusPending, InviteStatusAccepted, InviteStatusRejected:
		return InviteStatus(s), nil
	default:
		return "", Validation("status", "unknown invite status")
	}
}

// PollSummary агрегат входящих приглашений для уведомлений
type PollSummary struct {
	PendingCount    int        `json:"pending_count"`
	LatestCreatedAt *time.Time `json:"latest_created_at"`
}
