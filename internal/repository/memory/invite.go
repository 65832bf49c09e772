package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
)

// InviteRepository реализует repository.InviteRepository в памяти
type InviteRepository struct {
	s *Store
}

// Create создает приглашение
func (r *InviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.users[invite.UserID]; !ok {
			return domain.NotFound("user")
		}
		if _, ok := st.teams[invite.TeamID]; !ok {
			return domain.NotFound("team")
		}
		if invite.IsPending() {
			for _, other := range st.invites {
				if other.IsPending() && other.UserID == invite.UserID && other.TeamID == invite.TeamID {
					return domain.ErrPendingInviteExists
				}
			}
		}

		now := r.s.now()
		invite.CreatedAt = now
		invite.UpdatedAt = now
		st.invites[invite.ID] = *invite
		return nil
	})
}

// GetByID получает приглашение
func (r *InviteRepository) GetByID(ctx context.Context, inviteID uuid.UUID) (*domain.Invite, error) {
	var invite domain.Invite
	err := r.s.do(ctx, func(st *state) error {
		found, ok := st.invites[inviteID]
		if !ok {
			return domain.NotFound("invite")
		}
		invite = enrich(st, found)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// LockByID получает приглашение; транзакции хранилища уже сериализованы
func (r *InviteRepository) LockByID(ctx context.Context, inviteID uuid.UUID) (*domain.Invite, error) {
	return r.GetByID(ctx, inviteID)
}

// SetStatus меняет статус приглашения
func (r *InviteRepository) SetStatus(ctx context.Context, inviteID uuid.UUID, status domain.InviteStatus) error {
	return r.s.do(ctx, func(st *state) error {
		invite, ok := st.invites[inviteID]
		if !ok {
			return domain.NotFound("invite")
		}
		if status == domain.InviteStatusPending && !invite.IsPending() {
			for id, other := range st.invites {
				if id != inviteID && other.IsPending() && other.UserID == invite.UserID && other.TeamID == invite.TeamID {
					return domain.ErrPendingInviteExists
				}
			}
		}
		invite.Status = status
		invite.UpdatedAt = r.s.now()
		st.invites[inviteID] = invite
		return nil
	})
}

// Delete удаляет приглашение
func (r *InviteRepository) Delete(ctx context.Context, inviteID uuid.UUID) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.invites[inviteID]; !ok {
			return domain.NotFound("invite")
		}
		delete(st.invites, inviteID)
		return nil
	})
}

// HasPending проверяет наличие ожидающего приглашения
func (r *InviteRepository) HasPending(ctx context.Context, userID, teamID uuid.UUID) (bool, error) {
	var exists bool
	err := r.s.do(ctx, func(st *state) error {
		for _, invite := range st.invites {
			if invite.IsPending() && invite.UserID == userID && invite.TeamID == teamID {
				exists = true
				return nil
			}
		}
		return nil
	})
	return exists, err
}

// ListIncoming возвращает приглашения, адресованные пользователю
func (r *InviteRepository) ListIncoming(ctx context.Context, userID uuid.UUID, status domain.InviteStatus) ([]*domain.Invite, error) {
	return r.list(ctx, status, func(st *state, invite domain.Invite) bool {
		return invite.UserID == userID
	})
}

// ListOutgoing возвращает приглашения команд, которыми руководит пользователь
func (r *InviteRepository) ListOutgoing(ctx context.Context, leaderID uuid.UUID, status domain.InviteStatus) ([]*domain.Invite, error) {
	return r.list(ctx, status, func(st *state, invite domain.Invite) bool {
		for _, m := range st.members[invite.TeamID] {
			if m.IsLeader && m.UserID == leaderID {
				return true
			}
		}
		return false
	})
}

func (r *InviteRepository) list(ctx context.Context, status domain.InviteStatus, match func(*state, domain.Invite) bool) ([]*domain.Invite, error) {
	invites := make([]*domain.Invite, 0)
	err := r.s.do(ctx, func(st *state) error {
		for _, invite := range st.invites {
			if status != "" && invite.Status != status {
				continue
			}
			if !match(st, invite) {
				continue
			}
			enriched := enrich(st, invite)
			invites = append(invites, &enriched)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(invites, func(i, j int) bool {
		return invites[i].CreatedAt.After(invites[j].CreatedAt)
	})
	return invites, nil
}

// PollSummary возвращает агрегат ожидающих приглашений пользователя
func (r *InviteRepository) PollSummary(ctx context.Context, userID uuid.UUID) (*domain.PollSummary, error) {
	summary := &domain.PollSummary{}
	err := r.s.do(ctx, func(st *state) error {
		for _, invite := range st.invites {
			if !invite.IsPending() || invite.UserID != userID {
				continue
			}
			summary.PendingCount++
			if summary.LatestCreatedAt == nil || invite.CreatedAt.After(*summary.LatestCreatedAt) {
				created := invite.CreatedAt
				summary.LatestCreatedAt = &created
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func enrich(st *state, invite domain.Invite) domain.Invite {
	team := st.teams[invite.TeamID]
	invite.TournamentID = team.TournamentID
	invite.TeamName = team.Name
	invite.Username = st.users[invite.UserID].Username
	return invite
}
