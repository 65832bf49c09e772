package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
)

// MemberRepository реализует repository.MemberRepository в памяти
type MemberRepository struct {
	s *Store
}

// Insert добавляет участника, проверяя те же ограничения, что и схема PostgreSQL
func (r *MemberRepository) Insert(ctx context.Context, tournamentID uuid.UUID, member *domain.TeamMember) error {
	return r.s.do(ctx, func(st *state) error {
		team, ok := st.teams[member.TeamID]
		if !ok || team.TournamentID != tournamentID {
			return domain.NotFound("team")
		}
		account, ok := st.accounts[member.GameAccountID]
		if !ok || account.UserID != member.UserID {
			return domain.ErrInvalidAccount
		}
		if member.IsLeader != (member.Order == domain.LeaderOrder) || member.Order < 0 {
			return domain.Validation("team_members_leader_order_check", "check constraint violated")
		}

		for _, m := range st.members[member.TeamID] {
			switch {
			case m.GameAccountID == member.GameAccountID:
				return domain.ErrAlreadyMember
			case m.Order == member.Order:
				return domain.ErrSlotTaken
			case m.IsLeader && member.IsLeader:
				return domain.ErrDuplicateLeader
			}
		}
		for teamID, members := range st.members {
			if st.teams[teamID].TournamentID != tournamentID {
				continue
			}
			for _, m := range members {
				if m.UserID == member.UserID {
					return domain.ErrAlreadyMember
				}
			}
		}

		member.JoinedAt = r.s.now()
		member.IngameName = account.IngameName
		st.members[member.TeamID] = append(st.members[member.TeamID], *member)
		return nil
	})
}

// ListByTeam возвращает состав команды по порядку слотов
func (r *MemberRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMember, error) {
	var members []domain.TeamMember
	err := r.s.do(ctx, func(st *state) error {
		members = make([]domain.TeamMember, 0, len(st.members[teamID]))
		for _, m := range st.members[teamID] {
			m.IngameName = st.accounts[m.GameAccountID].IngameName
			members = append(members, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	domain.SortMembers(members)
	return members, nil
}

// FindByUser получает участника команды по пользователю
func (r *MemberRepository) FindByUser(ctx context.Context, teamID, userID uuid.UUID) (*domain.TeamMember, error) {
	var found *domain.TeamMember
	err := r.s.do(ctx, func(st *state) error {
		for _, m := range st.members[teamID] {
			if m.UserID == userID {
				m.IngameName = st.accounts[m.GameAccountID].IngameName
				found = &m
				return nil
			}
		}
		return domain.NotFound("team member")
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// UserInTournament проверяет, состоит ли пользователь в команде турнира
func (r *MemberRepository) UserInTournament(ctx context.Context, userID, tournamentID uuid.UUID) (bool, error) {
	var exists bool
	err := r.s.do(ctx, func(st *state) error {
		for teamID, members := range st.members {
			if st.teams[teamID].TournamentID != tournamentID {
				continue
			}
			for _, m := range members {
				if m.UserID == userID {
					exists = true
					return nil
				}
			}
		}
		return nil
	})
	return exists, err
}

// Delete удаляет участника команды
func (r *MemberRepository) Delete(ctx context.Context, teamID, gameAccountID uuid.UUID) error {
	return r.s.do(ctx, func(st *state) error {
		members := st.members[teamID]
		for i, m := range members {
			if m.GameAccountID == gameAccountID {
				st.members[teamID] = append(members[:i:i], members[i+1:]...)
				return nil
			}
		}
		return domain.NotFound("team member")
	})
}
