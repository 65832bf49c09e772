package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
)

// TeamRepository реализует repository.TeamRepository в памяти
type TeamRepository struct {
	s *Store
}

// Create создает команду
func (r *TeamRepository) Create(ctx context.Context, team *domain.Team) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.tournaments[team.TournamentID]; !ok {
			return domain.NotFound("tournament")
		}
		for _, other := range st.teams {
			if other.TournamentID == team.TournamentID && other.Name == team.Name {
				return domain.ErrTeamNameTaken
			}
		}

		team.CreatedAt = r.s.now()
		stored := *team
		stored.Members = nil
		st.teams[team.ID] = stored
		return nil
	})
}

// GetByID получает команду без состава
func (r *TeamRepository) GetByID(ctx context.Context, teamID uuid.UUID) (*domain.Team, error) {
	var team domain.Team
	err := r.s.do(ctx, func(st *state) error {
		found, ok := st.teams[teamID]
		if !ok {
			return domain.NotFound("team")
		}
		team = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// LockByID получает команду; транзакции хранилища уже сериализованы
func (r *TeamRepository) LockByID(ctx context.Context, teamID uuid.UUID) (*domain.Team, error) {
	return r.GetByID(ctx, teamID)
}

// Rename меняет название команды
func (r *TeamRepository) Rename(ctx context.Context, teamID uuid.UUID, name string) error {
	return r.s.do(ctx, func(st *state) error {
		team, ok := st.teams[teamID]
		if !ok {
			return domain.NotFound("team")
		}
		for id, other := range st.teams {
			if id != teamID && other.TournamentID == team.TournamentID && other.Name == name {
				return domain.ErrTeamNameTaken
			}
		}
		team.Name = name
		st.teams[teamID] = team
		return nil
	})
}

// SetStatus обновляет статус команды
func (r *TeamRepository) SetStatus(ctx context.Context, teamID uuid.UUID, status domain.TeamStatus) error {
	return r.s.do(ctx, func(st *state) error {
		team, ok := st.teams[teamID]
		if !ok {
			return domain.NotFound("team")
		}
		team.Status = status
		st.teams[teamID] = team
		return nil
	})
}

// Delete удаляет команду вместе с участниками и приглашениями
func (r *TeamRepository) Delete(ctx context.Context, teamID uuid.UUID) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.teams[teamID]; !ok {
			return domain.NotFound("team")
		}
		delete(st.teams, teamID)
		delete(st.members, teamID)
		for id, invite := range st.invites {
			if invite.TeamID == teamID {
				delete(st.invites, id)
			}
		}
		return nil
	})
}

// ListLedBy возвращает команды, где пользователь является лидером
func (r *TeamRepository) ListLedBy(ctx context.Context, userID uuid.UUID) ([]*domain.Team, error) {
	teams := make([]*domain.Team, 0)
	err := r.s.do(ctx, func(st *state) error {
		for teamID, members := range st.members {
			for _, m := range members {
				if m.IsLeader && m.UserID == userID {
					team := st.teams[teamID]
					teams = append(teams, &team)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(teams, func(i, j int) bool {
		return teams[i].CreatedAt.Before(teams[j].CreatedAt)
	})
	return teams, nil
}
