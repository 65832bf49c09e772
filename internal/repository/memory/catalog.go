package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
)

// UserRepository реализует repository.UserRepository в памяти
type UserRepository struct {
	s *Store
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.s.do(ctx, func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return domain.NotFound("user")
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByLogin ищет пользователя по username или email без учета регистра
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	var found *domain.User
	err := r.s.do(ctx, func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Username, login) {
				found = &u
				return nil
			}
		}
		for _, u := range st.users {
			if strings.EqualFold(u.Email, login) {
				found = &u
				return nil
			}
		}
		return domain.NotFound("user")
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// TournamentRepository реализует repository.TournamentRepository в памяти
type TournamentRepository struct {
	s *Store
}

// GetByID получает турнир
func (r *TournamentRepository) GetByID(ctx context.Context, tournamentID uuid.UUID) (*domain.Tournament, error) {
	var t domain.Tournament
	err := r.s.do(ctx, func(st *state) error {
		found, ok := st.tournaments[tournamentID]
		if !ok {
			return domain.NotFound("tournament")
		}
		t = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}
