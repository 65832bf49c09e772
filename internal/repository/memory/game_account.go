package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
)

// GameAccountRepository реализует repository.GameAccountRepository в памяти
type GameAccountRepository struct {
	s *Store
}

// Create создает игровой аккаунт
func (r *GameAccountRepository) Create(ctx context.Context, account *domain.GameAccount) error {
	return r.s.do(ctx, func(st *state) error {
		if _, ok := st.users[account.UserID]; !ok {
			return domain.NotFound("user")
		}
		if _, ok := st.games[account.GameID]; !ok {
			return domain.NotFound("game")
		}
		if account.Active {
			for _, other := range st.accounts {
				if !other.Active || other.GameID != account.GameID {
					continue
				}
				if strings.EqualFold(other.IngameName, account.IngameName) {
					return domain.ErrIngameNameTaken
				}
				if other.UserID == account.UserID {
					return domain.ErrAccountForGame
				}
			}
		}

		account.CreatedAt = r.s.now()
		st.accounts[account.ID] = *account
		return nil
	})
}

// GetByID получает аккаунт по ID
func (r *GameAccountRepository) GetByID(ctx context.Context, accountID uuid.UUID) (*domain.GameAccount, error) {
	var account domain.GameAccount
	err := r.s.do(ctx, func(st *state) error {
		found, ok := st.accounts[accountID]
		if !ok {
			return domain.NotFound("game account")
		}
		account = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ActiveNameExists проверяет занятость имени среди активных аккаунтов игры
func (r *GameAccountRepository) ActiveNameExists(ctx context.Context, gameID uuid.UUID, ingameName string) (bool, error) {
	var exists bool
	err := r.s.do(ctx, func(st *state) error {
		for _, a := range st.accounts {
			if a.Active && a.GameID == gameID && strings.EqualFold(a.IngameName, ingameName) {
				exists = true
				return nil
			}
		}
		return nil
	})
	return exists, err
}

// Deactivate помечает аккаунт неактивным
func (r *GameAccountRepository) Deactivate(ctx context.Context, accountID uuid.UUID) error {
	return r.s.do(ctx, func(st *state) error {
		account, ok := st.accounts[accountID]
		if !ok {
			return domain.NotFound("game account")
		}
		account.Active = false
		st.accounts[accountID] = account
		return nil
	})
}

// ListActiveByUser возвращает активные аккаунты пользователя
func (r *GameAccountRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID, gameID *uuid.UUID) ([]*domain.GameAccount, error) {
	accounts := make([]*domain.GameAccount, 0)
	err := r.s.do(ctx, func(st *state) error {
		for _, a := range st.accounts {
			if !a.Active || a.UserID != userID {
				continue
			}
			if gameID != nil && a.GameID != *gameID {
				continue
			}
			account := a
			accounts = append(accounts, &account)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}
