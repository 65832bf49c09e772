package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
	"github.com/turnaplay/teamreg/internal/repository"
)

// GameAccountService handles per-game player identities
type GameAccountService struct {
	tx       repository.Transactor
	accounts repository.GameAccountRepository
}

// NewGameAccountService creates a new GameAccountService
func NewGameAccountService(tx repository.Transactor, accounts repository.GameAccountRepository) *GameAccountService {
	return &GameAccountService{
		tx:       tx,
		accounts: accounts,
	}
}

// Create registers a new active game account for the user
func (s *GameAccountService) Create(ctx context.Context, userID, gameID uuid.UUID, ingameName string) (*domain.GameAccount, error) {
	name, err := domain.NormalizeIngameName(ingameName)
	if err != nil {
		return nil, err
	}

	account := &domain.GameAccount{
		ID:         uuid.New(),
		UserID:     userID,
		GameID:     gameID,
		IngameName: name,
		Active:     true,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// The partial unique index is the backstop; this gives the precise error first
		taken, err := s.accounts.ActiveNameExists(ctx, gameID, name)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrIngameNameTaken
		}
		return s.accounts.Create(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// Deactivate soft-deletes the account. Existing team memberships keep referencing it.
// Deactivating an inactive account is a no-op.
func (s *GameAccountService) Deactivate(ctx context.Context, actor *domain.Actor, accountID uuid.UUID) (*domain.GameAccount, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if account.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, domain.Forbidden("only the owner can deactivate a game account")
	}

	if !account.Active {
		return account, nil
	}

	if err := s.accounts.Deactivate(ctx, accountID); err != nil {
		return nil, err
	}

	account.Active = false
	return account, nil
}

// IsOwnedAndActive reports whether the account belongs to the user and is usable
func (s *GameAccountService) IsOwnedAndActive(ctx context.Context, accountID, userID uuid.UUID) (bool, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return account.UsableBy(userID), nil
}

// ListForUser returns the user's active accounts, optionally for one game
func (s *GameAccountService) ListForUser(ctx context.Context, userID uuid.UUID, gameID *uuid.UUID) ([]*domain.GameAccount, error) {
	return s.accounts.ListActiveByUser(ctx, userID, gameID)
}
