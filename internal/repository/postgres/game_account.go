package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turnaplay/teamreg/internal/domain"
)

// GameAccountRepository реализует repository.GameAccountRepository для PostgreSQL
type GameAccountRepository struct {
	db *pgxpool.Pool
}

// NewGameAccountRepository создает новый экземпляр GameAccountRepository
func NewGameAccountRepository(db *pgxpool.Pool) *GameAccountRepository {
	return &GameAccountRepository{db: db}
}

// Create создает новый игровой аккаунт
func (r *GameAccountRepository) Create(ctx context.Context, account *domain.GameAccount) error {
	query := `
		INSERT INTO game_accounts (id, user_id, game_id, ingame_name, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := conn(ctx, r.db).QueryRow(ctx, query,
		account.ID, account.UserID, account.GameID, account.IngameName, account.Active,
	).Scan(&account.CreatedAt)
	if err != nil {
		return mapError(err)
	}

	return nil
}

// GetByID получает игровой аккаунт по ID
func (r *GameAccountRepository) GetByID(ctx context.Context, accountID uuid.UUID) (*domain.GameAccount, error) {
	query := `
		SELECT id, user_id, game_id, ingame_name, active, created_at
		FROM game_accounts
		WHERE id = $1
	`

	var account domain.GameAccount
	err := conn(ctx, r.db).QueryRow(ctx, query, accountID).Scan(
		&account.ID,
		&account.UserID,
		&account.GameID,
		&account.IngameName,
		&account.Active,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "game account")
	}

	return &account, nil
}

// ActiveNameExists проверяет занятость имени среди активных аккаунтов игры
func (r *GameAccountRepository) ActiveNameExists(ctx context.Context, gameID uuid.UUID, ingameName string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM game_accounts
			WHERE game_id = $1 AND LOWER(ingame_name) = LOWER($2) AND active
		)
	`

	var exists bool
	if err := conn(ctx, r.db).QueryRow(ctx, query, gameID, ingameName).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// Deactivate помечает аккаунт неактивным. Повторный вызов не является ошибкой.
func (r *GameAccountRepository) Deactivate(ctx context.Context, accountID uuid.UUID) error {
	query := `UPDATE game_accounts SET active = FALSE WHERE id = $1`

	result, err := conn(ctx, r.db).Exec(ctx, query, accountID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.NotFound("game account")
	}

	return nil
}

// ListActiveByUser возвращает активные аккаунты пользователя, gameID == nil означает все игры
func (r *GameAccountRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID, gameID *uuid.UUID) ([]*domain.GameAccount, error) {
	query := `
		SELECT id, user_id, game_id, ingame_name, active, created_at
		FROM game_accounts
		WHERE user_id = $1 AND active AND ($2::uuid IS NULL OR game_id = $2)
		ORDER BY created_at, id
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, userID, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.GameAccount, 0)
	for rows.Next() {
		var account domain.GameAccount
		if err := rows.Scan(
			&account.ID,
			&account.UserID,
			&account.GameID,
			&account.IngameName,
			&account.Active,
			&account.CreatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, &account)
	}

	return accounts, rows.Err()
}
