package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turnaplay/teamreg/internal/domain"
)

// UserRepository реализует repository.UserRepository для PostgreSQL
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, username, email, role
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := conn(ctx, r.db).QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Role,
	)
	if err != nil {
		return nil, notFound(err, "user")
	}

	return &user, nil
}

// FindByLogin ищет пользователя по username или email без учета регистра.
// Совпадение по username имеет приоритет.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	query := `
		SELECT id, username, email, role
		FROM users
		WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)
		ORDER BY (LOWER(username) = LOWER($1)) DESC
		LIMIT 1
	`

	var user domain.User
	err := conn(ctx, r.db).QueryRow(ctx, query, login).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Role,
	)
	if err != nil {
		return nil, notFound(err, "user")
	}

	return &user, nil
}
