package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turnaplay/teamreg/internal/domain"
)

// TeamRepository реализует repository.TeamRepository для PostgreSQL
type TeamRepository struct {
	db *pgxpool.Pool
}

// NewTeamRepository создает новый экземпляр TeamRepository
func NewTeamRepository(db *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create создает новую команду
func (r *TeamRepository) Create(ctx context.Context, team *domain.Team) error {
	query := `
		INSERT INTO teams (id, tournament_id, team_name, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := conn(ctx, r.db).QueryRow(ctx, query,
		team.ID, team.TournamentID, team.Name, string(team.Status),
	).Scan(&team.CreatedAt)
	if err != nil {
		return mapError(err)
	}

	return nil
}

// GetByID получает команду без состава
func (r *TeamRepository) GetByID(ctx context.Context, teamID uuid.UUID) (*domain.Team, error) {
	return r.get(ctx, `
		SELECT id, tournament_id, team_name, status, created_at
		FROM teams
		WHERE id = $1
	`, teamID)
}

// LockByID получает команду с блокировкой строки (SELECT ... FOR UPDATE).
// Все изменения состава команды сериализуются через эту блокировку.
func (r *TeamRepository) LockByID(ctx context.Context, teamID uuid.UUID) (*domain.Team, error) {
	return r.get(ctx, `
		SELECT id, tournament_id, team_name, status, created_at
		FROM teams
		WHERE id = $1
		FOR UPDATE
	`, teamID)
}

func (r *TeamRepository) get(ctx context.Context, query string, teamID uuid.UUID) (*domain.Team, error) {
	var team domain.Team
	err := conn(ctx, r.db).QueryRow(ctx, query, teamID).Scan(
		&team.ID,
		&team.TournamentID,
		&team.Name,
		&team.Status,
		&team.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, "team")
	}

	return &team, nil
}

// Rename меняет название команды
func (r *TeamRepository) Rename(ctx context.Context, teamID uuid.UUID, name string) error {
	query := `UPDATE teams SET team_name = $1 WHERE id = $2`

	result, err := conn(ctx, r.db).Exec(ctx, query, name, teamID)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return domain.NotFound("team")
	}

	return nil
}

// SetStatus обновляет статус команды
func (r *TeamRepository) SetStatus(ctx context.Context, teamID uuid.UUID, status domain.TeamStatus) error {
	query := `UPDATE teams SET status = $1 WHERE id = $2`

	result, err := conn(ctx, r.db).Exec(ctx, query, string(status), teamID)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return domain.NotFound("team")
	}

	return nil
}

// Delete удаляет команду; участники и приглашения удаляются каскадно
func (r *TeamRepository) Delete(ctx context.Context, teamID uuid.UUID) error {
	result, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.NotFound("team")
	}

	return nil
}

// ListLedBy возвращает команды, где пользователь является лидером
func (r *TeamRepository) ListLedBy(ctx context.Context, userID uuid.UUID) ([]*domain.Team, error) {
	query := `
		SELECT t.id, t.tournament_id, t.team_name, t.status, t.created_at
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = $1 AND m.is_leader
		ORDER BY t.created_at, t.id
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*domain.Team, 0)
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.TournamentID, &team.Name, &team.Status, &team.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, &team)
	}

	return teams, rows.Err()
}
