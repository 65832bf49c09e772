package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turnaplay/teamreg/internal/domain"
)

// TournamentRepository реализует repository.TournamentRepository для PostgreSQL
type TournamentRepository struct {
	db *pgxpool.Pool
}

// NewTournamentRepository создает новый экземпляр TournamentRepository
func NewTournamentRepository(db *pgxpool.Pool) *TournamentRepository {
	return &TournamentRepository{db: db}
}

// GetByID получает турнир с игрой и размером команды из формата.
// Регистрация открыта до дня начала турнира.
func (r *TournamentRepository) GetByID(ctx context.Context, tournamentID uuid.UUID) (*domain.Tournament, error) {
	query := `
		SELECT t.id, t.name, f.game_id, f.team_size, t.start_date > CURRENT_DATE
		FROM tournaments t
		JOIN tournament_formats f ON f.id = t.format_id
		WHERE t.id = $1
	`

	var t domain.Tournament
	err := conn(ctx, r.db).QueryRow(ctx, query, tournamentID).Scan(
		&t.ID,
		&t.Name,
		&t.GameID,
		&t.TeamSize,
		&t.RegistrationOpen,
	)
	if err != nil {
		return nil, notFound(err, "tournament")
	}

	return &t, nil
}
