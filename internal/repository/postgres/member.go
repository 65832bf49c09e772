package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turnaplay/teamreg/internal/domain"
)

// MemberRepository реализует repository.MemberRepository для PostgreSQL
type MemberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository создает новый экземпляр MemberRepository
func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

// Insert добавляет участника в команду.
// Уникальные индексы схемы страхуют проверки сервиса от гонок.
func (r *MemberRepository) Insert(ctx context.Context, tournamentID uuid.UUID, member *domain.TeamMember) error {
	query := `
		INSERT INTO team_members (team_id, game_account_id, user_id, tournament_id, is_leader, slot_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING joined_at
	`

	err := conn(ctx, r.db).QueryRow(ctx, query,
		member.TeamID,
		member.GameAccountID,
		member.UserID,
		tournamentID,
		member.IsLeader,
		member.Order,
	).Scan(&member.JoinedAt)
	if err != nil {
		return mapError(err)
	}

	return nil
}

const memberSelect = `
	SELECT m.team_id, m.game_account_id, m.user_id, g.ingame_name, m.is_leader, m.slot_order, m.joined_at
	FROM team_members m
	JOIN game_accounts g ON g.id = m.game_account_id
`

// ListByTeam возвращает состав команды по порядку слотов
func (r *MemberRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMember, error) {
	rows, err := conn(ctx, r.db).Query(ctx, memberSelect+`WHERE m.team_id = $1 ORDER BY m.slot_order`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]domain.TeamMember, 0)
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.TeamID, &m.GameAccountID, &m.UserID, &m.IngameName, &m.IsLeader, &m.Order, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// FindByUser получает участника команды по пользователю
func (r *MemberRepository) FindByUser(ctx context.Context, teamID, userID uuid.UUID) (*domain.TeamMember, error) {
	var m domain.TeamMember
	err := conn(ctx, r.db).QueryRow(ctx, memberSelect+`WHERE m.team_id = $1 AND m.user_id = $2`, teamID, userID).Scan(
		&m.TeamID, &m.GameAccountID, &m.UserID, &m.IngameName, &m.IsLeader, &m.Order, &m.JoinedAt,
	)
	if err != nil {
		return nil, notFound(err, "team member")
	}

	return &m, nil
}

// UserInTournament проверяет, состоит ли пользователь в команде турнира
func (r *MemberRepository) UserInTournament(ctx context.Context, userID, tournamentID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM team_members WHERE user_id = $1 AND tournament_id = $2)`

	var exists bool
	if err := conn(ctx, r.db).QueryRow(ctx, query, userID, tournamentID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// Delete удаляет участника команды
func (r *MemberRepository) Delete(ctx context.Context, teamID, gameAccountID uuid.UUID) error {
	query := `DELETE FROM team_members WHERE team_id = $1 AND game_account_id = $2`

	result, err := conn(ctx, r.db).Exec(ctx, query, teamID, gameAccountID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.NotFound("team member")
	}

	return nil
}
