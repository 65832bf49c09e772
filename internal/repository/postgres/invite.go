package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turnaplay/teamreg/internal/domain"
)

// InviteRepository реализует repository.InviteRepository для PostgreSQL
type InviteRepository struct {
	db *pgxpool.Pool
}

// NewInviteRepository создает новый экземпляр InviteRepository
func NewInviteRepository(db *pgxpool.Pool) *InviteRepository {
	return &InviteRepository{db: db}
}

const inviteSelect = `
	SELECT i.id, i.user_id, i.team_id, i.status, i.created_at, i.updated_at,
	       t.tournament_id, t.team_name, u.username
	FROM tournament_invites i
	JOIN teams t ON t.id = i.team_id
	JOIN users u ON u.id = i.user_id
`

// Create создает новое приглашение
func (r *InviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	query := `
		INSERT INTO tournament_invites (id, user_id, team_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := conn(ctx, r.db).QueryRow(ctx, query,
		invite.ID, invite.UserID, invite.TeamID, string(invite.Status),
	).Scan(&invite.CreatedAt, &invite.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	return nil
}

// GetByID получает приглашение
func (r *InviteRepository) GetByID(ctx context.Context, inviteID uuid.UUID) (*domain.Invite, error) {
	return r.get(ctx, inviteSelect+`WHERE i.id = $1`, inviteID)
}

// LockByID получает приглашение с блокировкой строки приглашения
func (r *InviteRepository) LockByID(ctx context.Context, inviteID uuid.UUID) (*domain.Invite, error) {
	return r.get(ctx, inviteSelect+`WHERE i.id = $1 FOR UPDATE OF i`, inviteID)
}

func (r *InviteRepository) get(ctx context.Context, query string, inviteID uuid.UUID) (*domain.Invite, error) {
	invite, err := scanInvite(conn(ctx, r.db).QueryRow(ctx, query, inviteID))
	if err != nil {
		return nil, notFound(err, "invite")
	}
	return invite, nil
}

// SetStatus меняет статус приглашения
func (r *InviteRepository) SetStatus(ctx context.Context, inviteID uuid.UUID, status domain.InviteStatus) error {
	query := `UPDATE tournament_invites SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := conn(ctx, r.db).Exec(ctx, query, string(status), inviteID)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return domain.NotFound("invite")
	}

	return nil
}

// Delete удаляет приглашение
func (r *InviteRepository) Delete(ctx context.Context, inviteID uuid.UUID) error {
	result, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM tournament_invites WHERE id = $1`, inviteID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.NotFound("invite")
	}

	return nil
}

// HasPending проверяет наличие ожидающего приглашения
func (r *InviteRepository) HasPending(ctx context.Context, userID, teamID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM tournament_invites
			WHERE user_id = $1 AND team_id = $2 AND status = 'pending'
		)
	`

	var exists bool
	if err := conn(ctx, r.db).QueryRow(ctx, query, userID, teamID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// ListIncoming возвращает приглашения, адресованные пользователю
func (r *InviteRepository) ListIncoming(ctx context.Context, userID uuid.UUID, status domain.InviteStatus) ([]*domain.Invite, error) {
	query := inviteSelect + `
		WHERE i.user_id = $1 AND ($2::text = '' OR i.status = $2::text)
		ORDER BY i.created_at DESC, i.id
	`
	return r.list(ctx, query, userID, string(status))
}

// ListOutgoing возвращает приглашения команд, которыми руководит пользователь
func (r *InviteRepository) ListOutgoing(ctx context.Context, leaderID uuid.UUID, status domain.InviteStatus) ([]*domain.Invite, error) {
	query := inviteSelect + `
		WHERE i.team_id IN (SELECT team_id FROM team_members WHERE user_id = $1 AND is_leader)
		  AND ($2::text = '' OR i.status = $2::text)
		ORDER BY i.created_at DESC, i.id
	`
	return r.list(ctx, query, leaderID, string(status))
}

func (r *InviteRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Invite, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := make([]*domain.Invite, 0)
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}

	return invites, rows.Err()
}

// PollSummary возвращает агрегат ожидающих приглашений пользователя
func (r *InviteRepository) PollSummary(ctx context.Context, userID uuid.UUID) (*domain.PollSummary, error) {
	query := `
		SELECT COUNT(*), MAX(created_at)
		FROM tournament_invites
		WHERE user_id = $1 AND status = 'pending'
	`

	var (
		summary domain.PollSummary
		latest  *time.Time
	)
	if err := conn(ctx, r.db).QueryRow(ctx, query, userID).Scan(&summary.PendingCount, &latest); err != nil {
		return nil, err
	}
	summary.LatestCreatedAt = latest

	return &summary, nil
}

func scanInvite(row pgx.Row) (*domain.Invite, error) {
	var invite domain.Invite
	err := row.Scan(
		&invite.ID,
		&invite.UserID,
		&invite.TeamID,
		&invite.Status,
		&invite.CreatedAt,
		&invite.UpdatedAt,
		&invite.TournamentID,
		&invite.TeamName,
		&invite.Username,
	)
	if err != nil {
		return nil, err
	}
	return &invite, nil
}
