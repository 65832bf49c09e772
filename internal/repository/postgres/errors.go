package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turnaplay/teamreg/internal/domain"
)

// Коды ошибок PostgreSQL
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// uniqueErrors сопоставляет уникальные ограничения схемы с доменными ошибками
var uniqueErrors = map[string]error{
	"game_accounts_active_name_key":    domain.ErrIngameNameTaken,
	"game_accounts_active_owner_key":   domain.ErrAccountForGame,
	"teams_tournament_name_key":        domain.ErrTeamNameTaken,
	"team_members_pkey":                domain.ErrAlreadyMember,
	"team_members_order_key":           domain.ErrSlotTaken,
	"team_members_tournament_user_key": domain.ErrAlreadyMember,
	"team_members_leader_key":          domain.ErrDuplicateLeader,
	"tournament_invites_pending_key":   domain.ErrPendingInviteExists,
}

// foreignKeyErrors сопоставляет внешние ключи с доменными ошибками
var foreignKeyErrors = map[string]error{
	"game_accounts_user_id_fkey":      domain.NotFound("user"),
	"game_accounts_game_id_fkey":      domain.NotFound("game"),
	"teams_tournament_id_fkey":        domain.NotFound("tournament"),
	"team_members_team_fkey":          domain.NotFound("team"),
	"team_members_game_account_fkey":  domain.ErrInvalidAccount,
	"tournament_invites_user_id_fkey": domain.NotFound("user"),
	"tournament_invites_team_id_fkey": domain.NotFound("team"),
}

// mapError преобразует ошибки ограничений в доменные ошибки.
// Ошибки сериализации возвращаются как есть, чтобы Transactor мог повторить транзакцию.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		if mapped, ok := uniqueErrors[pgErr.ConstraintName]; ok {
			return mapped
		}
		return domain.Conflict("duplicate value violates " + pgErr.ConstraintName)
	case codeForeignKeyViolation:
		if mapped, ok := foreignKeyErrors[pgErr.ConstraintName]; ok {
			return mapped
		}
		return domain.ErrNotFound
	case codeCheckViolation:
		return domain.Validation(pgErr.ConstraintName, "check constraint violated")
	}

	return err
}

// notFound возвращает доменную ошибку для pgx.ErrNoRows
func notFound(err error, entity string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound(entity)
	}
	return err
}
