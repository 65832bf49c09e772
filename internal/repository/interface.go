package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
)

// Transactor задает границу транзакции.
// Все вызовы репозиториев с ctx, полученным внутри fn, выполняются в одной транзакции;
// при ошибке fn изменения откатываются. Вложенный вызов присоединяется к внешней транзакции.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	// InTx сообщает, открыта ли транзакция в ctx
	InTx(ctx context.Context) bool
}

// UserRepository определяет методы для чтения пользователей
type UserRepository interface {
	// GetByID получает пользователя по ID
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// FindByLogin ищет пользователя по username или email без учета регистра
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
}

// TournamentRepository предоставляет доступ к каталогу турниров (только чтение)
type TournamentRepository interface {
	// GetByID получает турнир вместе с игрой и размером команды формата
	GetByID(ctx context.Context, tournamentID uuid.UUID) (*domain.Tournament, error)
}

// GameAccountRepository определяет методы для работы с игровыми аккаунтами
type GameAccountRepository interface {
	// Create создает аккаунт; конфликт имени среди активных аккаунтов игры возвращает ErrIngameNameTaken
	Create(ctx context.Context, account *domain.GameAccount) error

	// GetByID получает аккаунт по ID (включая неактивные)
	GetByID(ctx context.Context, accountID uuid.UUID) (*domain.GameAccount, error)

	// ActiveNameExists проверяет занятость имени среди активных аккаунтов игры (без учета регистра)
	ActiveNameExists(ctx context.Context, gameID uuid.UUID, ingameName string) (bool, error)

	// Deactivate помечает аккаунт неактивным (идемпотентно)
	Deactivate(ctx context.Context, accountID uuid.UUID) error

	// ListActiveByUser возвращает активные аккаунты пользователя, опционально по игре
	ListActiveByUser(ctx context.Context, userID uuid.UUID, gameID *uuid.UUID) ([]*domain.GameAccount, error)
}

// TeamRepository определяет методы для работы с командами
type TeamRepository interface {
	// Create создает команду; занятое название в турнире возвращает ErrTeamNameTaken
	Create(ctx context.Context, team *domain.Team) error

	// GetByID получает команду без состава
	GetByID(ctx context.Context, teamID uuid.UUID) (*domain.Team, error)

	// LockByID получает команду и блокирует строку до конца транзакции
	LockByID(ctx context.Context, teamID uuid.UUID) (*domain.Team, error)

	// Rename меняет название команды
	Rename(ctx context.Context, teamID uuid.UUID, name string) error

	// SetStatus обновляет статус команды
	SetStatus(ctx context.Context, teamID uuid.UUID, status domain.TeamStatus) error

	// Delete удаляет команду каскадно вместе с участниками и приглашениями
	Delete(ctx context.Context, teamID uuid.UUID) error

	// ListLedBy возвращает команды, где пользователь является лидером
	ListLedBy(ctx context.Context, userID uuid.UUID) ([]*domain.Team, error)
}

// MemberRepository определяет методы для работы с составами команд
type MemberRepository interface {
	// Insert добавляет участника; нарушения уникальности возвращают
	// ErrSlotTaken, ErrAlreadyMember или ErrDuplicateLeader
	Insert(ctx context.Context, tournamentID uuid.UUID, member *domain.TeamMember) error

	// ListByTeam возвращает состав команды, упорядоченный по слотам
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMember, error)

	// FindByUser получает участника команды по пользователю
	FindByUser(ctx context.Context, teamID, userID uuid.UUID) (*domain.TeamMember, error)

	// UserInTournament проверяет, состоит ли пользователь в любой команде турнира
	UserInTournament(ctx context.Context, userID, tournamentID uuid.UUID) (bool, error)

	// Delete удаляет участника по игровому аккаунту
	Delete(ctx context.Context, teamID, gameAccountID uuid.UUID) error
}

// InviteRepository определяет методы для работы с приглашениями
type InviteRepository interface {
	// Create создает приглашение; второе ожидающее приглашение для пары возвращает ErrPendingInviteExists
	Create(ctx context.Context, invite *domain.Invite) error

	// GetByID получает приглашение
	GetByID(ctx context.Context, inviteID uuid.UUID) (*domain.Invite, error)

	// LockByID получает приглашение и блокирует строку до конца транзакции
	LockByID(ctx context.Context, inviteID uuid.UUID) (*domain.Invite, error)

	// SetStatus меняет статус приглашения и обновляет updated_at
	SetStatus(ctx context.Context, inviteID uuid.UUID, status domain.InviteStatus) error

	// Delete удаляет приглашение
	Delete(ctx context.Context, inviteID uuid.UUID) error

	// HasPending проверяет наличие ожидающего приглашения для пары пользователь/команда
	HasPending(ctx context.Context, userID, teamID uuid.UUID) (bool, error)

	// ListIncoming возвращает приглашения, адресованные пользователю (новые первыми)
	ListIncoming(ctx context.Context, userID uuid.UUID, status domain.InviteStatus) ([]*domain.Invite, error)

	// ListOutgoing возвращает приглашения команд, где пользователь лидер (новые первыми)
	ListOutgoing(ctx context.Context, leaderID uuid.UUID, status domain.InviteStatus) ([]*domain.Invite, error)

	// PollSummary возвращает число ожидающих приглашений и время самого нового
	PollSummary(ctx context.Context, userID uuid.UUID) (*domain.PollSummary, error)
}
