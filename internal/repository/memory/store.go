// Package memory хранит состояние сервиса в памяти процесса.
// Используется в тестах сервисов и обработчиков; ограничения схемы
// PostgreSQL воспроизводятся здесь и возвращают те же доменные ошибки.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
)

type txKey struct{}

type state struct {
	users       map[uuid.UUID]domain.User
	games       map[uuid.UUID]struct{}
	tournaments map[uuid.UUID]domain.Tournament
	accounts    map[uuid.UUID]domain.GameAccount
	teams       map[uuid.UUID]domain.Team
	members     map[uuid.UUID][]domain.TeamMember
	invites     map[uuid.UUID]domain.Invite
}

func newState() *state {
	return &state{
		users:       make(map[uuid.UUID]domain.User),
		games:       make(map[uuid.UUID]struct{}),
		tournaments: make(map[uuid.UUID]domain.Tournament),
		accounts:    make(map[uuid.UUID]domain.GameAccount),
		teams:       make(map[uuid.UUID]domain.Team),
		members:     make(map[uuid.UUID][]domain.TeamMember),
		invites:     make(map[uuid.UUID]domain.Invite),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k := range s.games {
		c.games[k] = struct{}{}
	}
	for k, v := range s.tournaments {
		c.tournaments[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.teams {
		c.teams[k] = v
	}
	for k, v := range s.members {
		c.members[k] = append([]domain.TeamMember(nil), v...)
	}
	for k, v := range s.invites {
		c.invites[k] = v
	}
	return c
}

// Store хранит все таблицы под одной блокировкой.
// Транзакция держит блокировку целиком, поэтому транзакции выполняются строго по очереди.
type Store struct {
	mu    sync.Mutex
	data  *state
	clock func() time.Time
	last  time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		data:  newState(),
		clock: time.Now,
	}
}

// do выполняет fn над состоянием; внутри транзакции блокировка уже захвачена
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.InTx(ctx) {
		return fn(s.data)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.data)
}

// now возвращает строго возрастающее время, чтобы сортировка "новые первыми" была детерминированной
func (s *Store) now() time.Time {
	t := s.clock().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

// WithinTx реализует repository.Transactor. При ошибке fn состояние восстанавливается из снимка.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.InTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// InTx реализует repository.Transactor
func (s *Store) InTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// AddUser добавляет пользователя (данные принадлежат сервису аккаунтов)
func (s *Store) AddUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	s.data.users[user.ID] = user
}

// AddGame регистрирует игру в каталоге
func (s *Store) AddGame(gameID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.games[gameID] = struct{}{}
}

// AddTournament добавляет турнир в каталог вместе с его игрой
func (s *Store) AddTournament(t domain.Tournament) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.games[t.GameID] = struct{}{}
	s.data.tournaments[t.ID] = t
}

// SetRegistrationOpen открывает или закрывает регистрацию на турнир
func (s *Store) SetRegistrationOpen(tournamentID uuid.UUID, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.data.tournaments[tournamentID]; ok {
		t.RegistrationOpen = open
		s.data.tournaments[tournamentID] = t
	}
}

// Users возвращает репозиторий пользователей
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Tournaments возвращает каталог турниров
func (s *Store) Tournaments() *TournamentRepository { return &TournamentRepository{s: s} }

// GameAccounts возвращает репозиторий игровых аккаунтов
func (s *Store) GameAccounts() *GameAccountRepository { return &GameAccountRepository{s: s} }

// Teams возвращает репозиторий команд
func (s *Store) Teams() *TeamRepository { return &TeamRepository{s: s} }

// Members возвращает репозиторий составов
func (s *Store) Members() *MemberRepository { return &MemberRepository{s: s} }

// Invites возвращает репозиторий приглашений
func (s *Store) Invites() *InviteRepository { return &InviteRepository{s: s} }
