package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/turnaplay/teamreg/internal/domain"
	"github.com/turnaplay/teamreg/internal/repository/memory"
	"github.com/turnaplay/teamreg/internal/service"
)

// fixture собирает сервисы поверх хранилища в памяти и один открытый турнир
type fixture struct {
	ctx        context.Context
	store      *memory.Store
	membership *service.MembershipService
	accounts   *service.GameAccountService
	roster     *service.RosterService
	invites    *service.InviteService
	tournament domain.Tournament
}

func newFixture(t *testing.T, teamSize int) *fixture {
	t.Helper()

	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	membership := service.NewMembershipService(store.Users(), store.Tournaments(), store.Teams(), store.Members())
	roster := service.NewRosterService(store, store.Tournaments(), store.GameAccounts(), store.Teams(), store.Members(), membership, logger)

	f := &fixture{
		ctx:        context.Background(),
		store:      store,
		membership: membership,
		accounts:   service.NewGameAccountService(store, store.GameAccounts()),
		roster:     roster,
		invites:    service.NewInviteService(store, store.Users(), store.Tournaments(), store.Teams(), store.Members(), store.Invites(), roster, logger),
	}
	f.tournament = f.addTournament(teamSize)
	return f
}

func (f *fixture) addTournament(teamSize int) domain.Tournament {
	tournament := domain.Tournament{
		ID:               uuid.New(),
		Name:             "Spring Cup",
		GameID:           uuid.New(),
		TeamSize:         teamSize,
		RegistrationOpen: true,
	}
	f.store.AddTournament(tournament)
	return tournament
}

func (f *fixture) user(t *testing.T, name string) *domain.User {
	t.Helper()
	user := domain.User{
		ID:       uuid.New(),
		Username: name,
		Email:    name + "@example.com",
		Role:     domain.RoleUser,
	}
	f.store.AddUser(user)
	return &user
}

// actor каждый раз заново вычисляет Actor, как это делает middleware на каждом запросе
func (f *fixture) actor(t *testing.T, user *domain.User) *domain.Actor {
	t.Helper()
	actor, err := f.membership.ResolveActor(f.ctx, user.ID)
	require.NoError(t, err)
	return actor
}

func (f *fixture) account(t *testing.T, user *domain.User) *domain.GameAccount {
	t.Helper()
	account, err := f.accounts.Create(f.ctx, user.ID, f.tournament.GameID, user.Username)
	require.NoError(t, err)
	return account
}

func (f *fixture) team(t *testing.T, leader *domain.User, name string) *domain.Team {
	t.Helper()
	team, err := f.roster.CreateTeamWithLeader(f.ctx, f.actor(t, leader), f.tournament.ID, name, f.account(t, leader).ID)
	require.NoError(t, err)
	return team
}

func (f *fixture) invite(t *testing.T, leader *domain.User, teamID uuid.UUID, target *domain.User) *domain.Invite {
	t.Helper()
	invite, err := f.invites.CreateInvite(f.ctx, f.actor(t, leader), teamID, target.Username)
	require.NoError(t, err)
	return invite
}

// join приглашает пользователя и принимает приглашение от его имени
func (f *fixture) join(t *testing.T, leader *domain.User, teamID uuid.UUID, member *domain.User) *domain.GameAccount {
	t.Helper()
	invite := f.invite(t, leader, teamID, member)
	account := f.account(t, member)
	_, err := f.invites.Accept(f.ctx, f.actor(t, member), invite.ID, account.ID)
	require.NoError(t, err)
	return account
}

// requireRosterInvariants проверяет инварианты состава для команды
func (f *fixture) requireRosterInvariants(t *testing.T, teamID uuid.UUID) {
	t.Helper()
	team, err := f.roster.GetTeam(f.ctx, teamID)
	require.NoError(t, err)
	require.NoError(t, domain.CheckRoster(team.Members, f.tournament.TeamSize))
}
