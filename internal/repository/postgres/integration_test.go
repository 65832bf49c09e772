package postgres_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/turnaplay/teamreg/internal/domain"
	"github.com/turnaplay/teamreg/internal/repository"
	"github.com/turnaplay/teamreg/internal/repository/postgres"
	"github.com/turnaplay/teamreg/internal/service"
	"github.com/turnaplay/teamreg/internal/testutil/pgtest"
)

var (
	_ repository.Transactor            = (*postgres.Transactor)(nil)
	_ repository.UserRepository        = (*postgres.UserRepository)(nil)
	_ repository.TournamentRepository  = (*postgres.TournamentRepository)(nil)
	_ repository.GameAccountRepository = (*postgres.GameAccountRepository)(nil)
	_ repository.TeamRepository        = (*postgres.TeamRepository)(nil)
	_ repository.MemberRepository      = (*postgres.MemberRepository)(nil)
	_ repository.InviteRepository      = (*postgres.InviteRepository)(nil)
)

type services struct {
	membership *service.MembershipService
	accounts   *service.GameAccountService
	roster     *service.RosterService
	invites    *service.InviteService
	stats      *service.StatsService
	teams      *postgres.TeamRepository
	inviteRepo *postgres.InviteRepository
	tx         *postgres.Transactor
}

func newServices(db *pgtest.DB) *services {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tx := postgres.NewTransactor(db.Pool, logger)
	users := postgres.NewUserRepository(db.Pool)
	tournaments := postgres.NewTournamentRepository(db.Pool)
	accounts := postgres.NewGameAccountRepository(db.Pool)
	teams := postgres.NewTeamRepository(db.Pool)
	members := postgres.NewMemberRepository(db.Pool)
	invites := postgres.NewInviteRepository(db.Pool)

	membership := service.NewMembershipService(users, tournaments, teams, members)
	roster := service.NewRosterService(tx, tournaments, accounts, teams, members, membership, logger)

	return &services{
		membership: membership,
		accounts:   service.NewGameAccountService(tx, accounts),
		roster:     roster,
		invites:    service.NewInviteService(tx, users, tournaments, teams, members, invites, roster, logger),
		stats:      service.NewStatsService(db.Pool),
		teams:      teams,
		inviteRepo: invites,
		tx:         tx,
	}
}

func (s *services) actor(t *testing.T, user domain.User) *domain.Actor {
	t.Helper()
	actor, err := s.membership.ResolveActor(context.Background(), user.ID)
	require.NoError(t, err)
	return actor
}

func (s *services) account(t *testing.T, user domain.User, gameID uuid.UUID) *domain.GameAccount {
	t.Helper()
	account, err := s.accounts.Create(context.Background(), user.ID, gameID, user.Username)
	require.NoError(t, err)
	return account
}

func TestPostgres_Registration(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()
	svc := newServices(db)

	t.Run("tournament catalog", func(t *testing.T) {
		db.Truncate(t)
		gameID := db.SeedGame(t, "Dota 2")
		open := db.SeedTournament(t, gameID, 5, true)
		closed := db.SeedTournament(t, gameID, 5, false)

		got, err := postgres.NewTournamentRepository(db.Pool).GetByID(ctx, open.ID)
		require.NoError(t, err)
		assert.Equal(t, gameID, got.GameID)
		assert.Equal(t, 5, got.TeamSize)
		assert.True(t, got.RegistrationOpen)

		got, err = postgres.NewTournamentRepository(db.Pool).GetByID(ctx, closed.ID)
		require.NoError(t, err)
		assert.False(t, got.RegistrationOpen)

		_, err = postgres.NewTournamentRepository(db.Pool).GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("game account constraints", func(t *testing.T) {
		db.Truncate(t)
		gameID := db.SeedGame(t, "CS2")
		alice := db.SeedUser(t, "alice")
		bob := db.SeedUser(t, "bob")

		account := svc.account(t, alice, gameID)

		// уникальный индекс по активным аккаунтам ловит гонку, которую пропустила предварительная проверка
		repo := postgres.NewGameAccountRepository(db.Pool)
		err := repo.Create(ctx, &domain.GameAccount{ID: uuid.New(), UserID: bob.ID, GameID: gameID, IngameName: "ALICE", Active: true})
		assert.ErrorIs(t, err, domain.ErrIngameNameTaken)

		err = repo.Create(ctx, &domain.GameAccount{ID: uuid.New(), UserID: alice.ID, GameID: gameID, IngameName: "Second", Active: true})
		assert.ErrorIs(t, err, domain.ErrAccountForGame)

		err = repo.Create(ctx, &domain.GameAccount{ID: uuid.New(), UserID: bob.ID, GameID: uuid.New(), IngameName: "Bob", Active: true})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = svc.accounts.Deactivate(ctx, svc.actor(t, alice), account.ID)
		require.NoError(t, err)

		_, err = svc.accounts.Create(ctx, bob.ID, gameID, "alice")
		assert.NoError(t, err, "deactivated account frees its name")
	})

	t.Run("roster fills up and invites flow", func(t *testing.T) {
		db.Truncate(t)
		gameID := db.SeedGame(t, "Valorant")
		tournament := db.SeedTournament(t, gameID, 3, true)
		leader := db.SeedUser(t, "leader")
		alice := db.SeedUser(t, "alice")
		bob := db.SeedUser(t, "bob")

		team, err := svc.roster.CreateTeamWithLeader(ctx, svc.actor(t, leader), tournament.ID, "Alpha", svc.account(t, leader, gameID).ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TeamStatusInvalid, team.Status)

		join := func(user domain.User) *domain.Invite {
			invite, err := svc.invites.CreateInvite(ctx, svc.actor(t, leader), team.ID, user.Username)
			require.NoError(t, err)
			accepted, err := svc.invites.Accept(ctx, svc.actor(t, user), invite.ID, svc.account(t, user, gameID).ID)
			require.NoError(t, err)
			return accepted
		}

		join(alice)
		got, err := svc.roster.GetTeam(ctx, team.ID)
		require.NoError(t, err)
		assert.Len(t, got.Members, 2)
		assert.Equal(t, domain.TeamStatusInvalid, got.Status)

		bobInvite := join(bob)
		got, err = svc.roster.GetTeam(ctx, team.ID)
		require.NoError(t, err)
		assert.Len(t, got.Members, 3)
		assert.Equal(t, domain.TeamStatusValid, got.Status)
		require.NoError(t, domain.CheckRoster(got.Members, 3))
		assert.Equal(t, "bob", got.Members[2].IngameName)

		stats, err := svc.stats.GetTournamentStats(ctx, tournament.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TeamsTotal)
		assert.Equal(t, 1, stats.TeamsValid)
		assert.Equal(t, 3, stats.Players)

		// отзыв принятого приглашения убирает участника и пересчитывает статус
		result, err := svc.invites.Cancel(ctx, svc.actor(t, leader), bobInvite.ID, domain.InviteStatusAccepted)
		require.NoError(t, err)
		assert.True(t, result.MemberRemoved)
		assert.Equal(t, domain.InviteStatusRejected, result.Invite.Status)

		got, err = svc.roster.GetTeam(ctx, team.ID)
		require.NoError(t, err)
		assert.Len(t, got.Members, 2)
		assert.Equal(t, domain.TeamStatusInvalid, got.Status)

		// отклоненное приглашение не мешает новому
		again, err := svc.invites.CreateInvite(ctx, svc.actor(t, leader), team.ID, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, domain.InviteStatusPending, again.Status)

		summary, err := svc.invites.Poll(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.PendingCount)
		require.NotNil(t, summary.LatestCreatedAt)

		outgoing, err := svc.invites.OutgoingFor(ctx, leader.ID, "")
		require.NoError(t, err)
		assert.Len(t, outgoing, 3)
		assert.Equal(t, again.ID, outgoing[0].ID)
		assert.Equal(t, "Alpha", outgoing[0].TeamName)
		assert.Equal(t, "bob", outgoing[0].Username)
	})

	t.Run("accept on a full team keeps the invite pending", func(t *testing.T) {
		db.Truncate(t)
		gameID := db.SeedGame(t, "Apex")
		tournament := db.SeedTournament(t, gameID, 2, true)
		leader := db.SeedUser(t, "leader")
		alice := db.SeedUser(t, "alice")
		bob := db.SeedUser(t, "bob")

		team, err := svc.roster.CreateTeamWithLeader(ctx, svc.actor(t, leader), tournament.ID, "Alpha", svc.account(t, leader, gameID).ID)
		require.NoError(t, err)

		aliceInvite, err := svc.invites.CreateInvite(ctx, svc.actor(t, leader), team.ID, "alice")
		require.NoError(t, err)
		bobInvite, err := svc.invites.CreateInvite(ctx, svc.actor(t, leader), team.ID, "bob")
		require.NoError(t, err)

		_, err = svc.invites.Accept(ctx, svc.actor(t, bob), bobInvite.ID, svc.account(t, bob, gameID).ID)
		require.NoError(t, err)

		_, err = svc.invites.Accept(ctx, svc.actor(t, alice), aliceInvite.ID, svc.account(t, alice, gameID).ID)
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

		stored, err := svc.inviteRepo.GetByID(ctx, aliceInvite.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.InviteStatusPending, stored.Status)
	})

	t.Run("member of another team", func(t *testing.T) {
		db.Truncate(t)
		gameID := db.SeedGame(t, "LoL")
		tournament := db.SeedTournament(t, gameID, 5, true)
		leaderX := db.SeedUser(t, "leader-x")
		leaderY := db.SeedUser(t, "leader-y")

		teamX, err := svc.roster.CreateTeamWithLeader(ctx, svc.actor(t, leaderX), tournament.ID, "X", svc.account(t, leaderX, gameID).ID)
		require.NoError(t, err)
		_, err = svc.roster.CreateTeamWithLeader(ctx, svc.actor(t, leaderY), tournament.ID, "Y", svc.account(t, leaderY, gameID).ID)
		require.NoError(t, err)

		_, err = svc.invites.CreateInvite(ctx, svc.actor(t, leaderX), teamX.ID, "leader-y")
		assert.ErrorIs(t, err, domain.ErrAlreadyMember)

		_, err = svc.roster.CreateTeamWithLeader(ctx, svc.actor(t, leaderX), tournament.ID, "Z", uuid.New())
		assert.ErrorIs(t, err, domain.ErrInvalidAccount)
	})

	t.Run("leader leaves and the team cascades", func(t *testing.T) {
		db.Truncate(t)
		gameID := db.SeedGame(t, "PUBG")
		tournament := db.SeedTournament(t, gameID, 4, true)
		leader := db.SeedUser(t, "leader")
		alice := db.SeedUser(t, "alice")

		team, err := svc.roster.CreateTeamWithLeader(ctx, svc.actor(t, leader), tournament.ID, "Alpha", svc.account(t, leader, gameID).ID)
		require.NoError(t, err)
		invite, err := svc.invites.CreateInvite(ctx, svc.actor(t, leader), team.ID, "alice")
		require.NoError(t, err)

		deleted, err := svc.roster.Leave(ctx, svc.actor(t, leader), team.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = svc.roster.GetTeam(ctx, team.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = svc.inviteRepo.GetByID(ctx, invite.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		count, err := svc.invites.PendingCount(ctx, alice.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("registration closed", func(t *testing.T) {
		db.Truncate(t)
		gameID := db.SeedGame(t, "Rocket League")
		tournament := db.SeedTournament(t, gameID, 3, false)
		leader := db.SeedUser(t, "leader")

		_, err := svc.roster.CreateTeamWithLeader(ctx, svc.actor(t, leader), tournament.ID, "Alpha", svc.account(t, leader, gameID).ID)
		assert.ErrorIs(t, err, domain.ErrClosed)

		stats, err := svc.stats.GetTournamentStats(ctx, tournament.ID)
		require.NoError(t, err)
		assert.Zero(t, stats.TeamsTotal)

		_, err = svc.stats.GetTournamentStats(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPostgres_Transactor(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()
	svc := newServices(db)

	gameID := db.SeedGame(t, "Dota 2")
	tournament := db.SeedTournament(t, gameID, 3, true)

	t.Run("rollback on error", func(t *testing.T) {
		team := &domain.Team{ID: uuid.New(), TournamentID: tournament.ID, Name: "Ghost", Status: domain.TeamStatusInvalid}
		boom := errors.New("boom")

		err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
			require.NoError(t, svc.teams.Create(ctx, team))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = svc.teams.GetByID(ctx, team.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("nested tx joins the outer one", func(t *testing.T) {
		team := &domain.Team{ID: uuid.New(), TournamentID: tournament.ID, Name: "Nested", Status: domain.TeamStatusInvalid}
		boom := errors.New("boom")

		err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
			require.NoError(t, svc.tx.WithinTx(ctx, func(ctx context.Context) error {
				return svc.teams.Create(ctx, team)
			}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = svc.teams.GetByID(ctx, team.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("lost race is retried once", func(t *testing.T) {
		var calls int
		err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
			calls++
			return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
		})
		assert.Equal(t, 2, calls)
		assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("retry after deadlock succeeds", func(t *testing.T) {
		team := &domain.Team{ID: uuid.New(), TournamentID: tournament.ID, Name: "Retried", Status: domain.TeamStatusInvalid}

		var calls int
		err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
			calls++
			if err := svc.teams.Create(ctx, team); err != nil {
				return err
			}
			if calls == 1 {
				return &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)

		// первая попытка откатилась, строка создана один раз
		got, err := svc.teams.GetByID(ctx, team.ID)
		require.NoError(t, err)
		assert.Equal(t, "Retried", got.Name)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		var calls int
		err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
			calls++
			return domain.ErrCapacityExceeded
		})
		assert.Equal(t, 1, calls)
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	})
}

func TestPostgres_ConcurrentAcceptForLastSlot(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()
	svc := newServices(db)

	gameID := db.SeedGame(t, "Overwatch")
	tournament := db.SeedTournament(t, gameID, 3, true)
	leader := db.SeedUser(t, "leader")
	member := db.SeedUser(t, "member")

	team, err := svc.roster.CreateTeamWithLeader(ctx, svc.actor(t, leader), tournament.ID, "Alpha", svc.account(t, leader, gameID).ID)
	require.NoError(t, err)

	memberInvite, err := svc.invites.CreateInvite(ctx, svc.actor(t, leader), team.ID, member.Username)
	require.NoError(t, err)
	_, err = svc.invites.Accept(ctx, svc.actor(t, member), memberInvite.ID, svc.account(t, member, gameID).ID)
	require.NoError(t, err)

	type attempt struct {
		actor     *domain.Actor
		inviteID  uuid.UUID
		accountID uuid.UUID
	}
	var attempts []attempt
	for _, name := range []string{"alice", "bob"} {
		user := db.SeedUser(t, name)
		invite, err := svc.invites.CreateInvite(ctx, svc.actor(t, leader), team.ID, name)
		require.NoError(t, err)
		attempts = append(attempts, attempt{
			actor:     svc.actor(t, user),
			inviteID:  invite.ID,
			accountID: svc.account(t, user, gameID).ID,
		})
	}

	var succeeded, rejected atomic.Int32
	var g errgroup.Group
	for _, a := range attempts {
		g.Go(func() error {
			_, err := svc.invites.Accept(ctx, a.actor, a.inviteID, a.accountID)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrCapacityExceeded), errors.Is(err, domain.ErrConflict):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(1), rejected.Load())

	got, err := svc.roster.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, got.Members, 3)
	assert.Equal(t, domain.TeamStatusValid, got.Status)
	assert.NoError(t, domain.CheckRoster(got.Members, 3))
}
