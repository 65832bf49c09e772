package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
	"github.com/turnaplay/teamreg/internal/metrics"
	"github.com/turnaplay/teamreg/internal/repository"
)

// RosterService maintains teams and their ordered member lists
type RosterService struct {
	tx          repository.Transactor
	tournaments repository.TournamentRepository
	accounts    repository.GameAccountRepository
	teams       repository.TeamRepository
	members     repository.MemberRepository
	membership  *MembershipService
	logger      *slog.Logger
}

// NewRosterService creates a new RosterService
func NewRosterService(
	tx repository.Transactor,
	tournaments repository.TournamentRepository,
	accounts repository.GameAccountRepository,
	teams repository.TeamRepository,
	members repository.MemberRepository,
	membership *MembershipService,
	logger *slog.Logger,
) *RosterService {
	return &RosterService{
		tx:          tx,
		tournaments: tournaments,
		accounts:    accounts,
		teams:       teams,
		members:     members,
		membership:  membership,
		logger:      logger,
	}
}

// CreateTeamWithLeader creates a team and its leader row atomically
func (s *RosterService) CreateTeamWithLeader(ctx context.Context, actor *domain.Actor, tournamentID uuid.UUID, teamName string, leaderAccountID uuid.UUID) (*domain.Team, error) {
	name, err := domain.NormalizeTeamName(teamName)
	if err != nil {
		return nil, err
	}

	team := &domain.Team{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Name:         name,
		Status:       domain.TeamStatusInvalid,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		tournament, err := s.tournaments.GetByID(ctx, tournamentID)
		if err != nil {
			return err
		}
		if !tournament.RegistrationOpen {
			return domain.ErrClosed
		}

		account, err := s.usableAccount(ctx, leaderAccountID, actor.UserID, tournament)
		if err != nil {
			return err
		}

		taken, err := s.members.UserInTournament(ctx, actor.UserID, tournamentID)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrAlreadyMember
		}

		if err := s.teams.Create(ctx, team); err != nil {
			return err
		}

		_, err = s.addMember(ctx, team, tournament, account, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recomputeAfter(ctx, team.ID)
	return s.GetTeam(ctx, team.ID)
}

// AddMember inserts a game account into the team, re-validating every roster
// invariant under the team row lock. Joins the caller's transaction if one is open;
// in that case the status recompute is left to the caller, to run after its commit.
func (s *RosterService) AddMember(ctx context.Context, teamID, gameAccountID uuid.UUID, isLeader bool) (*domain.TeamMember, error) {
	var member *domain.TeamMember
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		team, err := s.teams.LockByID(ctx, teamID)
		if err != nil {
			return err
		}

		tournament, err := s.tournaments.GetByID(ctx, team.TournamentID)
		if err != nil {
			return err
		}

		account, err := s.accounts.GetByID(ctx, gameAccountID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidAccount
		}
		if err != nil {
			return err
		}
		if !account.Active {
			return domain.ErrInvalidAccount
		}
		if account.GameID != tournament.GameID {
			return domain.ErrGameMismatch
		}

		member, err = s.addMember(ctx, team, tournament, account, isLeader)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !s.tx.InTx(ctx) {
		s.recomputeAfter(ctx, teamID)
	}
	return member, nil
}

// addMember assigns the slot and inserts the row. The team row must already be locked.
func (s *RosterService) addMember(ctx context.Context, team *domain.Team, tournament *domain.Tournament, account *domain.GameAccount, isLeader bool) (*domain.TeamMember, error) {
	members, err := s.members.ListByTeam(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	if len(members) >= tournament.TeamSize {
		return nil, domain.ErrCapacityExceeded
	}

	taken, err := s.members.UserInTournament(ctx, account.UserID, tournament.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrAlreadyMember
	}

	member := &domain.TeamMember{
		TeamID:        team.ID,
		GameAccountID: account.ID,
		UserID:        account.UserID,
		IngameName:    account.IngameName,
		IsLeader:      isLeader,
	}

	_, hasLeader := (&domain.Team{Members: members}).Leader()
	switch {
	case isLeader && hasLeader:
		return nil, domain.ErrDuplicateLeader
	case isLeader:
		member.Order = domain.LeaderOrder
	case !hasLeader:
		return nil, domain.ErrMissingLeader
	default:
		order, ok := domain.NextFollowerOrder(members, tournament.TeamSize)
		if !ok {
			return nil, domain.ErrCapacityExceeded
		}
		member.Order = order
	}

	if err := domain.CheckRoster(append(members, *member), tournament.TeamSize); err != nil {
		return nil, err
	}

	if err := s.members.Insert(ctx, tournament.ID, member); err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember removes a game account from the team. Removing the leader deletes
// the whole team together with its members and invites.
func (s *RosterService) RemoveMember(ctx context.Context, teamID, gameAccountID uuid.UUID) (bool, error) {
	var deleted bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.teams.LockByID(ctx, teamID); err != nil {
			return err
		}

		var err error
		deleted, err = s.removeMember(ctx, teamID, gameAccountID)
		return err
	})
	if err != nil {
		return false, err
	}

	if !deleted {
		s.recomputeAfter(ctx, teamID)
	}
	return deleted, nil
}

func (s *RosterService) removeMember(ctx context.Context, teamID, gameAccountID uuid.UUID) (bool, error) {
	members, err := s.members.ListByTeam(ctx, teamID)
	if err != nil {
		return false, err
	}

	for _, m := range members {
		if m.GameAccountID != gameAccountID {
			continue
		}
		if m.IsLeader {
			return true, s.teams.Delete(ctx, teamID)
		}
		return false, s.members.Delete(ctx, teamID, gameAccountID)
	}

	return false, domain.NotFound("team member")
}

// RecomputeStatus sets the team status from its member count and format size.
// Calling it repeatedly without roster changes yields the same status.
func (s *RosterService) RecomputeStatus(ctx context.Context, teamID uuid.UUID) (domain.TeamStatus, error) {
	var status domain.TeamStatus
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		team, err := s.teams.LockByID(ctx, teamID)
		if err != nil {
			return err
		}

		tournament, err := s.tournaments.GetByID(ctx, team.TournamentID)
		if err != nil {
			return err
		}

		members, err := s.members.ListByTeam(ctx, teamID)
		if err != nil {
			return err
		}

		status = domain.StatusForSize(len(members), tournament.TeamSize)
		if status == team.Status {
			return nil
		}
		return s.teams.SetStatus(ctx, teamID, status)
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

// recomputeAfter runs after a roster change has committed; failures are only logged
func (s *RosterService) recomputeAfter(ctx context.Context, teamID uuid.UUID) {
	if _, err := s.RecomputeStatus(context.WithoutCancel(ctx), teamID); err != nil {
		metrics.RecordRecomputeFailure()
		s.logger.Warn("failed to recompute team status", "team_id", teamID, "error", err)
	}
}

// IsLeader reports whether the user leads the team
func (s *RosterService) IsLeader(ctx context.Context, userID, teamID uuid.UUID) (bool, error) {
	return s.membership.IsUserTeamLeader(ctx, userID, teamID)
}

// IsMember reports whether the user is on the team roster
func (s *RosterService) IsMember(ctx context.Context, userID, teamID uuid.UUID) (bool, error) {
	return s.membership.IsUserInTeam(ctx, userID, teamID)
}

// LeaderOf returns the team's leader row
func (s *RosterService) LeaderOf(ctx context.Context, teamID uuid.UUID) (*domain.TeamMember, error) {
	return s.membership.LeaderOf(ctx, teamID)
}

// GetTeam returns the team with its roster ordered by slot
func (s *RosterService) GetTeam(ctx context.Context, teamID uuid.UUID) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	members, err := s.members.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	team.Members = members

	return team, nil
}

// RenameTeam changes the team name; only the leader may do it
func (s *RosterService) RenameTeam(ctx context.Context, actor *domain.Actor, teamID uuid.UUID, teamName string) (*domain.Team, error) {
	name, err := domain.NormalizeTeamName(teamName)
	if err != nil {
		return nil, err
	}
	if !actor.Leads(teamID) {
		return nil, domain.Forbidden("only the team leader can rename the team")
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.teams.LockByID(ctx, teamID); err != nil {
			return err
		}
		if err := s.requireLeader(ctx, actor.UserID, teamID); err != nil {
			return err
		}
		return s.teams.Rename(ctx, teamID, name)
	})
	if err != nil {
		return nil, err
	}

	return s.GetTeam(ctx, teamID)
}

// Leave removes the actor from the team. When the leader leaves the team is deleted.
func (s *RosterService) Leave(ctx context.Context, actor *domain.Actor, teamID uuid.UUID) (bool, error) {
	var deleted bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.teams.LockByID(ctx, teamID); err != nil {
			return err
		}

		member, err := s.members.FindByUser(ctx, teamID, actor.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Forbidden("user is not a member of this team")
		}
		if err != nil {
			return err
		}

		deleted, err = s.removeMember(ctx, teamID, member.GameAccountID)
		return err
	})
	if err != nil {
		return false, err
	}

	if !deleted {
		s.recomputeAfter(ctx, teamID)
	}
	return deleted, nil
}

// Kick removes a non-leader member; only the leader may do it
func (s *RosterService) Kick(ctx context.Context, actor *domain.Actor, teamID, gameAccountID uuid.UUID) (*domain.Team, error) {
	if !actor.Leads(teamID) {
		return nil, domain.Forbidden("only the team leader can remove members")
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.teams.LockByID(ctx, teamID); err != nil {
			return err
		}
		if err := s.requireLeader(ctx, actor.UserID, teamID); err != nil {
			return err
		}

		members, err := s.members.ListByTeam(ctx, teamID)
		if err != nil {
			return err
		}
		for _, m := range members {
			if m.GameAccountID != gameAccountID {
				continue
			}
			if m.IsLeader {
				return domain.Validation("game_account_id", "the leader can't be removed from the team")
			}
			return s.members.Delete(ctx, teamID, gameAccountID)
		}
		return domain.NotFound("team member")
	})
	if err != nil {
		return nil, err
	}

	s.recomputeAfter(ctx, teamID)
	return s.GetTeam(ctx, teamID)
}

// requireLeader re-checks leadership inside the transaction
func (s *RosterService) requireLeader(ctx context.Context, userID, teamID uuid.UUID) error {
	member, err := s.members.FindByUser(ctx, teamID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Forbidden("only the team leader can do this")
	}
	if err != nil {
		return err
	}
	if !member.IsLeader {
		return domain.Forbidden("only the team leader can do this")
	}
	return nil
}

// usableAccount loads the account and checks ownership, activeness and game
func (s *RosterService) usableAccount(ctx context.Context, accountID, userID uuid.UUID, tournament *domain.Tournament) (*domain.GameAccount, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidAccount
	}
	if err != nil {
		return nil, err
	}
	if !account.UsableBy(userID) {
		return nil, domain.ErrInvalidAccount
	}
	if account.GameID != tournament.GameID {
		return nil, domain.ErrGameMismatch
	}
	return account, nil
}
