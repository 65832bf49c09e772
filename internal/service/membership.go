package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
	"github.com/turnaplay/teamreg/internal/repository"
)

// MembershipService answers read-only membership questions over committed roster state
type MembershipService struct {
	users       repository.UserRepository
	tournaments repository.TournamentRepository
	teams       repository.TeamRepository
	members     repository.MemberRepository
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(
	users repository.UserRepository,
	tournaments repository.TournamentRepository,
	teams repository.TeamRepository,
	members repository.MemberRepository,
) *MembershipService {
	return &MembershipService{
		users:       users,
		tournaments: tournaments,
		teams:       teams,
		members:     members,
	}
}

// IsUserInTeam reports whether any of the user's game accounts is on the team roster
func (s *MembershipService) IsUserInTeam(ctx context.Context, userID, teamID uuid.UUID) (bool, error) {
	_, err := s.members.FindByUser(ctx, teamID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsUserTeamLeader reports whether the user is the team's current leader
func (s *MembershipService) IsUserTeamLeader(ctx context.Context, userID, teamID uuid.UUID) (bool, error) {
	member, err := s.members.FindByUser(ctx, teamID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return member.IsLeader, nil
}

// LeadingTeamsOf returns the teams the user currently leads
func (s *MembershipService) LeadingTeamsOf(ctx context.Context, userID uuid.UUID) ([]*domain.Team, error) {
	return s.teams.ListLedBy(ctx, userID)
}

// TeamGameOf derives the game a team plays from its tournament format
func (s *MembershipService) TeamGameOf(ctx context.Context, teamID uuid.UUID) (uuid.UUID, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return uuid.Nil, err
	}

	tournament, err := s.tournaments.GetByID(ctx, team.TournamentID)
	if err != nil {
		return uuid.Nil, err
	}

	return tournament.GameID, nil
}

// LeaderOf returns the leader row of the team
func (s *MembershipService) LeaderOf(ctx context.Context, teamID uuid.UUID) (*domain.TeamMember, error) {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, err
	}

	members, err := s.members.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	for i := range members {
		if members[i].IsLeader {
			return &members[i], nil
		}
	}
	return nil, domain.ErrMissingLeader
}

// ResolveActor loads the user's role and led teams once per request
func (s *MembershipService) ResolveActor(ctx context.Context, userID uuid.UUID) (*domain.Actor, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	teams, err := s.teams.ListLedBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	leading := make([]uuid.UUID, 0, len(teams))
	for _, t := range teams {
		leading = append(leading, t.ID)
	}

	return domain.NewActor(user, leading), nil
}
