package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turnaplay/teamreg/internal/domain"
	"github.com/turnaplay/teamreg/internal/metrics"
	"github.com/turnaplay/teamreg/internal/repository"
)

// CancelResult describes what a cancellation did
type CancelResult struct {
	// Invite is the invite after cancellation; for a pending invite it is the deleted row
	Invite *domain.Invite `json:"invite"`
	// Deleted is true when a pending invite was removed outright
	Deleted bool `json:"deleted"`
	// MemberRemoved is true when an accepted invite was revoked and the membership removed
	MemberRemoved bool `json:"member_removed"`
}

// InviteOverview groups incoming and outgoing invites of a user
type InviteOverview struct {
	Incoming []*domain.Invite `json:"incoming"`
	Outgoing []*domain.Invite `json:"outgoing"`
}

// InviteService drives the invite lifecycle: pending -> accepted | rejected | deleted
type InviteService struct {
	tx          repository.Transactor
	users       repository.UserRepository
	tournaments repository.TournamentRepository
	teams       repository.TeamRepository
	members     repository.MemberRepository
	invites     repository.InviteRepository
	roster      *RosterService
	logger      *slog.Logger
}

// NewInviteService creates a new InviteService
func NewInviteService(
	tx repository.Transactor,
	users repository.UserRepository,
	tournaments repository.TournamentRepository,
	teams repository.TeamRepository,
	members repository.MemberRepository,
	invites repository.InviteRepository,
	roster *RosterService,
	logger *slog.Logger,
) *InviteService {
	return &InviteService{
		tx:          tx,
		users:       users,
		tournaments: tournaments,
		teams:       teams,
		members:     members,
		invites:     invites,
		roster:      roster,
		logger:      logger,
	}
}

// CreateInvite invites the user identified by username or email to the team.
// All preconditions are checked under the team row lock.
func (s *InviteService) CreateInvite(ctx context.Context, actor *domain.Actor, teamID uuid.UUID, target string) (*domain.Invite, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, domain.Validation("target", "username or email is required")
	}
	if !actor.Leads(teamID) {
		return nil, domain.Forbidden("only the team leader can send invites")
	}

	user, err := s.users.FindByLogin(ctx, target)
	if err != nil {
		return nil, err
	}
	if user.ID == actor.UserID {
		return nil, domain.Validation("target", "you can't invite yourself")
	}

	invite := &domain.Invite{
		ID:     uuid.New(),
		UserID: user.ID,
		TeamID: teamID,
		Status: domain.InviteStatusPending,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		team, err := s.teams.LockByID(ctx, teamID)
		if err != nil {
			return err
		}
		if err := s.roster.requireLeader(ctx, actor.UserID, teamID); err != nil {
			return err
		}

		tournament, err := s.tournaments.GetByID(ctx, team.TournamentID)
		if err != nil {
			return err
		}
		if !tournament.RegistrationOpen {
			return domain.ErrClosed
		}

		members, err := s.members.ListByTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if len(members) >= tournament.TeamSize {
			return domain.ErrCapacityExceeded
		}

		taken, err := s.members.UserInTournament(ctx, user.ID, tournament.ID)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrAlreadyMember
		}

		pending, err := s.invites.HasPending(ctx, user.ID, teamID)
		if err != nil {
			return err
		}
		if pending {
			return domain.ErrPendingInviteExists
		}

		return s.invites.Create(ctx, invite)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordInviteTransition(metrics.InviteCreated)
	s.logger.Info("invite created", "invite_id", invite.ID, "team_id", teamID, "user_id", user.ID)

	return s.invites.GetByID(ctx, invite.ID)
}

// Accept joins the invited user to the team with the chosen game account.
// The membership insert and the status change commit together or not at all.
func (s *InviteService) Accept(ctx context.Context, actor *domain.Actor, inviteID, gameAccountID uuid.UUID) (*domain.Invite, error) {
	var teamID uuid.UUID
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		invite, err := s.invites.LockByID(ctx, inviteID)
		if err != nil {
			return err
		}
		if invite.UserID != actor.UserID {
			return domain.Forbidden("only the invited user can accept the invite")
		}
		if !invite.IsPending() {
			return domain.ErrInviteProcessed
		}
		teamID = invite.TeamID

		team, err := s.teams.LockByID(ctx, invite.TeamID)
		if err != nil {
			return err
		}

		tournament, err := s.tournaments.GetByID(ctx, team.TournamentID)
		if err != nil {
			return err
		}
		if !tournament.RegistrationOpen {
			return domain.ErrClosed
		}

		members, err := s.members.ListByTeam(ctx, team.ID)
		if err != nil {
			return err
		}
		if len(members) >= tournament.TeamSize {
			return domain.ErrCapacityExceeded
		}

		account, err := s.roster.usableAccount(ctx, gameAccountID, invite.UserID, tournament)
		if err != nil {
			return err
		}

		if _, err := s.roster.addMember(ctx, team, tournament, account, false); err != nil {
			return err
		}

		return s.invites.SetStatus(ctx, inviteID, domain.InviteStatusAccepted)
	})
	if err != nil {
		metrics.RecordInviteTransition(metrics.InviteTransitionFailed)
		return nil, err
	}

	metrics.RecordInviteTransition(metrics.InviteAccepted)
	s.roster.recomputeAfter(ctx, teamID)

	return s.invites.GetByID(ctx, inviteID)
}

// Reject declines a pending invite; only the invited user may do it
func (s *InviteService) Reject(ctx context.Context, actor *domain.Actor, inviteID uuid.UUID) (*domain.Invite, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		invite, err := s.invites.LockByID(ctx, inviteID)
		if err != nil {
			return err
		}
		if invite.UserID != actor.UserID {
			return domain.Forbidden("only the invited user can reject the invite")
		}
		if !invite.IsPending() {
			return domain.ErrInviteProcessed
		}
		return s.invites.SetStatus(ctx, inviteID, domain.InviteStatusRejected)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordInviteTransition(metrics.InviteRejected)
	return s.invites.GetByID(ctx, inviteID)
}

// Cancel withdraws an invite on behalf of the team leader.
// seen is the status the leader acted on; empty means pending. If the invite moved
// on in the meantime the call fails with ErrInviteProcessed instead of acting on the
// new state.
// A pending invite is deleted. An accepted invite is revoked: the membership it
// created is removed and the invite goes back to rejected.
func (s *InviteService) Cancel(ctx context.Context, actor *domain.Actor, inviteID uuid.UUID, seen domain.InviteStatus) (*CancelResult, error) {
	if seen == "" {
		seen = domain.InviteStatusPending
	}

	var result *CancelResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		result = &CancelResult{}

		invite, err := s.invites.LockByID(ctx, inviteID)
		if err != nil {
			return err
		}
		if _, err := s.teams.LockByID(ctx, invite.TeamID); err != nil {
			return err
		}
		if err := s.roster.requireLeader(ctx, actor.UserID, invite.TeamID); err != nil {
			return err
		}

		if invite.Status == domain.InviteStatusRejected {
			return domain.ErrNothingToCancel
		}
		if invite.Status != seen {
			return domain.ErrInviteProcessed
		}

		switch invite.Status {
		case domain.InviteStatusPending:
			result.Invite = invite
			result.Deleted = true
			return s.invites.Delete(ctx, inviteID)

		case domain.InviteStatusAccepted:
			member, err := s.members.FindByUser(ctx, invite.TeamID, invite.UserID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				// member already left or was kicked
			case err != nil:
				return err
			default:
				if _, err := s.roster.removeMember(ctx, invite.TeamID, member.GameAccountID); err != nil {
					return err
				}
				result.MemberRemoved = true
			}
			if err := s.invites.SetStatus(ctx, inviteID, domain.InviteStatusRejected); err != nil {
				return err
			}
			result.Invite, err = s.invites.GetByID(ctx, inviteID)
			return err

		default:
			return domain.ErrNothingToCancel
		}
	})
	if err != nil {
		return nil, err
	}

	if result.Deleted {
		metrics.RecordInviteTransition(metrics.InviteCanceled)
		return result, nil
	}

	metrics.RecordInviteTransition(metrics.InviteRevoked)
	s.roster.recomputeAfter(ctx, result.Invite.TeamID)
	s.logger.Info("accepted invite revoked", "invite_id", inviteID, "member_removed", result.MemberRemoved)

	return result, nil
}

// IncomingFor lists invites addressed to the user, newest first
func (s *InviteService) IncomingFor(ctx context.Context, userID uuid.UUID, status domain.InviteStatus) ([]*domain.Invite, error) {
	return s.invites.ListIncoming(ctx, userID, status)
}

// OutgoingFor lists invites of teams the user leads, newest first
func (s *InviteService) OutgoingFor(ctx context.Context, userID uuid.UUID, status domain.InviteStatus) ([]*domain.Invite, error) {
	return s.invites.ListOutgoing(ctx, userID, status)
}

// Overview loads incoming and outgoing invites concurrently
func (s *InviteService) Overview(ctx context.Context, userID uuid.UUID, status domain.InviteStatus) (*InviteOverview, error) {
	overview := &InviteOverview{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overview.Incoming, err = s.invites.ListIncoming(gctx, userID, status)
		return err
	})
	g.Go(func() error {
		var err error
		overview.Outgoing, err = s.invites.ListOutgoing(gctx, userID, status)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}

// PendingCount returns the number of pending invites addressed to the user
func (s *InviteService) PendingCount(ctx context.Context, userID uuid.UUID) (int, error) {
	summary, err := s.invites.PollSummary(ctx, userID)
	if err != nil {
		return 0, err
	}
	return summary.PendingCount, nil
}

// LatestPendingTimestamp returns the creation time of the newest pending invite, or nil
func (s *InviteService) LatestPendingTimestamp(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	summary, err := s.invites.PollSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summary.LatestCreatedAt, nil
}

// Poll returns both polling aggregates from a single query
func (s *InviteService) Poll(ctx context.Context, userID uuid.UUID) (*domain.PollSummary, error) {
	return s.invites.PollSummary(ctx, userID)
}
