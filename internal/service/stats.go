package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turnaplay/teamreg/internal/domain"
)

// TeamStats represents registration statistics for one team
type TeamStats struct {
	TeamID         uuid.UUID         `json:"team_id"`
	TeamName       string            `json:"team_name"`
	Status         domain.TeamStatus `json:"status"`
	Members        int               `json:"members"`
	PendingInvites int               `json:"pending_invites"`
}

// RegistrationStats represents overall registration statistics of a tournament
type RegistrationStats struct {
	TournamentID    uuid.UUID   `json:"tournament_id"`
	TeamsTotal      int         `json:"teams_total"`
	TeamsValid      int         `json:"teams_valid"`
	TeamsInvalid    int         `json:"teams_invalid"`
	TeamsRegistered int         `json:"teams_registered"`
	Players         int         `json:"players"`
	PendingInvites  int         `json:"pending_invites"`
	Teams           []TeamStats `json:"teams"`
}

// StatsService handles statistics queries
type StatsService struct {
	db *pgxpool.Pool
}

// NewStatsService creates a new StatsService
func NewStatsService(db *pgxpool.Pool) *StatsService {
	return &StatsService{db: db}
}

// GetTournamentStats returns registration statistics for a tournament
func (s *StatsService) GetTournamentStats(ctx context.Context, tournamentID uuid.UUID) (*RegistrationStats, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tournaments WHERE id = $1)`, tournamentID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFound("tournament")
	}

	stats := &RegistrationStats{
		TournamentID: tournamentID,
		Teams:        make([]TeamStats, 0),
	}

	teamQuery := `
		SELECT
			t.id,
			t.team_name,
			t.status,
			(SELECT COUNT(*) FROM team_members m WHERE m.team_id = t.id) AS members,
			(SELECT COUNT(*) FROM tournament_invites i WHERE i.team_id = t.id AND i.status = 'pending') AS pending_invites
		FROM teams t
		WHERE t.tournament_id = $1
		ORDER BY members DESC, t.team_name
	`

	rows, err := s.db.Query(ctx, teamQuery, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ts TeamStats
		if err := rows.Scan(&ts.TeamID, &ts.TeamName, &ts.Status, &ts.Members, &ts.PendingInvites); err != nil {
			return nil, err
		}
		stats.Teams = append(stats.Teams, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, ts := range stats.Teams {
		stats.TeamsTotal++
		stats.Players += ts.Members
		stats.PendingInvites += ts.PendingInvites
		switch ts.Status {
		case domain.TeamStatusValid:
			stats.TeamsValid++
		case domain.TeamStatusRegistered:
			stats.TeamsRegistered++
		default:
			stats.TeamsInvalid++
		}
	}

	return stats, nil
}
