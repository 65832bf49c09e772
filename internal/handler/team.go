package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
	"github.com/turnaplay/teamreg/internal/service"
)

// TeamHandler обрабатывает эндпоинты команд
type TeamHandler struct {
	rosterService     *service.RosterService
	membershipService *service.MembershipService
	validator         *validator.Validate
}

// NewTeamHandler создает новый TeamHandler
func NewTeamHandler(rosterService *service.RosterService, membershipService *service.MembershipService, validator *validator.Validate) *TeamHandler {
	return &TeamHandler{
		rosterService:     rosterService,
		membershipService: membershipService,
		validator:         validator,
	}
}

// CreateTeamRequest представляет тело запроса на создание команды
type CreateTeamRequest struct {
	TournamentID  string `json:"tournament_id" validate:"required,uuid"`
	TeamName      string `json:"team_name" validate:"required,max=100"`
	GameAccountID string `json:"game_account_id" validate:"required,uuid"`
}

// RenameTeamRequest представляет тело запроса на переименование команды
type RenameTeamRequest struct {
	TeamName string `json:"team_name" validate:"required,max=100"`
}

// KickRequest представляет тело запроса на исключение участника
type KickRequest struct {
	GameAccountID string `json:"game_account_id" validate:"required,uuid"`
}

// TeamResponse представляет ответ с командой
type TeamResponse struct {
	Team *domain.Team `json:"team"`
}

// TeamsResponse представляет ответ со списком команд
type TeamsResponse struct {
	Teams []*domain.Team `json:"teams"`
}

// LeaveResponse представляет ответ на выход из команды
type LeaveResponse struct {
	TeamID      uuid.UUID `json:"team_id"`
	TeamDeleted bool      `json:"team_deleted"`
}

// Create обрабатывает POST /teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	var req CreateTeamRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	team, err := h.rosterService.CreateTeamWithLeader(
		r.Context(),
		actor,
		uuid.MustParse(req.TournamentID),
		req.TeamName,
		uuid.MustParse(req.GameAccountID),
	)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, TeamResponse{Team: team})
}

// Get обрабатывает GET /teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathUUID(r, "id")
	if err != nil {
		HandleError(w, r, err)
		return
	}

	team, err := h.rosterService.GetTeam(r.Context(), teamID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TeamResponse{Team: team})
}

// Rename обрабатывает POST /teams/{id}/rename
func (h *TeamHandler) Rename(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	teamID, err := pathUUID(r, "id")
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req RenameTeamRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	team, err := h.rosterService.RenameTeam(r.Context(), actor, teamID, req.TeamName)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TeamResponse{Team: team})
}

// Leave обрабатывает POST /teams/{id}/leave
func (h *TeamHandler) Leave(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	teamID, err := pathUUID(r, "id")
	if err != nil {
		HandleError(w, r, err)
		return
	}

	deleted, err := h.rosterService.Leave(r.Context(), actor, teamID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, LeaveResponse{TeamID: teamID, TeamDeleted: deleted})
}

// Kick обрабатывает POST /teams/{id}/kick
func (h *TeamHandler) Kick(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	teamID, err := pathUUID(r, "id")
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req KickRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	team, err := h.rosterService.Kick(r.Context(), actor, teamID, uuid.MustParse(req.GameAccountID))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TeamResponse{Team: team})
}

// Leading обрабатывает GET /teams/leading
func (h *TeamHandler) Leading(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	teams, err := h.membershipService.LeadingTeamsOf(r.Context(), actor.UserID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TeamsResponse{Teams: teams})
}
