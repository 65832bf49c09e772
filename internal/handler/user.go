package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
	"github.com/turnaplay/teamreg/internal/service"
)

// UserHandler обрабатывает эндпоинты текущего пользователя
type UserHandler struct {
	membershipService *service.MembershipService
	accountService    *service.GameAccountService
	inviteService     *service.InviteService
}

// NewUserHandler создает новый UserHandler
func NewUserHandler(membershipService *service.MembershipService, accountService *service.GameAccountService, inviteService *service.InviteService) *UserHandler {
	return &UserHandler{
		membershipService: membershipService,
		accountService:    accountService,
		inviteService:     inviteService,
	}
}

// MeResponse представляет профиль текущего пользователя
type MeResponse struct {
	UserID       uuid.UUID             `json:"user_id"`
	Role         domain.Role           `json:"role"`
	LeadingTeams []*domain.Team        `json:"leading_teams"`
	GameAccounts []*domain.GameAccount `json:"game_accounts"`
	Invites      *domain.PollSummary   `json:"invites"`
}

// Me обрабатывает GET /me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	teams, err := h.membershipService.LeadingTeamsOf(r.Context(), actor.UserID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	accounts, err := h.accountService.ListForUser(r.Context(), actor.UserID, nil)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	summary, err := h.inviteService.Poll(r.Context(), actor.UserID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, MeResponse{
		UserID:       actor.UserID,
		Role:         actor.Role,
		LeadingTeams: teams,
		GameAccounts: accounts,
		Invites:      summary,
	})
}
