package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
	"github.com/turnaplay/teamreg/internal/service"
)

// InviteHandler обрабатывает эндпоинты приглашений
type InviteHandler struct {
	inviteService *service.InviteService
	validator     *validator.Validate
}

// NewInviteHandler создает новый InviteHandler
func NewInviteHandler(inviteService *service.InviteService, validator *validator.Validate) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
		validator:     validator,
	}
}

// CreateInviteRequest представляет тело запроса на приглашение.
// Target это username или email приглашаемого пользователя.
type CreateInviteRequest struct {
	TeamID string `json:"team_id" validate:"required,uuid"`
	Target string `json:"target" validate:"required,max=254"`
}

// AcceptInviteRequest представляет тело запроса на принятие приглашения
type AcceptInviteRequest struct {
	GameAccountID string `json:"game_account_id" validate:"required,uuid"`
}

// InviteResponse представляет ответ с приглашением
type InviteResponse struct {
	Invite *domain.Invite `json:"invite"`
}

// InvitesResponse представляет ответ со списком приглашений
type InvitesResponse struct {
	Invites []*domain.Invite `json:"invites"`
}

// Create обрабатывает POST /invites
func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	var req CreateInviteRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	invite, err := h.inviteService.CreateInvite(r.Context(), actor, uuid.MustParse(req.TeamID), req.Target)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, InviteResponse{Invite: invite})
}

// Accept обрабатывает POST /invites/{id}/accept
func (h *InviteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	inviteID, err := pathUUID(r, "id")
	if err != nil {
		HandleError(w, r, err)
		return
	}

	var req AcceptInviteRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	invite, err := h.inviteService.Accept(r.Context(), actor, inviteID, uuid.MustParse(req.GameAccountID))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, InviteResponse{Invite: invite})
}

// Reject обрабатывает POST /invites/{id}/reject
func (h *InviteHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	inviteID, err := pathUUID(r, "id")
	if err != nil {
		HandleError(w, r, err)
		return
	}

	invite, err := h.inviteService.Reject(r.Context(), actor, inviteID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, InviteResponse{Invite: invite})
}

// Cancel обрабатывает POST /invites/{id}/cancel?status=...
// status это статус, который видел лидер; без него отменяется только ожидающее приглашение.
func (h *InviteHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	inviteID, err := pathUUID(r, "id")
	if err != nil {
		HandleError(w, r, err)
		return
	}

	seen, err := domain.ParseInviteStatus(r.URL.Query().Get("status"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	result, err := h.inviteService.Cancel(r.Context(), actor, inviteID, seen)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, result)
}

// Incoming обрабатывает GET /invites/incoming?status=...
func (h *InviteHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	status, err := domain.ParseInviteStatus(r.URL.Query().Get("status"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	invites, err := h.inviteService.IncomingFor(r.Context(), actor.UserID, status)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, InvitesResponse{Invites: invites})
}

// Outgoing обрабатывает GET /invites/outgoing?status=...
func (h *InviteHandler) Outgoing(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	status, err := domain.ParseInviteStatus(r.URL.Query().Get("status"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	invites, err := h.inviteService.OutgoingFor(r.Context(), actor.UserID, status)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, InvitesResponse{Invites: invites})
}

// Overview обрабатывает GET /invites?status=... (входящие и исходящие вместе)
func (h *InviteHandler) Overview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	status, err := domain.ParseInviteStatus(r.URL.Query().Get("status"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	overview, err := h.inviteService.Overview(r.Context(), actor.UserID, status)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, overview)
}

// Poll обрабатывает GET /invites/poll
func (h *InviteHandler) Poll(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	summary, err := h.inviteService.Poll(r.Context(), actor.UserID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, summary)
}
