package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
	"github.com/turnaplay/teamreg/internal/service"
)

// GameAccountHandler обрабатывает эндпоинты игровых аккаунтов
type GameAccountHandler struct {
	accountService *service.GameAccountService
	validator      *validator.Validate
}

// NewGameAccountHandler создает новый GameAccountHandler
func NewGameAccountHandler(accountService *service.GameAccountService, validator *validator.Validate) *GameAccountHandler {
	return &GameAccountHandler{
		accountService: accountService,
		validator:      validator,
	}
}

// CreateGameAccountRequest представляет тело запроса на создание аккаунта
type CreateGameAccountRequest struct {
	GameID     string `json:"game_id" validate:"required,uuid"`
	IngameName string `json:"ingame_name" validate:"required,max=100"`
}

// GameAccountResponse представляет ответ с аккаунтом
type GameAccountResponse struct {
	GameAccount *domain.GameAccount `json:"game_account"`
}

// GameAccountsResponse представляет ответ со списком аккаунтов
type GameAccountsResponse struct {
	GameAccounts []*domain.GameAccount `json:"game_accounts"`
}

// Create обрабатывает POST /game-accounts
func (h *GameAccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	var req CreateGameAccountRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		HandleError(w, r, err)
		return
	}

	account, err := h.accountService.Create(r.Context(), actor.UserID, uuid.MustParse(req.GameID), req.IngameName)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, GameAccountResponse{GameAccount: account})
}

// List обрабатывает GET /game-accounts?game_id=...
func (h *GameAccountHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	gameID, err := queryUUID(r, "game_id")
	if err != nil {
		HandleError(w, r, err)
		return
	}

	accounts, err := h.accountService.ListForUser(r.Context(), actor.UserID, gameID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, GameAccountsResponse{GameAccounts: accounts})
}

// Deactivate обрабатывает POST /game-accounts/{id}/deactivate
func (h *GameAccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	accountID, err := pathUUID(r, "id")
	if err != nil {
		HandleError(w, r, err)
		return
	}

	account, err := h.accountService.Deactivate(r.Context(), actor, accountID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, GameAccountResponse{GameAccount: account})
}
