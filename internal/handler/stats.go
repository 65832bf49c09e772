package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
	"github.com/turnaplay/teamreg/internal/service"
)

// StatsProvider возвращает статистику регистрации турнира
type StatsProvider interface {
	GetTournamentStats(ctx context.Context, tournamentID uuid.UUID) (*service.RegistrationStats, error)
}

// StatsHandler обрабатывает эндпоинты статистики
type StatsHandler struct {
	statsService StatsProvider
}

// NewStatsHandler создает новый StatsHandler
func NewStatsHandler(statsService StatsProvider) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetTournamentStats обрабатывает GET /stats?tournament_id=...
func (h *StatsHandler) GetTournamentStats(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := queryUUID(r, "tournament_id")
	if err != nil {
		HandleError(w, r, err)
		return
	}
	if tournamentID == nil {
		HandleError(w, r, domain.Validation("tournament_id", "query parameter is required"))
		return
	}

	stats, err := h.statsService.GetTournamentStats(r.Context(), *tournamentID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, stats)
}
