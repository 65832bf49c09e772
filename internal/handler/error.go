package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/turnaplay/teamreg/internal/domain"
	"github.com/turnaplay/teamreg/internal/metrics"
	"github.com/turnaplay/teamreg/internal/middleware"
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail содержит код и описание ошибки
type ErrorDetail struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// statusByKind сопоставляет виды доменных ошибок с HTTP статусами
var statusByKind = map[domain.Kind]int{
	domain.KindValidation:       http.StatusBadRequest,
	domain.KindUnauthorized:     http.StatusUnauthorized,
	domain.KindForbidden:        http.StatusForbidden,
	domain.KindNotFound:         http.StatusNotFound,
	domain.KindConflict:         http.StatusConflict,
	domain.KindCapacityExceeded: http.StatusConflict,
	domain.KindAlreadyMember:    http.StatusConflict,
	domain.KindDuplicateLeader:  http.StatusConflict,
	domain.KindMissingLeader:    http.StatusConflict,
	domain.KindClosed:           http.StatusConflict,
	domain.KindInvalidAccount:   http.StatusUnprocessableEntity,
	domain.KindGameMismatch:     http.StatusUnprocessableEntity,
}

// RespondWithError отправляет ответ с ошибкой
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// HandleError преобразует доменные ошибки в HTTP ответы
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, string(domain.CodeInternal), "internal server error")
		return
	}

	metrics.RecordDomainError(de.Kind)

	status, ok := statusByKind[de.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error: ErrorDetail{
			Code:    string(domain.MapErrorToCode(err)),
			Field:   de.Field,
			Message: de.Error(),
		},
	})
}

// actorOrFail достает действующего пользователя, установленного AuthMiddleware
func actorOrFail(w http.ResponseWriter, r *http.Request) (*domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		HandleError(w, r, domain.ErrUnauthorized)
		return nil, false
	}
	return actor, true
}
