package domain

import (
	"errors"
	"fmt"
)

// Kind классифицирует доменную ошибку. Значение используется и как код ошибки API.
type Kind string

// Виды доменных ошибок
const (
	KindValidation       Kind = "VALIDATION_FAILED"
	KindConflict         Kind = "CONFLICT"
	KindCapacityExceeded Kind = "CAPACITY_EXCEEDED"
	KindAlreadyMember    Kind = "ALREADY_MEMBER"
	KindDuplicateLeader  Kind = "DUPLICATE_LEADER"
	KindMissingLeader    Kind = "MISSING_LEADER"
	KindInvalidAccount   Kind = "INVALID_ACCOUNT"
	KindGameMismatch     Kind = "GAME_MISMATCH"
	KindForbidden        Kind = "FORBIDDEN"
	KindNotFound         Kind = "NOT_FOUND"
	KindClosed           Kind = "CLOSED"
	KindUnauthorized     Kind = "UNAUTHORIZED"
)

var defaultMessages = map[Kind]string{
	KindValidation:       "validation failed",
	KindConflict:         "state was changed by another request",
	KindCapacityExceeded: "team is already full",
	KindAlreadyMember:    "user already belongs to a team in this tournament",
	KindDuplicateLeader:  "team already has a leader",
	KindMissingLeader:    "team must have a leader",
	KindInvalidAccount:   "game account is not active or not owned by the user",
	KindGameMismatch:     "game account does not match tournament game",
	KindForbidden:        "operation not allowed for the current user",
	KindNotFound:         "resource not found",
	KindClosed:           "tournament registration is closed",
	KindUnauthorized:     "unauthorized",
}

// Error описывает нарушение бизнес-правила. Field заполняется для ошибок валидации.
type Error struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *Error) Error() string {
	msg := e.Reason
	if msg == "" {
		msg = defaultMessages[e.Kind]
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, msg)
	}
	return msg
}

// Is сравнивает ошибки по виду; если у target задана причина, она тоже должна совпасть
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// Общие ошибки по видам (сравниваются только по Kind)
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

// Конкретные ошибки бизнес-правил
var (
	ErrCapacityExceeded = &Error{Kind: KindCapacityExceeded, Reason: "team is already full"}
	ErrAlreadyMember    = &Error{Kind: KindAlreadyMember, Reason: "user already belongs to a team in this tournament"}
	ErrDuplicateLeader  = &Error{Kind: KindDuplicateLeader, Reason: "team already has a leader"}
	ErrMissingLeader    = &Error{Kind: KindMissingLeader, Reason: "team must have a leader"}
	ErrInvalidAccount   = &Error{Kind: KindInvalidAccount, Reason: "game account is not active or not owned by the user"}
	ErrGameMismatch     = &Error{Kind: KindGameMismatch, Reason: "game account does not match tournament game"}
	ErrClosed           = &Error{Kind: KindClosed, Reason: "tournament registration is closed"}

	ErrIngameNameTaken     = Conflict("this in-game name has already been used for this game")
	ErrAccountForGame      = Conflict("user already has an active account for this game")
	ErrTeamNameTaken       = Conflict("team name is already used in this tournament")
	ErrSlotTaken           = Conflict("team slot is already taken")
	ErrPendingInviteExists = Conflict("there is already a pending invite for this user and team")
	ErrInviteProcessed     = Conflict("invite already processed")
	ErrNothingToCancel     = Conflict("nothing to cancel")
	ErrConcurrentUpdate    = Conflict("concurrent update, please retry")

	ErrInvalidToken = &Error{Kind: KindUnauthorized, Reason: "invalid token"}
)

// Validation создает ошибку валидации для поля
func Validation(field, reason string) *Error {
	return &Error{Kind: KindValidation, Field: field, Reason: reason}
}

// Conflict создает ошибку конфликта состояния
func Conflict(reason string) *Error {
	return &Error{Kind: KindConflict, Reason: reason}
}

// Forbidden создает ошибку недостатка прав
func Forbidden(reason string) *Error {
	return &Error{Kind: KindForbidden, Reason: reason}
}

// NotFound создает ошибку отсутствующей сущности
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Reason: entity + " not found"}
}

// KindOf возвращает вид доменной ошибки или пустую строку для прочих ошибок
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// ErrorCode представляет коды ошибок API
type ErrorCode string

// CodeInternal возвращается для ошибок, не относящихся к доменным
const CodeInternal ErrorCode = "INTERNAL_ERROR"

// MapErrorToCode преобразует доменные ошибки в коды ошибок API
func MapErrorToCode(err error) ErrorCode {
	if kind := KindOf(err); kind != "" {
		return ErrorCode(kind)
	}
	return CodeInternal
}
