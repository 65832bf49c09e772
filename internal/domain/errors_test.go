package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	wrapped := fmt.Errorf("create team: %w", ErrTeamNameTaken)

	assert.ErrorIs(t, wrapped, ErrTeamNameTaken)
	assert.ErrorIs(t, wrapped, ErrConflict, "kind sentinel matches any reason")
	assert.NotErrorIs(t, wrapped, ErrPendingInviteExists, "same kind, different reason")
	assert.NotErrorIs(t, wrapped, ErrValidation)

	assert.ErrorIs(t, NotFound("team"), ErrNotFound)
	assert.ErrorIs(t, ErrInvalidToken, ErrUnauthorized)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "team_name: team name is required", Validation("team_name", "team name is required").Error())
	assert.Equal(t, "team not found", NotFound("team").Error())
	assert.Equal(t, "operation not allowed for the current user", ErrForbidden.Error())
}

func TestMapErrorToCode(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCode
	}{
		{err: ErrCapacityExceeded, want: "CAPACITY_EXCEEDED"},
		{err: fmt.Errorf("wrapped: %w", ErrGameMismatch), want: "GAME_MISMATCH"},
		{err: ErrNothingToCancel, want: "CONFLICT"},
		{err: Validation("status", "bad"), want: "VALIDATION_FAILED"},
		{err: errors.New("boom"), want: CodeInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToCode(tt.err))
		})
	}

	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.Equal(t, KindAlreadyMember, KindOf(ErrAlreadyMember))
}
