package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInviteStatus(t *testing.T) {
	for _, s := range []string{"", "pending", "accepted", "rejected"} {
		status, err := ParseInviteStatus(s)
		require.NoError(t, err)
		assert.Equal(t, InviteStatus(s), status)
	}

	_, err := ParseInviteStatus("revoked")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestActor(t *testing.T) {
	teamID := uuid.New()
	user := &User{ID: uuid.New(), Role: RoleAdmin}

	actor := NewActor(user, []uuid.UUID{teamID})
	assert.True(t, actor.Leads(teamID))
	assert.False(t, actor.Leads(uuid.New()))
	assert.True(t, actor.IsAdmin())

	account := &GameAccount{UserID: user.ID, Active: true}
	assert.True(t, account.UsableBy(user.ID))
	assert.False(t, account.UsableBy(uuid.New()))
	account.Active = false
	assert.False(t, account.UsableBy(user.ID))
}
