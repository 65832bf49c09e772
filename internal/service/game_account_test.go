package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnaplay/teamreg/internal/domain"
)

func TestGameAccountService(t *testing.T) {
	f := newFixture(t, 3)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	gameID := f.tournament.GameID

	t.Run("name is unique among active accounts of a game", func(t *testing.T) {
		account, err := f.accounts.Create(f.ctx, alice.ID, gameID, "  Shadow ")
		require.NoError(t, err)
		assert.Equal(t, "Shadow", account.IngameName)
		assert.True(t, account.Active)

		_, err = f.accounts.Create(f.ctx, bob.ID, gameID, "shadow")
		assert.ErrorIs(t, err, domain.ErrIngameNameTaken)

		// в другой игре имя свободно
		other := f.addTournament(5)
		_, err = f.accounts.Create(f.ctx, bob.ID, other.GameID, "Shadow")
		assert.NoError(t, err)
	})

	t.Run("one active account per game", func(t *testing.T) {
		_, err := f.accounts.Create(f.ctx, alice.ID, gameID, "Another")
		assert.ErrorIs(t, err, domain.ErrAccountForGame)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := f.accounts.Create(f.ctx, alice.ID, gameID, "   ")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := f.accounts.Create(f.ctx, bob.ID, uuid.New(), "Ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("deactivate frees the name and is idempotent", func(t *testing.T) {
		accounts, err := f.accounts.ListForUser(f.ctx, alice.ID, &gameID)
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		account := accounts[0]

		_, err = f.accounts.Deactivate(f.ctx, f.actor(t, bob), account.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		for range 2 {
			got, err := f.accounts.Deactivate(f.ctx, f.actor(t, alice), account.ID)
			require.NoError(t, err)
			assert.False(t, got.Active)
		}

		ok, err := f.accounts.IsOwnedAndActive(f.ctx, account.ID, alice.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		accounts, err = f.accounts.ListForUser(f.ctx, alice.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, accounts)

		_, err = f.accounts.Create(f.ctx, bob.ID, gameID, "Shadow")
		assert.NoError(t, err)
	})

	t.Run("admin can deactivate any account", func(t *testing.T) {
		admin := domain.User{ID: uuid.New(), Username: "admin", Email: "admin@example.com", Role: domain.RoleAdmin}
		f.store.AddUser(admin)

		accounts, err := f.accounts.ListForUser(f.ctx, bob.ID, &gameID)
		require.NoError(t, err)
		require.Len(t, accounts, 1)

		got, err := f.accounts.Deactivate(f.ctx, f.actor(t, &admin), accounts[0].ID)
		require.NoError(t, err)
		assert.False(t, got.Active)
	})

	t.Run("ownership check", func(t *testing.T) {
		account, err := f.accounts.Create(f.ctx, alice.ID, gameID, "Phoenix")
		require.NoError(t, err)

		ok, err := f.accounts.IsOwnedAndActive(f.ctx, account.ID, alice.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = f.accounts.IsOwnedAndActive(f.ctx, account.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = f.accounts.IsOwnedAndActive(f.ctx, uuid.New(), alice.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
