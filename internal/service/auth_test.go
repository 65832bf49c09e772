package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnaplay/teamreg/internal/domain"
	"github.com/turnaplay/teamreg/internal/repository/memory"
	"github.com/turnaplay/teamreg/internal/service"
)

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	user := domain.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com"}
	store.AddUser(user)

	auth := service.NewAuthService(store.Users(), "secret", time.Hour)

	t.Run("token round trip", func(t *testing.T) {
		token, err := auth.Login(ctx, user.ID)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		userID, err := auth.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := auth.Login(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("foreign secret", func(t *testing.T) {
		other := service.NewAuthService(store.Users(), "other-secret", time.Hour)
		token, err := other.Login(ctx, user.ID)
		require.NoError(t, err)

		_, err = auth.ValidateToken(token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := service.NewAuthService(store.Users(), "secret", -time.Minute)
		token, err := expired.Login(ctx, user.ID)
		require.NoError(t, err)

		_, err = auth.ValidateToken(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := auth.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
