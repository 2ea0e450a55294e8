package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

func TestPostgresUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	t.Run("Should create and read back a user", func(t *testing.T) {
		email := fmt.Sprintf("test_%s@example.com", uuid.NewString())
		user, err := domain.NewUser(uuid.NewString(), email, "passwordStrong123")
		require.NoError(t, err)

		require.NoError(t, repo.Create(ctx, user))

		byEmail, err := repo.GetByEmail(ctx, user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.False(t, byEmail.CreatedAt.IsZero())

		byID, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, byID.Email)
	})

	t.Run("Should fail on duplicate email", func(t *testing.T) {
		email := fmt.Sprintf("duplicate_%s@example.com", uuid.NewString())
		user1 := &domain.User{ID: uuid.NewString(), Email: email, PasswordHash: "hash"}
		require.NoError(t, repo.Create(ctx, user1))

		user2 := &domain.User{ID: uuid.NewString(), Email: email, PasswordHash: "hash"}
		assert.ErrorIs(t, repo.Create(ctx, user2), domain.ErrEmailAlreadyExists)
	})

	t.Run("Should return ErrUserNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		_, err = repo.GetByEmail(ctx, "nonexistent@ghost.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
