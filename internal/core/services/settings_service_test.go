package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/comitanigiacomo/kanso-study-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsService(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults when nothing is stored", func(t *testing.T) {
		svc := services.NewSettingsService(repository.NewInMemorySettingsRepository())

		s, err := svc.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.RestDays{}, s.RestDays)
		assert.Equal(t, domain.DefaultTimezone, s.Timezone)
		assert.Equal(t, 0, s.Version)
	})

	t.Run("Rest days are normalized and versioned", func(t *testing.T) {
		svc := services.NewSettingsService(repository.NewInMemorySettingsRepository())

		s, err := svc.SaveRestDays(ctx, "u1", []int{6, 0, 6}, 0)
		require.NoError(t, err)
		assert.Equal(t, domain.RestDays{0, 6}, s.RestDays)
		assert.Equal(t, 1, s.Version)

		_, err = svc.SaveRestDays(ctx, "u1", []int{1}, 5)
		assert.ErrorIs(t, err, domain.ErrSettingsConflict)

		_, err = svc.SaveRestDays(ctx, "u1", []int{7}, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidRestDays)

		s, err = svc.SaveRestDays(ctx, "u1", nil, 1)
		require.NoError(t, err)
		assert.Empty(t, s.RestDays)
	})

	t.Run("Timezone must load", func(t *testing.T) {
		svc := services.NewSettingsService(repository.NewInMemorySettingsRepository())

		_, err := svc.SetTimezone(ctx, "u1", "Mars/Olympus", 0)
		assert.ErrorIs(t, err, domain.ErrInvalidTimezone)

		s, err := svc.SetTimezone(ctx, "u1", "", 0)
		require.NoError(t, err)
		assert.Equal(t, "UTC", s.Timezone)
	})

	t.Run("Storage errors are wrapped", func(t *testing.T) {
		repo := new(MockSettingsRepo)
		svc := services.NewSettingsService(repo)
		dbErr := errors.New("boom")

		repo.On("Get", ctx, "u1").Return(nil, dbErr)

		_, err := svc.Get(ctx, "u1")
		assert.ErrorIs(t, err, dbErr)
	})
}
