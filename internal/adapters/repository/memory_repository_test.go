package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

func TestInMemorySubjectRepository(t *testing.T) {
	repo := NewInMemorySubjectRepository()
	ctx := context.Background()

	s, _ := domain.NewSubject("user-1", "Histology")
	require.NoError(t, repo.Create(ctx, s))

	t.Run("Returned copies are isolated", func(t *testing.T) {
		fetched, err := repo.GetByID(ctx, s.ID)
		require.NoError(t, err)
		fetched.Title = "mutated"

		again, _ := repo.GetByID(ctx, s.ID)
		assert.Equal(t, "Histology", again.Title)
	})

	t.Run("Stale update conflicts", func(t *testing.T) {
		stale := *s
		require.NoError(t, repo.Update(ctx, s))
		assert.Equal(t, 2, s.Version)
		assert.ErrorIs(t, repo.Update(ctx, &stale), domain.ErrSubjectConflict)
	})

	t.Run("Soft delete hides but syncs", func(t *testing.T) {
		since := time.Now().UTC().Add(-time.Second)
		require.NoError(t, repo.Delete(ctx, s.ID))

		_, err := repo.GetByID(ctx, s.ID)
		assert.ErrorIs(t, err, domain.ErrSubjectNotFound)

		list, _ := repo.ListByUserID(ctx, "user-1")
		assert.Empty(t, list)

		changes, _ := repo.GetChanges(ctx, "user-1", since)
		require.Len(t, changes, 1)
		assert.NotNil(t, changes[0].DeletedAt)
	})
}

func TestInMemorySessionRepository_DateRange(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, domain.NewStudySession("user-1", "", base.AddDate(0, 0, 2-i), 1200)))
	}
	require.NoError(t, repo.Create(ctx, domain.NewStudySession("user-2", "", base, 1200)))

	all, err := repo.ListByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].OccurredAt.Equal(base), "sessions are listed oldest first")

	ranged, err := repo.ListByUserIDAndDateRange(ctx, "user-1", base, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	n, err := repo.DeleteAllByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	others, _ := repo.ListByUserID(ctx, "user-2")
	assert.Len(t, others, 1)
}

func TestInMemoryStores(t *testing.T) {
	ctx := context.Background()

	t.Run("Settings version check", func(t *testing.T) {
		repo := NewInMemorySettingsRepository()
		s := domain.DefaultSettings("user-1")
		require.NoError(t, repo.Save(ctx, s))

		stale := domain.DefaultSettings("user-1")
		assert.ErrorIs(t, repo.Save(ctx, stale), domain.ErrSettingsConflict)
	})

	t.Run("Achievement unlock is idempotent", func(t *testing.T) {
		repo := NewInMemoryAchievementRepository()
		a := &domain.UnlockedAchievement{UserID: "user-1", Code: "first_exam", UnlockedAt: time.Now()}
		require.NoError(t, repo.Unlock(ctx, a))
		require.NoError(t, repo.Unlock(ctx, a))

		list, _ := repo.ListByUserID(ctx, "user-1")
		assert.Len(t, list, 1)
	})

	t.Run("Timer store", func(t *testing.T) {
		store := NewInMemoryTimerStore()
		_, err := store.Get(ctx, "user-1")
		assert.ErrorIs(t, err, domain.ErrTimerNotFound)

		timer := domain.NewTimer("user-1", "", "reading", time.Now())
		require.NoError(t, store.Save(ctx, timer))

		loaded, err := store.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, domain.TimerRunning, loaded.State)

		require.NoError(t, store.Delete(ctx, "user-1"))
		_, err = store.Get(ctx, "user-1")
		assert.ErrorIs(t, err, domain.ErrTimerNotFound)
	})

	t.Run("User email is unique", func(t *testing.T) {
		repo := NewInMemoryUserRepository()
		u1 := &domain.User{ID: "id-1", Email: "same@kanso.app"}
		u2 := &domain.User{ID: "id-2", Email: "same@kanso.app"}
		require.NoError(t, repo.Create(ctx, u1))
		assert.ErrorIs(t, repo.Create(ctx, u2), domain.ErrEmailAlreadyExists)
	})
}
