package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

func TestSQLiteSnapshotStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "snapshots.db")
	store, err := NewSQLiteSnapshotStore(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	older := &domain.Snapshot{
		Code: "older00001", UserID: "user-1", FormatVersion: domain.SnapshotFormatVersion, CreatedAt: base,
		Subjects: []*domain.Subject{{ID: "s1", UserID: "user-1", Title: "Physiology", Version: 1}},
	}
	newer := &domain.Snapshot{
		Code: "newer00001", UserID: "user-1", FormatVersion: domain.SnapshotFormatVersion, CreatedAt: base.Add(time.Hour),
	}
	foreign := &domain.Snapshot{
		Code: "foreign001", UserID: "user-2", FormatVersion: domain.SnapshotFormatVersion, CreatedAt: base,
	}

	for _, s := range []*domain.Snapshot{older, newer, foreign} {
		require.NoError(t, store.Save(ctx, s))
	}

	t.Run("Get round trips the payload", func(t *testing.T) {
		loaded, err := store.Get(ctx, "user-1", older.Code)
		require.NoError(t, err)
		require.Len(t, loaded.Subjects, 1)
		assert.Equal(t, "Physiology", loaded.Subjects[0].Title)
		assert.True(t, loaded.CreatedAt.Equal(base))
	})

	t.Run("Get is scoped to the owner", func(t *testing.T) {
		_, err := store.Get(ctx, "user-1", foreign.Code)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("List is newest first", func(t *testing.T) {
		infos, err := store.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, infos, 2)
		assert.Equal(t, newer.Code, infos[0].Code)
		assert.Equal(t, older.Code, infos[1].Code)
		assert.Positive(t, infos[1].SizeBytes)
	})

	t.Run("Duplicate code is rejected", func(t *testing.T) {
		assert.Error(t, store.Save(ctx, older))
	})

	t.Run("Data survives reopen", func(t *testing.T) {
		require.NoError(t, store.Close())

		reopened, err := NewSQLiteSnapshotStore(path)
		require.NoError(t, err)
		defer reopened.Close()

		infos, err := reopened.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Len(t, infos, 2)
	})
}
