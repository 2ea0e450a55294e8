package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

type PostgresAchievementRepository struct {
	db *sqlx.DB
}

func NewPostgresAchievementRepository(db *sqlx.DB) *PostgresAchievementRepository {
	return &PostgresAchievementRepository{db: db}
}

func (r *PostgresAchievementRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.UnlockedAchievement, error) {
	unlocked := []*domain.UnlockedAchievement{}
	query := `
		SELECT user_id, code, unlocked_at FROM user_achievements
		WHERE user_id = $1
		ORDER BY unlocked_at ASC, code ASC`

	if err := conn(ctx, r.db).SelectContext(ctx, &unlocked, query, userID); err != nil {
		return nil, fmt.Errorf("repository: list achievements failed: %w", err)
	}
	return unlocked, nil
}

func (r *PostgresAchievementRepository) Unlock(ctx context.Context, a *domain.UnlockedAchievement) error {
	query := `
		INSERT INTO user_achievements (user_id, code, unlocked_at)
		VALUES (:user_id, :code, :unlocked_at)
		ON CONFLICT (user_id, code) DO NOTHING`

	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("repository: unlock achievement failed: %w", mapWriteError(err, err))
	}
	return nil
}

func (r *PostgresAchievementRepository) DeleteAllByUserID(ctx context.Context, userID string) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM user_achievements WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("repository: reset achievements failed: %w", err)
	}
	return nil
}
