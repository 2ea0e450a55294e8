package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

type PostgresSettingsRepository struct {
	db *sqlx.DB
}

func NewPostgresSettingsRepository(db *sqlx.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

func (r *PostgresSettingsRepository) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	var (
		s        domain.Settings
		restDays pq.Int64Array
	)

	query := `
		SELECT user_id, rest_days, timezone, current_subject_id, version, updated_at
		FROM user_settings
		WHERE user_id = $1`

	err := conn(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &restDays, &s.Timezone, &s.CurrentSubjectID, &s.Version, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("repository: get settings failed: %w", err)
	}

	s.RestDays = make(domain.RestDays, 0, len(restDays))
	for _, d := range restDays {
		s.RestDays = append(s.RestDays, int(d))
	}
	return &s, nil
}

// Save upserts the row. The stored version must equal settings.Version
// (0 meaning no row yet); on success settings.Version is bumped.
func (r *PostgresSettingsRepository) Save(ctx context.Context, settings *domain.Settings) error {
	restDays := make(pq.Int64Array, 0, len(settings.RestDays))
	for _, d := range settings.RestDays {
		restDays = append(restDays, int64(d))
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO user_settings (user_id, rest_days, timezone, current_subject_id, version, updated_at)
		VALUES ($1, $2, $3, $4, $5 + 1, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET rest_days = EXCLUDED.rest_days,
		    timezone = EXCLUDED.timezone,
		    current_subject_id = EXCLUDED.current_subject_id,
		    version = EXCLUDED.version,
		    updated_at = EXCLUDED.updated_at
		WHERE user_settings.version = $5`

	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		settings.UserID, restDays, settings.Timezone, settings.CurrentSubjectID, settings.Version, now,
	)
	if err != nil {
		return fmt.Errorf("repository: save settings failed: %w", mapWriteError(err, domain.ErrSettingsConflict))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSettingsConflict
	}

	settings.Version++
	settings.UpdatedAt = now
	return nil
}
