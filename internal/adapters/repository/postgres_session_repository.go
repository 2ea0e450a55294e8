package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

type PostgresSessionRepository struct {
	db *sqlx.DB
}

func NewPostgresSessionRepository(db *sqlx.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

// subject_id is nullable in the table; sessions without a subject read back as "".
const sessionColumns = `id, user_id, COALESCE(subject_id, '') AS subject_id, category,
	occurred_at, duration_seconds, questions_total, questions_correct, notes,
	version, created_at, updated_at, deleted_at`

func (r *PostgresSessionRepository) Create(ctx context.Context, session *domain.StudySession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Version == 0 {
		session.Version = 1
	}

	query := `
		INSERT INTO study_sessions (
			id, user_id, subject_id, category,
			occurred_at, duration_seconds, questions_total, questions_correct, notes,
			version, created_at, updated_at, deleted_at
		) VALUES (
			:id, :user_id, NULLIF(:subject_id, ''), :category,
			:occurred_at, :duration_seconds, :questions_total, :questions_correct, :notes,
			:version, :created_at, :updated_at, :deleted_at
		)`

	_, err := conn(ctx, r.db).NamedExecContext(ctx, query, session)
	if err != nil {
		return mapWriteError(err, domain.ErrSessionConflict)
	}
	return nil
}

func (r *PostgresSessionRepository) GetByID(ctx context.Context, id string) (*domain.StudySession, error) {
	var session domain.StudySession
	query := `SELECT ` + sessionColumns + ` FROM study_sessions WHERE id = $1 AND deleted_at IS NULL`

	err := conn(ctx, r.db).GetContext(ctx, &session, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *PostgresSessionRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.StudySession, error) {
	sessions := []*domain.StudySession{}

	query := `
		SELECT ` + sessionColumns + ` FROM study_sessions
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY occurred_at ASC`

	if err := conn(ctx, r.db).SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *PostgresSessionRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.StudySession, error) {
	sessions := []*domain.StudySession{}

	query := `
		SELECT ` + sessionColumns + ` FROM study_sessions
		WHERE user_id = $1
		  AND occurred_at >= $2
		  AND occurred_at < $3
		  AND deleted_at IS NULL
		ORDER BY occurred_at ASC`

	if err := conn(ctx, r.db).SelectContext(ctx, &sessions, query, userID, from, to); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *PostgresSessionRepository) Update(ctx context.Context, session *domain.StudySession) error {
	session.Version++
	session.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE study_sessions
		SET subject_id = NULLIF(:subject_id, ''),
		    category = :category,
		    occurred_at = :occurred_at,
		    duration_seconds = :duration_seconds,
		    questions_total = :questions_total,
		    questions_correct = :questions_correct,
		    notes = :notes,
		    version = :version,
		    updated_at = :updated_at
		WHERE id = :id
		  AND version = :version - 1
		  AND deleted_at IS NULL`

	result, err := conn(ctx, r.db).NamedExecContext(ctx, query, session)
	if err != nil {
		session.Version--
		return mapWriteError(err, domain.ErrSessionConflict)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		session.Version--
		found, _ := exists(ctx, conn(ctx, r.db), "study_sessions", session.ID)
		if !found {
			return domain.ErrSessionNotFound
		}
		return domain.ErrSessionConflict
	}

	return nil
}

func (r *PostgresSessionRepository) Delete(ctx context.Context, id string, userID string) error {
	now := time.Now().UTC()

	query := `
		UPDATE study_sessions
		SET deleted_at = $1,
		    updated_at = $1,
		    version = version + 1
		WHERE id = $2
		  AND user_id = $3
		  AND deleted_at IS NULL`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, now, id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

func (r *PostgresSessionRepository) DeleteAllByUserID(ctx context.Context, userID string) (int64, error) {
	query := `
		UPDATE study_sessions
		SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
		WHERE user_id = $1 AND deleted_at IS NULL`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresSessionRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.StudySession, error) {
	sessions := []*domain.StudySession{}

	query := `
		SELECT ` + sessionColumns + ` FROM study_sessions
		WHERE user_id = $1
		  AND updated_at > $2
		ORDER BY updated_at ASC`

	if err := conn(ctx, r.db).SelectContext(ctx, &sessions, query, userID, since); err != nil {
		return nil, err
	}
	return sessions, nil
}
