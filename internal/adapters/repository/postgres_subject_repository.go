package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PostgresSubjectRepository struct {
	db *sqlx.DB
}

func NewPostgresSubjectRepository(db *sqlx.DB) *PostgresSubjectRepository {
	return &PostgresSubjectRepository{db: db}
}

const subjectColumns = `id, user_id, title, description, color, icon, sort_order,
	archived_at, version, created_at, updated_at, deleted_at`

func (r *PostgresSubjectRepository) Create(ctx context.Context, s *domain.Subject) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Version == 0 {
		s.Version = 1
	}

	query := `
		INSERT INTO subjects (` + subjectColumns + `)
		VALUES (
			:id, :user_id, :title, :description, :color, :icon, :sort_order,
			:archived_at, :version, :created_at, :updated_at, :deleted_at
		)`

	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("failed to insert subject: %w", mapWriteError(err, domain.ErrSubjectConflict))
	}
	return nil
}

func (r *PostgresSubjectRepository) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	var s domain.Subject
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE id = $1 AND deleted_at IS NULL`

	if err := conn(ctx, r.db).GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &s, nil
}

func (r *PostgresSubjectRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Subject, error) {
	subjects := []*domain.Subject{}
	query := `
		SELECT ` + subjectColumns + ` FROM subjects
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY sort_order ASC, created_at ASC`

	if err := conn(ctx, r.db).SelectContext(ctx, &subjects, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return subjects, nil
}

func (r *PostgresSubjectRepository) Update(ctx context.Context, s *domain.Subject) error {
	s.Version++
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE subjects SET
			title = :title, description = :description, color = :color, icon = :icon,
			sort_order = :sort_order, archived_at = :archived_at,
			version = :version, updated_at = :updated_at
		WHERE id = :id
		  AND version = :version - 1
		  AND deleted_at IS NULL`

	res, err := conn(ctx, r.db).NamedExecContext(ctx, query, s)
	if err != nil {
		s.Version--
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		s.Version--
		found, checkErr := exists(ctx, conn(ctx, r.db), "subjects", s.ID)
		if checkErr != nil {
			return fmt.Errorf("existence check failed: %w", checkErr)
		}
		if !found {
			return domain.ErrSubjectNotFound
		}
		return domain.ErrSubjectConflict
	}
	return nil
}

func (r *PostgresSubjectRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE subjects
		SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
		WHERE id = $1 AND deleted_at IS NULL`

	res, err := conn(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSubjectNotFound
	}
	return nil
}

func (r *PostgresSubjectRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Subject, error) {
	subjects := []*domain.Subject{}
	query := `
		SELECT ` + subjectColumns + ` FROM subjects
		WHERE user_id = $1 AND updated_at > $2
		ORDER BY updated_at ASC`

	if err := conn(ctx, r.db).SelectContext(ctx, &subjects, query, userID, since); err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}
	return subjects, nil
}
