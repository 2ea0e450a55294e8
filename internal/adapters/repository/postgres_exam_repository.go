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

type PostgresExamRepository struct {
	db *sqlx.DB
}

func NewPostgresExamRepository(db *sqlx.DB) *PostgresExamRepository {
	return &PostgresExamRepository{db: db}
}

func (r *PostgresExamRepository) Create(ctx context.Context, exam *domain.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	if exam.Version == 0 {
		exam.Version = 1
	}

	query := `
		INSERT INTO exams (
			id, user_id, title, exam_date, elapsed_duration,
			questions_total, questions_correct, notes,
			version, created_at, updated_at, deleted_at
		) VALUES (
			:id, :user_id, :title, :exam_date, :elapsed_duration,
			:questions_total, :questions_correct, :notes,
			:version, :created_at, :updated_at, :deleted_at
		)`

	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, exam); err != nil {
		return mapWriteError(err, domain.ErrExamConflict)
	}
	return nil
}

func (r *PostgresExamRepository) Update(ctx context.Context, exam *domain.Exam) error {
	exam.Version++
	exam.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE exams
		SET title = :title,
		    exam_date = :exam_date,
		    elapsed_duration = :elapsed_duration,
		    questions_total = :questions_total,
		    questions_correct = :questions_correct,
		    notes = :notes,
		    version = :version,
		    updated_at = :updated_at
		WHERE id = :id
		  AND version = :version - 1
		  AND deleted_at IS NULL`

	result, err := conn(ctx, r.db).NamedExecContext(ctx, query, exam)
	if err != nil {
		exam.Version--
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		exam.Version--
		found, _ := exists(ctx, conn(ctx, r.db), "exams", exam.ID)
		if !found {
			return domain.ErrExamNotFound
		}
		return domain.ErrExamConflict
	}
	return nil
}

func (r *PostgresExamRepository) Delete(ctx context.Context, id string, userID string) error {
	query := `
		UPDATE exams
		SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrExamNotFound
	}
	return nil
}

func (r *PostgresExamRepository) DeleteAllByUserID(ctx context.Context, userID string) (int64, error) {
	query := `
		UPDATE exams
		SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
		WHERE user_id = $1 AND deleted_at IS NULL`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresExamRepository) GetByID(ctx context.Context, id string) (*domain.Exam, error) {
	var exam domain.Exam
	query := `SELECT * FROM exams WHERE id = $1 AND deleted_at IS NULL`

	if err := conn(ctx, r.db).GetContext(ctx, &exam, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExamNotFound
		}
		return nil, err
	}
	return &exam, nil
}

func (r *PostgresExamRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Exam, error) {
	exams := []*domain.Exam{}
	query := `
		SELECT * FROM exams
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY exam_date ASC NULLS FIRST, created_at ASC`

	if err := conn(ctx, r.db).SelectContext(ctx, &exams, query, userID); err != nil {
		return nil, err
	}
	return exams, nil
}
