package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

// PostgresSnapshotStore keeps each snapshot as one JSONB document.
type PostgresSnapshotStore struct {
	db *sqlx.DB
}

func NewPostgresSnapshotStore(db *sqlx.DB) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{db: db}
}

func (s *PostgresSnapshotStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("snapshot store: failed to encode: %w", err)
	}

	query := `
		INSERT INTO snapshots (code, user_id, created_at, size_bytes, payload)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = s.db.ExecContext(ctx, query, snapshot.Code, snapshot.UserID, snapshot.CreatedAt, len(payload), payload)
	if err != nil {
		return fmt.Errorf("snapshot store: failed to insert: %w", mapWriteError(err, errors.New("snapshot code already taken")))
	}
	return nil
}

func (s *PostgresSnapshotStore) Get(ctx context.Context, userID, code string) (*domain.Snapshot, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM snapshots WHERE code = $1 AND user_id = $2`, code, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("snapshot store: failed to load: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("snapshot store: failed to decode: %w", err)
	}
	return &snap, nil
}

func (s *PostgresSnapshotStore) ListByUserID(ctx context.Context, userID string) ([]*domain.SnapshotInfo, error) {
	infos := []*domain.SnapshotInfo{}
	query := `
		SELECT code, user_id, created_at, size_bytes FROM snapshots
		WHERE user_id = $1
		ORDER BY created_at DESC`

	if err := s.db.SelectContext(ctx, &infos, query, userID); err != nil {
		return nil, fmt.Errorf("snapshot store: failed to list: %w", err)
	}
	return infos, nil
}
