package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

const sqliteSnapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	code       TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	size_bytes INTEGER NOT NULL,
	payload    BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_user ON snapshots (user_id, created_at);
`

// SQLiteSnapshotStore keeps snapshots in a local database file, for
// deployments that run without PostgreSQL.
type SQLiteSnapshotStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteSnapshotStore(path string) (*SQLiteSnapshotStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	// modernc sqlite serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSnapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot schema: %w", err)
	}

	return &SQLiteSnapshotStore{path: path, db: db}, nil
}

func (s *SQLiteSnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteSnapshotStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("snapshot store: failed to encode: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (code, user_id, created_at, size_bytes, payload) VALUES (?, ?, ?, ?, ?)`,
		snapshot.Code, snapshot.UserID, snapshot.CreatedAt.UTC().Format(time.RFC3339Nano), len(payload), payload,
	)
	if err != nil {
		return fmt.Errorf("snapshot store: failed to insert: %w", err)
	}
	return nil
}

func (s *SQLiteSnapshotStore) Get(ctx context.Context, userID, code string) (*domain.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE code = ? AND user_id = ?`, code, userID,
	).Scan(&payload)
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

func (s *SQLiteSnapshotStore) ListByUserID(ctx context.Context, userID string) ([]*domain.SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, user_id, created_at, size_bytes FROM snapshots WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: failed to list: %w", err)
	}
	defer rows.Close()

	infos := []*domain.SnapshotInfo{}
	for rows.Next() {
		var (
			info    domain.SnapshotInfo
			created string
		)
		if err := rows.Scan(&info.Code, &info.UserID, &created, &info.SizeBytes); err != nil {
			return nil, fmt.Errorf("snapshot store: failed to scan: %w", err)
		}
		if info.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("snapshot store: bad created_at %q: %w", created, err)
		}
		infos = append(infos, &info)
	}
	return infos, rows.Err()
}
