package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("study session not found")
	ErrSessionConflict = errors.New("study session version conflict")
)

type SessionRepository interface {
	// Create persists a new session to the storage.
	Create(ctx context.Context, session *StudySession) error

	// Update modifies an existing session.
	// Implementations must handle Optimistic Locking (version check) to prevent data races.
	Update(ctx context.Context, session *StudySession) error

	// Delete performs a Soft Delete on the session.
	// It requires userID to ensure the user actually owns the session being deleted.
	Delete(ctx context.Context, id string, userID string) error

	// DeleteAllByUserID soft deletes the whole history of a user and reports how many rows changed.
	DeleteAllByUserID(ctx context.Context, userID string) (int64, error)

	// GetByID retrieves a single active (non-deleted) session by its ID.
	GetByID(ctx context.Context, id string) (*StudySession, error)

	// ListByUserID returns the full activity log of a user, oldest first.
	ListByUserID(ctx context.Context, userID string) ([]*StudySession, error)

	// ListByUserIDAndDateRange returns sessions with from <= occurred_at < to.
	ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*StudySession, error)

	// GetChanges returns all changes (creations, updates, soft-deletes)
	// that occurred after the 'since' timestamp, for offline-first clients.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*StudySession, error)
}
