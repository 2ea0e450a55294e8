package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrSubjectConflict = errors.New("subject version conflict")
)

type SubjectRepository interface {
	// Create persists a new subject.
	Create(ctx context.Context, subject *Subject) error

	// GetByID retrieves an active (non-deleted) subject by its unique identifier.
	GetByID(ctx context.Context, id string) (*Subject, error)

	// ListByUserID retrieves all active subjects of a user ordered by sort order.
	ListByUserID(ctx context.Context, userID string) ([]*Subject, error)

	// Update modifies an existing subject.
	// Implementations must reject stale versions with ErrSubjectConflict and bump Version on success.
	Update(ctx context.Context, subject *Subject) error

	// Delete performs a soft delete.
	Delete(ctx context.Context, id string) error

	// GetChanges returns creations, updates and soft deletes after 'since'.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Subject, error)
}

type ExamRepository interface {
	Create(ctx context.Context, exam *Exam) error

	// Update must reject stale versions with ErrExamConflict and bump Version on success.
	Update(ctx context.Context, exam *Exam) error

	Delete(ctx context.Context, id string, userID string) error
	DeleteAllByUserID(ctx context.Context, userID string) (int64, error)
	GetByID(ctx context.Context, id string) (*Exam, error)

	// ListByUserID returns the full exam log of a user, oldest first.
	ListByUserID(ctx context.Context, userID string) ([]*Exam, error)
}

type SettingsRepository interface {
	// Get returns ErrSettingsNotFound when the user never saved settings.
	Get(ctx context.Context, userID string) (*Settings, error)

	// Save inserts or replaces the settings row and bumps Version.
	Save(ctx context.Context, settings *Settings) error
}

type AchievementRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]*UnlockedAchievement, error)

	// Unlock is idempotent: unlocking an already unlocked code is a no-op.
	Unlock(ctx context.Context, a *UnlockedAchievement) error

	DeleteAllByUserID(ctx context.Context, userID string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// TimerStore keeps the running timer of each user so it survives reloads.
type TimerStore interface {
	Get(ctx context.Context, userID string) (*Timer, error)

	// Create stores a new timer only when the user has none and returns
	// ErrTimerAlreadyRunning otherwise.
	Create(ctx context.Context, timer *Timer) error

	Save(ctx context.Context, timer *Timer) error
	Delete(ctx context.Context, userID string) error
}

type SnapshotStore interface {
	Save(ctx context.Context, snapshot *Snapshot) error
	Get(ctx context.Context, userID, code string) (*Snapshot, error)
	ListByUserID(ctx context.Context, userID string) ([]*SnapshotInfo, error)
}

// Transactor runs fn so that the writes it makes for userID through the
// repositories of one backend are applied together or not at all. The ctx
// passed to fn must be used for every repository call inside it.
type Transactor interface {
	WithinTx(ctx context.Context, userID string, fn func(ctx context.Context) error) error
}
