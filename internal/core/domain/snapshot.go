package domain

import (
	"errors"
	"time"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrSnapshotVersion  = errors.New("unsupported snapshot format version")
)

const SnapshotFormatVersion = 1

// Snapshot is a complete export of one user's data.
type Snapshot struct {
	Code          string                 `json:"code"`
	UserID        string                 `json:"user_id"`
	FormatVersion int                    `json:"format_version"`
	CreatedAt     time.Time              `json:"created_at"`
	Settings      *Settings              `json:"settings"`
	Subjects      []*Subject             `json:"subjects"`
	Sessions      []*StudySession        `json:"sessions"`
	Exams         []*Exam                `json:"exams"`
	Achievements  []*UnlockedAchievement `json:"achievements"`
}

// SnapshotInfo is the listing view of a stored snapshot.
type SnapshotInfo struct {
	Code      string    `json:"code" db:"code"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	SizeBytes int       `json:"size_bytes" db:"size_bytes"`
}
