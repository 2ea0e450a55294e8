package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidSession      = errors.New("invalid study session data")
	ErrNegativeDuration    = errors.New("duration cannot be negative")
	ErrOccurredAtRequired  = errors.New("occurred_at is required")
	ErrInvalidQuestions    = errors.New("questions cannot be negative")
	ErrTooManyCorrect      = errors.New("correct answers cannot exceed questions answered")
	ErrCategoryTooLong     = errors.New("category is too long (max 100 chars)")
	ErrSessionNotesTooLong = errors.New("notes are too long (max 5000 chars)")
)

const MaxNotesLen = 5000

// StudySession is one completed, timed or manually logged study session.
type StudySession struct {
	ID        string `json:"id" db:"id"`
	UserID    string `json:"user_id" db:"user_id"`
	SubjectID string `json:"subject_id,omitempty" db:"subject_id"`
	Category  string `json:"category,omitempty" db:"category"`

	OccurredAt       time.Time `json:"occurred_at" db:"occurred_at"`
	DurationSeconds  int       `json:"duration_seconds" db:"duration_seconds"`
	QuestionsTotal   int       `json:"questions_total" db:"questions_total"`
	QuestionsCorrect int       `json:"questions_correct" db:"questions_correct"`
	Notes            string    `json:"notes" db:"notes"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewStudySession(userID, subjectID string, occurredAt time.Time, durationSeconds int) *StudySession {
	now := time.Now().UTC()

	return &StudySession{
		UserID:          userID,
		SubjectID:       subjectID,
		OccurredAt:      occurredAt.UTC(),
		DurationSeconds: durationSeconds,

		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DurationMinutes may be fractional.
func (s *StudySession) DurationMinutes() float64 {
	return float64(s.DurationSeconds) / 60
}

func (s *StudySession) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return ErrInvalidUserID
	}
	if s.DurationSeconds < 0 {
		return ErrNegativeDuration
	}
	if s.OccurredAt.IsZero() {
		return ErrOccurredAtRequired
	}
	if s.QuestionsTotal < 0 || s.QuestionsCorrect < 0 {
		return ErrInvalidQuestions
	}
	if s.QuestionsCorrect > s.QuestionsTotal {
		return ErrTooManyCorrect
	}
	if len(s.Category) > MaxTitleLen {
		return ErrCategoryTooLong
	}
	if len(s.Notes) > MaxNotesLen {
		return ErrSessionNotesTooLong
	}
	return nil
}
