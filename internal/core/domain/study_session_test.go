package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewStudySession(t *testing.T) {
	loc, _ := time.LoadLocation("Europe/Rome")
	if loc == nil {
		loc = time.UTC
	}

	inputDate := time.Date(2026, 1, 28, 10, 0, 0, 0, loc)
	session := NewStudySession("user-456", "subject-123", inputDate, 1500)

	t.Run("Should set core identity fields correctly", func(t *testing.T) {
		assert.Equal(t, "subject-123", session.SubjectID)
		assert.Equal(t, "user-456", session.UserID)
		assert.Equal(t, 1500, session.DurationSeconds)
	})

	t.Run("Should initialize sync fields", func(t *testing.T) {
		assert.Equal(t, 1, session.Version, "Version must always start at 1 for optimistic locking")
		assert.False(t, session.CreatedAt.IsZero())
		assert.False(t, session.UpdatedAt.IsZero())
		assert.Nil(t, session.DeletedAt)
	})

	t.Run("Should store OccurredAt in UTC", func(t *testing.T) {
		assert.Equal(t, inputDate.UTC(), session.OccurredAt)
		assert.Equal(t, "UTC", session.OccurredAt.Location().String())
	})
}

func TestStudySession_DurationMinutes(t *testing.T) {
	assert.Equal(t, 25.0, (&StudySession{DurationSeconds: 1500}).DurationMinutes())
	assert.InDelta(t, 19.99, (&StudySession{DurationSeconds: 1199}).DurationMinutes(), 0.01)
	assert.Equal(t, 0.5, (&StudySession{DurationSeconds: 30}).DurationMinutes())
}

func TestStudySession_Validate(t *testing.T) {
	validDate := time.Now()

	tests := []struct {
		name    string
		session *StudySession
		wantErr error
	}{
		{
			name:    "Valid Session",
			session: &StudySession{UserID: "u-1", OccurredAt: validDate, DurationSeconds: 60},
		},
		{
			name:    "Valid Session without subject",
			session: &StudySession{UserID: "u-1", OccurredAt: validDate},
		},
		{
			name:    "Missing UserID",
			session: &StudySession{OccurredAt: validDate},
			wantErr: ErrInvalidUserID,
		},
		{
			name:    "Negative Duration",
			session: &StudySession{UserID: "u-1", OccurredAt: validDate, DurationSeconds: -1},
			wantErr: ErrNegativeDuration,
		},
		{
			name:    "Zero OccurredAt",
			session: &StudySession{UserID: "u-1"},
			wantErr: ErrOccurredAtRequired,
		},
		{
			name:    "Negative Questions",
			session: &StudySession{UserID: "u-1", OccurredAt: validDate, QuestionsTotal: -2},
			wantErr: ErrInvalidQuestions,
		},
		{
			name:    "More correct than answered",
			session: &StudySession{UserID: "u-1", OccurredAt: validDate, QuestionsTotal: 5, QuestionsCorrect: 6},
			wantErr: ErrTooManyCorrect,
		},
		{
			name:    "Notes too long",
			session: &StudySession{UserID: "u-1", OccurredAt: validDate, Notes: strings.Repeat("n", MaxNotesLen+1)},
			wantErr: ErrSessionNotesTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.session.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
