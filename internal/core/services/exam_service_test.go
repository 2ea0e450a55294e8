package services_test

import (
	"context"
	"testing"

	"github.com/comitanigiacomo/kanso-study-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExamService(t *testing.T) {
	ctx := context.Background()
	day := domain.DateDay(2024, 5, 20)

	newSvc := func() *services.ExamService {
		return services.NewExamService(repository.NewInMemoryExamRepository(), nil)
	}

	t.Run("Success: Create and list", func(t *testing.T) {
		svc := newSvc()

		exam, err := svc.Create(ctx, services.CreateExamInput{
			UserID:           "u1",
			Title:            "Mock exam 1",
			ExamDate:         day,
			ElapsedDuration:  "01:30:00",
			QuestionsTotal:   80,
			QuestionsCorrect: 60,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, exam.ID)

		minutes, ok := exam.Minutes()
		assert.True(t, ok)
		assert.Equal(t, 90.0, minutes)

		list, err := svc.List(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Fail: Malformed duration is rejected", func(t *testing.T) {
		svc := newSvc()

		_, err := svc.Create(ctx, services.CreateExamInput{UserID: "u1", Title: "X", ExamDate: day, ElapsedDuration: "1:75:00"})
		assert.ErrorIs(t, err, domain.ErrInvalidElapsed)
	})

	t.Run("Update moves the exam to another day", func(t *testing.T) {
		svc := newSvc()
		exam, err := svc.Create(ctx, services.CreateExamInput{UserID: "u1", Title: "X", ExamDate: day, ElapsedDuration: "00:45:00"})
		require.NoError(t, err)

		moved, err := svc.Update(ctx, services.UpdateExamInput{
			ID:       exam.ID,
			UserID:   "u1",
			ExamDate: ptr(day.AddDays(1)),
			Version:  exam.Version,
		})
		require.NoError(t, err)

		d, ok := moved.Day()
		assert.True(t, ok)
		assert.Equal(t, day.AddDays(1), d)
		assert.Equal(t, 2, moved.Version)

		_, err = svc.Update(ctx, services.UpdateExamInput{ID: exam.ID, UserID: "u1", Title: ptr("Y"), Version: 1})
		assert.ErrorIs(t, err, domain.ErrExamConflict)
	})

	t.Run("Security: Ownership is enforced", func(t *testing.T) {
		svc := newSvc()
		exam, err := svc.Create(ctx, services.CreateExamInput{UserID: "u1", Title: "X", ExamDate: day, ElapsedDuration: "00:45:00"})
		require.NoError(t, err)

		_, err = svc.GetByID(ctx, exam.ID, "u2")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.ErrorIs(t, svc.Delete(ctx, exam.ID, "u2"), domain.ErrUnauthorized)

		require.NoError(t, svc.Delete(ctx, exam.ID, "u1"))
		_, err = svc.GetByID(ctx, exam.ID, "u1")
		assert.ErrorIs(t, err, domain.ErrExamNotFound)
	})
}
