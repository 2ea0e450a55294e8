package achievements_test

import (
	"testing"
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/achievements"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionAt(ts time.Time, minutes int) *domain.StudySession {
	return &domain.StudySession{UserID: "u1", OccurredAt: ts, DurationSeconds: minutes * 60}
}

func TestCatalog(t *testing.T) {
	all := achievements.Catalog()
	require.NotEmpty(t, all)

	seen := map[string]bool{}
	for _, a := range all {
		assert.NotEmpty(t, a.Title)
		assert.False(t, seen[a.Code], "duplicate code %s", a.Code)
		seen[a.Code] = true
	}

	for _, code := range []string{"streak_7", "streak_30", "streak_100"} {
		_, ok := achievements.Lookup(code)
		assert.True(t, ok, code)
	}

	_, ok := achievements.Lookup("nope")
	assert.False(t, ok)
}

func TestEvaluate(t *testing.T) {
	noon := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("Empty history unlocks nothing", func(t *testing.T) {
		assert.Empty(t, achievements.Evaluate(achievements.History{}))
	})

	t.Run("First session", func(t *testing.T) {
		codes := achievements.Evaluate(achievements.History{
			Sessions: []*domain.StudySession{sessionAt(noon, 5)},
		})
		assert.Equal(t, []string{"first_session"}, codes)
	})

	t.Run("Streak thresholds use the current streak", func(t *testing.T) {
		tests := []struct {
			current int
			want    []string
			notWant []string
		}{
			{6, nil, []string{"streak_7"}},
			{7, []string{"streak_7"}, []string{"streak_30"}},
			{30, []string{"streak_7", "streak_30"}, []string{"streak_100"}},
			{100, []string{"streak_7", "streak_30", "streak_100"}, nil},
		}
		for _, tt := range tests {
			codes := achievements.Evaluate(achievements.History{CurrentStreak: tt.current, BestStreak: 200})
			for _, c := range tt.want {
				assert.Contains(t, codes, c)
			}
			for _, c := range tt.notWant {
				assert.NotContains(t, codes, c)
			}
		}
	})

	t.Run("Marathon and hours", func(t *testing.T) {
		var sessions []*domain.StudySession
		for i := 0; i < 5; i++ {
			sessions = append(sessions, sessionAt(noon.AddDate(0, 0, -i), 130))
		}
		sessions = append(sessions, sessionAt(noon.Add(3*time.Hour), 120))

		codes := achievements.Evaluate(achievements.History{Sessions: sessions})

		assert.Contains(t, codes, "marathon")
		assert.Contains(t, codes, "hours_10")
		assert.NotContains(t, codes, "hours_100")
	})

	t.Run("Exams count toward questions and accuracy", func(t *testing.T) {
		day := domain.DateDay(2024, time.January, 3)
		exam := domain.NewExam("u1", "Mock", day, "03:00:00")
		exam.QuestionsTotal = 120
		exam.QuestionsCorrect = 110

		codes := achievements.Evaluate(achievements.History{Exams: []*domain.Exam{exam}})

		assert.Contains(t, codes, "first_exam")
		assert.Contains(t, codes, "sharpshooter")
		assert.NotContains(t, codes, "questions_1000")
	})

	t.Run("Time of day badges follow the user's location", func(t *testing.T) {
		// 04:30 UTC is 05:30 in UTC+1
		s := sessionAt(time.Date(2024, 1, 10, 4, 30, 0, 0, time.UTC), 10)

		utc := achievements.Evaluate(achievements.History{Sessions: []*domain.StudySession{s}, Location: time.UTC})
		plusOne := achievements.Evaluate(achievements.History{Sessions: []*domain.StudySession{s}, Location: time.FixedZone("UTC+1", 3600)})

		assert.NotContains(t, utc, "early_bird")
		assert.NotContains(t, utc, "night_owl")
		assert.Contains(t, plusOne, "early_bird")
	})

	t.Run("Night owl", func(t *testing.T) {
		s := sessionAt(time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC), 10)
		codes := achievements.Evaluate(achievements.History{Sessions: []*domain.StudySession{s}})
		assert.Contains(t, codes, "night_owl")
	})
}
