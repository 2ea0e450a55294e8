package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/streak"
)

const (
	DefaultStripDays = 14
	MaxStripDays     = 92
)

// StreakService recomputes streaks from the full history on every call.
type StreakService struct {
	loader historyLoader
}

func NewStreakService(sessionRepo domain.SessionRepository, examRepo domain.ExamRepository, settingsRepo domain.SettingsRepository) *StreakService {
	return &StreakService{
		loader: historyLoader{
			sessions: sessionRepo,
			exams:    examRepo,
			settings: settingsRepo,
		},
	}
}

func (s *StreakService) Summary(ctx context.Context, userID string, now time.Time) (*domain.StreakSummary, error) {
	h, err := s.loader.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	daily := h.daily()
	rest := h.settings.RestDays
	today := domain.DayOfIn(now, h.settings.Location())

	current := streak.Current(daily, rest, today)
	best := streak.Best(daily, rest)
	minutes := daily.Minutes(today)

	return &domain.StreakSummary{
		Current:      current,
		Best:         best,
		CurrentLabel: streak.FormatDays(current),
		BestLabel:    streak.FormatDays(best),
		Today:        today,
		StudiedToday: minutes >= streak.ThresholdMinutes,
		TodayMinutes: minutes,
		RestDays:     rest,
	}, nil
}

// CalendarMonth is one month of classified days.
type CalendarMonth struct {
	Year  int
	Month time.Month
	Days  []domain.DayCell
}

// Label renders the month as YYYY-MM.
func (m *CalendarMonth) Label() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Calendar classifies every day of the given month. A zero year and month
// select the month that contains today in the user's timezone.
func (s *StreakService) Calendar(ctx context.Context, userID string, year int, month time.Month, now time.Time) (*CalendarMonth, error) {
	current := year == 0 && month == 0
	if !current && (month < time.January || month > time.December) {
		return nil, domain.ErrInvalidRange
	}

	h, err := s.loader.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := domain.DayOfIn(now, h.settings.Location())
	if current {
		t := today.Time()
		year, month = t.Year(), t.Month()
	}
	return &CalendarMonth{
		Year:  year,
		Month: month,
		Days:  streak.Month(h.daily(), h.settings.RestDays, today, year, month),
	}, nil
}

// Strip classifies the last days up to today, oldest first.
func (s *StreakService) Strip(ctx context.Context, userID string, days int, now time.Time) ([]domain.DayCell, error) {
	if days == 0 {
		days = DefaultStripDays
	}
	if days < 1 || days > MaxStripDays {
		return nil, domain.ErrInvalidRange
	}

	h, err := s.loader.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := domain.DayOfIn(now, h.settings.Location())
	return streak.Strip(h.daily(), h.settings.RestDays, today, days), nil
}
