package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/achievements"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/streak"
)

type AchievementService struct {
	repo   domain.AchievementRepository
	loader historyLoader
	now    func() time.Time
}

func NewAchievementService(repo domain.AchievementRepository, sessionRepo domain.SessionRepository, examRepo domain.ExamRepository, settingsRepo domain.SettingsRepository) *AchievementService {
	return &AchievementService{
		repo: repo,
		loader: historyLoader{
			sessions: sessionRepo,
			exams:    examRepo,
			settings: settingsRepo,
		},
		now: time.Now,
	}
}

// List returns the whole catalog with the unlock state of the user.
func (s *AchievementService) List(ctx context.Context, userID string) ([]domain.AchievementStatus, error) {
	unlocked, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	at := make(map[string]time.Time, len(unlocked))
	for _, u := range unlocked {
		at[u.Code] = u.UnlockedAt
	}

	catalog := achievements.Catalog()
	out := make([]domain.AchievementStatus, 0, len(catalog))
	for _, a := range catalog {
		status := domain.AchievementStatus{Achievement: a}
		if t, ok := at[a.Code]; ok {
			t := t
			status.Unlocked = true
			status.UnlockedAt = &t
		}
		out = append(out, status)
	}
	return out, nil
}

// Evaluate recomputes the catalog against the user's history and persists
// badges that were not unlocked before. It returns the new codes.
func (s *AchievementService) Evaluate(ctx context.Context, userID string) ([]string, error) {
	h, err := s.loader.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	loc := h.settings.Location()
	daily := h.daily()
	today := domain.DayOfIn(s.now(), loc)

	earned := achievements.Evaluate(achievements.History{
		Sessions:      h.sessions,
		Exams:         h.exams,
		Daily:         daily,
		CurrentStreak: streak.Current(daily, h.settings.RestDays, today),
		BestStreak:    streak.Best(daily, h.settings.RestDays),
		Location:      loc,
	})

	existing, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, u := range existing {
		have[u.Code] = true
	}

	now := s.now().UTC()
	fresh := make([]string, 0)
	for _, code := range earned {
		if have[code] {
			continue
		}
		err := s.repo.Unlock(ctx, &domain.UnlockedAchievement{
			UserID:     userID,
			Code:       code,
			UnlockedAt: now,
		})
		if err != nil {
			return fresh, fmt.Errorf("achievements: failed to unlock %s: %w", code, err)
		}
		fresh = append(fresh, code)
	}

	return fresh, nil
}

func (s *AchievementService) Reset(ctx context.Context, userID string) error {
	return s.repo.DeleteAllByUserID(ctx, userID)
}
