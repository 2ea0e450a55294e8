package services

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/streak"
	"golang.org/x/sync/errgroup"
)

// history is the full activity log of one user plus the settings needed to read it.
type history struct {
	sessions []*domain.StudySession
	exams    []*domain.Exam
	settings *domain.Settings
}

func (h *history) daily() streak.DailyMinutes {
	return streak.BuildDailyMinutes(h.sessions, h.exams, h.settings.Location())
}

type historyLoader struct {
	sessions domain.SessionRepository
	exams    domain.ExamRepository
	settings domain.SettingsRepository
}

// load fetches sessions, exams and settings concurrently.
func (l historyLoader) load(ctx context.Context, userID string) (*history, error) {
	h := &history{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sessions, err := l.sessions.ListByUserID(gctx, userID)
		if err != nil {
			return fmt.Errorf("history: failed to load sessions: %w", err)
		}
		h.sessions = sessions
		return nil
	})
	g.Go(func() error {
		exams, err := l.exams.ListByUserID(gctx, userID)
		if err != nil {
			return fmt.Errorf("history: failed to load exams: %w", err)
		}
		h.exams = exams
		return nil
	})
	g.Go(func() error {
		settings, err := loadSettings(gctx, l.settings, userID)
		if err != nil {
			return err
		}
		h.settings = settings
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return h, nil
}
