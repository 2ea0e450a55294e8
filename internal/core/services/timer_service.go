package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

// TimerView is a timer together with its elapsed time at read time.
type TimerView struct {
	*domain.Timer
	ElapsedSeconds int `json:"elapsed_seconds"`
}

type TimerService struct {
	store       domain.TimerStore
	subjectRepo domain.SubjectRepository
	sessions    *SessionService
	now         func() time.Time
}

func NewTimerService(store domain.TimerStore, subjectRepo domain.SubjectRepository, sessions *SessionService) *TimerService {
	return &TimerService{
		store:       store,
		subjectRepo: subjectRepo,
		sessions:    sessions,
		now:         time.Now,
	}
}

func (s *TimerService) view(t *domain.Timer) *TimerView {
	return &TimerView{Timer: t, ElapsedSeconds: t.Elapsed(s.now())}
}

func (s *TimerService) Start(ctx context.Context, userID, subjectID, category string) (*TimerView, error) {
	_, err := s.store.Get(ctx, userID)
	if err == nil {
		return nil, domain.ErrTimerAlreadyRunning
	}
	if !errors.Is(err, domain.ErrTimerNotFound) {
		return nil, err
	}

	if subjectID != "" {
		subject, err := s.subjectRepo.GetByID(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		if subject.UserID != userID {
			return nil, domain.ErrUnauthorized
		}
	}

	t := domain.NewTimer(userID, subjectID, category, s.now())
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return s.view(t), nil
}

func (s *TimerService) Get(ctx context.Context, userID string) (*TimerView, error) {
	t, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(t), nil
}

func (s *TimerService) Pause(ctx context.Context, userID string) (*TimerView, error) {
	t, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := t.Pause(s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, t); err != nil {
		return nil, err
	}
	return s.view(t), nil
}

func (s *TimerService) Resume(ctx context.Context, userID string) (*TimerView, error) {
	t, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := t.Resume(s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, t); err != nil {
		return nil, err
	}
	return s.view(t), nil
}

// Discard drops the timer without recording anything.
func (s *TimerService) Discard(ctx context.Context, userID string) error {
	if _, err := s.store.Get(ctx, userID); err != nil {
		return err
	}
	return s.store.Delete(ctx, userID)
}

// Finish stops the timer and records its elapsed time as a study session
// starting when the timer was first started. The timer is removed before the
// session is written and put back if that write fails, so a retried Finish
// never records the same session twice.
func (s *TimerService) Finish(ctx context.Context, userID, notes string) (*domain.StudySession, error) {
	t, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	elapsed := t.Elapsed(s.now())

	if err := s.store.Delete(ctx, userID); err != nil {
		return nil, err
	}

	session, err := s.sessions.Create(ctx, CreateSessionInput{
		UserID:          userID,
		SubjectID:       t.SubjectID,
		Category:        t.Category,
		OccurredAt:      t.StartedAt,
		DurationSeconds: elapsed,
		Notes:           notes,
	})
	if err != nil {
		if restoreErr := s.store.Create(ctx, t); restoreErr != nil {
			zap.L().Error("timer lost after failed finish",
				zap.String("user_id", userID), zap.NamedError("restore_error", restoreErr), zap.Error(err))
		}
		return nil, err
	}
	return session, nil
}
