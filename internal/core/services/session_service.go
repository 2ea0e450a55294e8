package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/workers"
)

type SessionService struct {
	repo        domain.SessionRepository
	subjectRepo domain.SubjectRepository
	worker      *workers.AchievementWorker
}

func NewSessionService(repo domain.SessionRepository, subjectRepo domain.SubjectRepository, worker *workers.AchievementWorker) *SessionService {
	return &SessionService{
		repo:        repo,
		subjectRepo: subjectRepo,
		worker:      worker,
	}
}

type CreateSessionInput struct {
	UserID           string
	SubjectID        string
	Category         string
	OccurredAt       time.Time
	DurationSeconds  int
	QuestionsTotal   int
	QuestionsCorrect int
	Notes            string
}

// UpdateSessionInput carries a partial update: nil fields keep their value.
type UpdateSessionInput struct {
	ID               string
	UserID           string
	SubjectID        *string
	Category         *string
	OccurredAt       *time.Time
	DurationSeconds  *int
	QuestionsTotal   *int
	QuestionsCorrect *int
	Notes            *string
	Version          int
}

func (s *SessionService) checkSubject(ctx context.Context, subjectID, userID string) error {
	if subjectID == "" {
		return nil
	}
	subject, err := s.subjectRepo.GetByID(ctx, subjectID)
	if err != nil {
		return err
	}
	if subject.UserID != userID {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *SessionService) Create(ctx context.Context, input CreateSessionInput) (*domain.StudySession, error) {
	session := domain.NewStudySession(input.UserID, input.SubjectID, input.OccurredAt, input.DurationSeconds)
	session.Category = input.Category
	session.QuestionsTotal = input.QuestionsTotal
	session.QuestionsCorrect = input.QuestionsCorrect
	session.Notes = input.Notes

	if err := session.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkSubject(ctx, session.SubjectID, session.UserID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.worker.Enqueue(session.UserID)

	return session, nil
}

func (s *SessionService) Update(ctx context.Context, input UpdateSessionInput) (*domain.StudySession, error) {
	existing, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && existing.Version != input.Version {
		return nil, domain.ErrSessionConflict
	}

	if input.SubjectID != nil && *input.SubjectID != existing.SubjectID {
		if err := s.checkSubject(ctx, *input.SubjectID, input.UserID); err != nil {
			return nil, err
		}
		existing.SubjectID = *input.SubjectID
	}
	if input.Category != nil {
		existing.Category = *input.Category
	}
	if input.OccurredAt != nil {
		existing.OccurredAt = input.OccurredAt.UTC()
	}
	if input.DurationSeconds != nil {
		existing.DurationSeconds = *input.DurationSeconds
	}
	if input.QuestionsTotal != nil {
		existing.QuestionsTotal = *input.QuestionsTotal
	}
	if input.QuestionsCorrect != nil {
		existing.QuestionsCorrect = *input.QuestionsCorrect
	}
	if input.Notes != nil {
		existing.Notes = *input.Notes
	}

	if err := existing.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.worker.Enqueue(existing.UserID)

	return existing, nil
}

func (s *SessionService) GetByID(ctx context.Context, id string, userID string) (*domain.StudySession, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

// List returns sessions in [from, to). A zero bound is open.
func (s *SessionService) List(ctx context.Context, userID string, from, to time.Time) ([]*domain.StudySession, error) {
	if from.IsZero() && to.IsZero() {
		return s.repo.ListByUserID(ctx, userID)
	}
	if to.IsZero() {
		to = time.Now().UTC().AddDate(100, 0, 0)
	}
	if !from.Before(to) {
		return nil, domain.ErrInvalidRange
	}
	return s.repo.ListByUserIDAndDateRange(ctx, userID, from, to)
}

func (s *SessionService) Delete(ctx context.Context, id string, userID string) error {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if session.UserID != userID {
		return domain.ErrUnauthorized
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.worker.Enqueue(userID)

	return nil
}

// ClearHistory deletes the whole activity log of a user.
func (s *SessionService) ClearHistory(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.DeleteAllByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.worker.Enqueue(userID)
	return n, nil
}

func (s *SessionService) GetDelta(ctx context.Context, userID string, since time.Time) ([]*domain.StudySession, error) {
	return s.repo.GetChanges(ctx, userID, since)
}
