package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/workers"
)

type ExamService struct {
	repo   domain.ExamRepository
	worker *workers.AchievementWorker
}

func NewExamService(repo domain.ExamRepository, worker *workers.AchievementWorker) *ExamService {
	return &ExamService{
		repo:   repo,
		worker: worker,
	}
}

type CreateExamInput struct {
	UserID           string
	Title            string
	ExamDate         domain.Day
	ElapsedDuration  string
	QuestionsTotal   int
	QuestionsCorrect int
	Notes            string
}

type UpdateExamInput struct {
	ID               string
	UserID           string
	Title            *string
	ExamDate         *domain.Day
	ElapsedDuration  *string
	QuestionsTotal   *int
	QuestionsCorrect *int
	Notes            *string
	Version          int
}

func (s *ExamService) Create(ctx context.Context, input CreateExamInput) (*domain.Exam, error) {
	exam := domain.NewExam(input.UserID, input.Title, input.ExamDate, input.ElapsedDuration)
	exam.QuestionsTotal = input.QuestionsTotal
	exam.QuestionsCorrect = input.QuestionsCorrect
	exam.Notes = strings.TrimSpace(input.Notes)

	if err := exam.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, err
	}

	s.worker.Enqueue(exam.UserID)

	return exam, nil
}

func (s *ExamService) GetByID(ctx context.Context, id, userID string) (*domain.Exam, error) {
	exam, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exam.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return exam, nil
}

func (s *ExamService) List(ctx context.Context, userID string) ([]*domain.Exam, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *ExamService) Update(ctx context.Context, input UpdateExamInput) (*domain.Exam, error) {
	exam, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && exam.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrExamConflict, input.Version, exam.Version)
	}

	if input.Title != nil {
		exam.Title = strings.TrimSpace(*input.Title)
	}
	if input.ExamDate != nil {
		date := input.ExamDate.Time()
		exam.ExamDate = &date
	}
	if input.ElapsedDuration != nil {
		exam.ElapsedDuration = strings.TrimSpace(*input.ElapsedDuration)
	}
	if input.QuestionsTotal != nil {
		exam.QuestionsTotal = *input.QuestionsTotal
	}
	if input.QuestionsCorrect != nil {
		exam.QuestionsCorrect = *input.QuestionsCorrect
	}
	if input.Notes != nil {
		exam.Notes = strings.TrimSpace(*input.Notes)
	}

	if err := exam.Validate(); err != nil {
		return nil, err
	}
	exam.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, err
	}

	s.worker.Enqueue(exam.UserID)

	return exam, nil
}

func (s *ExamService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.worker.Enqueue(userID)
	return nil
}
