package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

type SubjectService struct {
	repo         domain.SubjectRepository
	settingsRepo domain.SettingsRepository
}

func NewSubjectService(repo domain.SubjectRepository, settingsRepo domain.SettingsRepository) *SubjectService {
	return &SubjectService{
		repo:         repo,
		settingsRepo: settingsRepo,
	}
}

type CreateSubjectInput struct {
	UserID      string
	Title       string
	Description string
	Color       string
	Icon        string
}

type UpdateSubjectInput struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Color       string
	Icon        string
	Archived    *bool
	Version     int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *SubjectService) Create(ctx context.Context, input CreateSubjectInput) (*domain.Subject, error) {
	subject, err := domain.NewSubject(input.UserID, input.Title)
	if err != nil {
		return nil, err
	}

	if err := subject.Update(input.Title, input.Description, input.Color, input.Icon); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	subject.SortOrder = len(existing)

	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, err
	}

	return subject, nil
}

func (s *SubjectService) ListByUserID(ctx context.Context, userID string) ([]*domain.Subject, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *SubjectService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Subject, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

func (s *SubjectService) getOwned(ctx context.Context, id, userID string) (*domain.Subject, error) {
	subject, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if subject.UserID != userID {
		return nil, domain.ErrSubjectNotFound
	}
	return subject, nil
}

func (s *SubjectService) Update(ctx context.Context, input UpdateSubjectInput) (*domain.Subject, error) {
	subject, err := s.getOwned(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && subject.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrSubjectConflict, input.Version, subject.Version)
	}

	if input.Archived != nil && !*input.Archived {
		subject.Restore()
	}

	if subject.ArchivedAt == nil {
		err = subject.Update(
			mergeString(input.Title, subject.Title),
			mergeString(input.Description, subject.Description),
			mergeString(input.Color, subject.Color),
			mergeString(input.Icon, subject.Icon),
		)
		if err != nil {
			return nil, err
		}
	} else if input.Title != "" || input.Description != "" || input.Color != "" || input.Icon != "" {
		return nil, domain.ErrSubjectArchived
	}

	if input.Archived != nil && *input.Archived {
		subject.Archive()
	}

	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *SubjectService) Reorder(ctx context.Context, id, userID string, position int) (*domain.Subject, error) {
	subject, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := subject.ChangePosition(position); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *SubjectService) Delete(ctx context.Context, id string, userID string) error {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	settings, err := loadSettings(ctx, s.settingsRepo, userID)
	if err != nil {
		return err
	}
	if settings.CurrentSubjectID != nil && *settings.CurrentSubjectID == id {
		settings.CurrentSubjectID = nil
		return s.settingsRepo.Save(ctx, settings)
	}
	return nil
}

// cycle returns the active subjects in study order.
func (s *SubjectService) cycle(ctx context.Context, userID string) ([]*domain.Subject, error) {
	all, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	active := make([]*domain.Subject, 0, len(all))
	for _, subj := range all {
		if subj.IsActive() {
			active = append(active, subj)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].SortOrder != active[j].SortOrder {
			return active[i].SortOrder < active[j].SortOrder
		}
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active, nil
}

func indexOf(subjects []*domain.Subject, id *string) int {
	if id == nil {
		return -1
	}
	for i, subj := range subjects {
		if subj.ID == *id {
			return i
		}
	}
	return -1
}

// Current returns the subject the user is on in the study cycle. When the
// pointer is unset or stale the first active subject is returned.
func (s *SubjectService) Current(ctx context.Context, userID string) (*domain.Subject, error) {
	active, err := s.cycle(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, domain.ErrEmptyCycle
	}

	settings, err := loadSettings(ctx, s.settingsRepo, userID)
	if err != nil {
		return nil, err
	}

	if i := indexOf(active, settings.CurrentSubjectID); i >= 0 {
		return active[i], nil
	}
	return active[0], nil
}

// Advance moves the study cycle to the next active subject, wrapping around.
func (s *SubjectService) Advance(ctx context.Context, userID string) (*domain.Subject, error) {
	active, err := s.cycle(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, domain.ErrEmptyCycle
	}

	settings, err := loadSettings(ctx, s.settingsRepo, userID)
	if err != nil {
		return nil, err
	}

	i := indexOf(active, settings.CurrentSubjectID)
	if i < 0 {
		i = 0
	}
	next := active[(i+1)%len(active)]

	id := next.ID
	settings.CurrentSubjectID = &id
	settings.UpdatedAt = time.Now().UTC()
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}

	return next, nil
}
