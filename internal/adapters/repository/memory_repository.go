package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/google/uuid"
)

// The in-memory repositories back STORAGE_DRIVER=memory and the handler
// tests. They follow the PostgreSQL semantics: soft deletes, version checks
// on update and copies in and out so callers never share state with the store.

type InMemorySubjectRepository struct {
	store map[string]*domain.Subject

	mu sync.RWMutex
}

func NewInMemorySubjectRepository() *InMemorySubjectRepository {
	return &InMemorySubjectRepository{
		store: make(map[string]*domain.Subject),
	}
}

func (r *InMemorySubjectRepository) Create(ctx context.Context, subject *domain.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	if _, exists := r.store[subject.ID]; exists {
		return domain.ErrSubjectConflict
	}
	if subject.Version == 0 {
		subject.Version = 1
	}

	clone := *subject
	r.store[subject.ID] = &clone
	return nil
}

func (r *InMemorySubjectRepository) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subject, ok := r.store[id]
	if !ok || subject.DeletedAt != nil {
		return nil, domain.ErrSubjectNotFound
	}
	clone := *subject
	return &clone, nil
}

func (r *InMemorySubjectRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subjects := make([]*domain.Subject, 0)
	for _, s := range r.store {
		if s.UserID == userID && s.DeletedAt == nil {
			clone := *s
			subjects = append(subjects, &clone)
		}
	}

	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].SortOrder != subjects[j].SortOrder {
			return subjects[i].SortOrder < subjects[j].SortOrder
		}
		return subjects[i].CreatedAt.Before(subjects[j].CreatedAt)
	})

	return subjects, nil
}

func (r *InMemorySubjectRepository) Update(ctx context.Context, subject *domain.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[subject.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrSubjectNotFound
	}
	if stored.Version != subject.Version {
		return domain.ErrSubjectConflict
	}

	subject.Version++
	subject.UpdatedAt = time.Now().UTC()
	clone := *subject
	r.store[subject.ID] = &clone
	return nil
}

func (r *InMemorySubjectRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subject, ok := r.store[id]
	if !ok || subject.DeletedAt != nil {
		return domain.ErrSubjectNotFound
	}

	now := time.Now().UTC()
	subject.DeletedAt = &now
	subject.UpdatedAt = now
	subject.Version++
	return nil
}

func (r *InMemorySubjectRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	changes := make([]*domain.Subject, 0)
	for _, s := range r.store {
		if s.UserID == userID && s.UpdatedAt.After(since) {
			clone := *s
			changes = append(changes, &clone)
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].UpdatedAt.Before(changes[j].UpdatedAt)
	})
	return changes, nil
}

type InMemorySessionRepository struct {
	store map[string]*domain.StudySession

	mu sync.RWMutex
}

func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{
		store: make(map[string]*domain.StudySession),
	}
}

func (r *InMemorySessionRepository) Create(ctx context.Context, session *domain.StudySession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if _, exists := r.store[session.ID]; exists {
		return domain.ErrSessionConflict
	}
	if session.Version == 0 {
		session.Version = 1
	}

	clone := *session
	r.store[session.ID] = &clone
	return nil
}

func (r *InMemorySessionRepository) Update(ctx context.Context, session *domain.StudySession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[session.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrSessionNotFound
	}
	if stored.Version != session.Version {
		return domain.ErrSessionConflict
	}

	session.Version++
	session.UpdatedAt = time.Now().UTC()
	clone := *session
	r.store[session.ID] = &clone
	return nil
}

func (r *InMemorySessionRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.store[id]
	if !ok || session.DeletedAt != nil || session.UserID != userID {
		return domain.ErrSessionNotFound
	}

	now := time.Now().UTC()
	session.DeletedAt = &now
	session.UpdatedAt = now
	session.Version++
	return nil
}

func (r *InMemorySessionRepository) DeleteAllByUserID(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	var n int64
	for _, s := range r.store {
		if s.UserID == userID && s.DeletedAt == nil {
			deletedAt := now
			s.DeletedAt = &deletedAt
			s.UpdatedAt = now
			s.Version++
			n++
		}
	}
	return n, nil
}

func (r *InMemorySessionRepository) GetByID(ctx context.Context, id string) (*domain.StudySession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.store[id]
	if !ok || session.DeletedAt != nil {
		return nil, domain.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (r *InMemorySessionRepository) list(match func(s *domain.StudySession) bool) []*domain.StudySession {
	sessions := make([]*domain.StudySession, 0)
	for _, s := range r.store {
		if s.DeletedAt == nil && match(s) {
			clone := *s
			sessions = append(sessions, &clone)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].OccurredAt.Before(sessions[j].OccurredAt)
	})
	return sessions
}

func (r *InMemorySessionRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.StudySession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.list(func(s *domain.StudySession) bool {
		return s.UserID == userID
	}), nil
}

func (r *InMemorySessionRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.StudySession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.list(func(s *domain.StudySession) bool {
		return s.UserID == userID && !s.OccurredAt.Before(from) && s.OccurredAt.Before(to)
	}), nil
}

func (r *InMemorySessionRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.StudySession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	changes := make([]*domain.StudySession, 0)
	for _, s := range r.store {
		if s.UserID == userID && s.UpdatedAt.After(since) {
			clone := *s
			changes = append(changes, &clone)
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].UpdatedAt.Before(changes[j].UpdatedAt)
	})
	return changes, nil
}

type InMemoryExamRepository struct {
	store map[string]*domain.Exam

	mu sync.RWMutex
}

func NewInMemoryExamRepository() *InMemoryExamRepository {
	return &InMemoryExamRepository{
		store: make(map[string]*domain.Exam),
	}
}

func (r *InMemoryExamRepository) Create(ctx context.Context, exam *domain.Exam) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	if _, exists := r.store[exam.ID]; exists {
		return domain.ErrExamConflict
	}
	if exam.Version == 0 {
		exam.Version = 1
	}

	clone := *exam
	r.store[exam.ID] = &clone
	return nil
}

func (r *InMemoryExamRepository) Update(ctx context.Context, exam *domain.Exam) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[exam.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrExamNotFound
	}
	if stored.Version != exam.Version {
		return domain.ErrExamConflict
	}

	exam.Version++
	exam.UpdatedAt = time.Now().UTC()
	clone := *exam
	r.store[exam.ID] = &clone
	return nil
}

func (r *InMemoryExamRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	exam, ok := r.store[id]
	if !ok || exam.DeletedAt != nil || exam.UserID != userID {
		return domain.ErrExamNotFound
	}

	now := time.Now().UTC()
	exam.DeletedAt = &now
	exam.UpdatedAt = now
	exam.Version++
	return nil
}

func (r *InMemoryExamRepository) DeleteAllByUserID(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	var n int64
	for _, e := range r.store {
		if e.UserID == userID && e.DeletedAt == nil {
			deletedAt := now
			e.DeletedAt = &deletedAt
			e.UpdatedAt = now
			e.Version++
			n++
		}
	}
	return n, nil
}

func (r *InMemoryExamRepository) GetByID(ctx context.Context, id string) (*domain.Exam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exam, ok := r.store[id]
	if !ok || exam.DeletedAt != nil {
		return nil, domain.ErrExamNotFound
	}
	clone := *exam
	return &clone, nil
}

func (r *InMemoryExamRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Exam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exams := make([]*domain.Exam, 0)
	for _, e := range r.store {
		if e.UserID == userID && e.DeletedAt == nil {
			clone := *e
			exams = append(exams, &clone)
		}
	}
	sort.Slice(exams, func(i, j int) bool {
		a, b := exams[i].ExamDate, exams[j].ExamDate
		if a == nil || b == nil {
			return b != nil
		}
		return a.Before(*b)
	})
	return exams, nil
}
