package repository

import (
	"context"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

// userCheckpointer is implemented by the in-memory stores that take part in
// transactions. checkpoint copies the rows of one user and returns a func
// that puts them back.
type userCheckpointer interface {
	checkpoint(userID string) (rollback func())
}

var _ domain.Transactor = (*InMemoryTransactor)(nil)

// InMemoryTransactor gives the in-memory stores all-or-nothing writes per
// user: on failure every participating store is reset to the rows the user
// had when the transaction began. Transactions run one at a time.
type InMemoryTransactor struct {
	stores []userCheckpointer

	mu sync.Mutex
}

func NewInMemoryTransactor(
	subjects *InMemorySubjectRepository,
	sessions *InMemorySessionRepository,
	exams *InMemoryExamRepository,
	settings *InMemorySettingsRepository,
	achievements *InMemoryAchievementRepository,
) *InMemoryTransactor {
	return &InMemoryTransactor{
		stores: []userCheckpointer{subjects, sessions, exams, settings, achievements},
	}
}

func (t *InMemoryTransactor) WithinTx(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rollbacks := make([]func(), 0, len(t.stores))
	for _, s := range t.stores {
		rollbacks = append(rollbacks, s.checkpoint(userID))
	}

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		for i := len(rollbacks) - 1; i >= 0; i-- {
			rollbacks[i]()
		}
		return err
	}
	return nil
}

// checkpointRows copies every row owned by the user. Rows are copied by value
// because the stores update soft-delete fields in place.
func checkpointRows[T any](mu *sync.RWMutex, store map[string]*T, owned func(*T) bool) func() {
	mu.RLock()
	saved := make(map[string]*T)
	for id, row := range store {
		if owned(row) {
			c := *row
			saved[id] = &c
		}
	}
	mu.RUnlock()

	return func() {
		mu.Lock()
		defer mu.Unlock()

		for id, row := range store {
			if _, ok := saved[id]; !ok && owned(row) {
				delete(store, id)
			}
		}
		for id, row := range saved {
			store[id] = row
		}
	}
}

func (r *InMemorySubjectRepository) checkpoint(userID string) func() {
	return checkpointRows(&r.mu, r.store, func(s *domain.Subject) bool { return s.UserID == userID })
}

func (r *InMemorySessionRepository) checkpoint(userID string) func() {
	return checkpointRows(&r.mu, r.store, func(s *domain.StudySession) bool { return s.UserID == userID })
}

func (r *InMemoryExamRepository) checkpoint(userID string) func() {
	return checkpointRows(&r.mu, r.store, func(e *domain.Exam) bool { return e.UserID == userID })
}

func (r *InMemorySettingsRepository) checkpoint(userID string) func() {
	return checkpointRows(&r.mu, r.store, func(s *domain.Settings) bool { return s.UserID == userID })
}

func (r *InMemoryAchievementRepository) checkpoint(userID string) func() {
	r.mu.RLock()
	codes, had := r.store[userID]
	saved := make(map[string]time.Time, len(codes))
	for code, at := range codes {
		saved[code] = at
	}
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		if had {
			r.store[userID] = saved
		} else {
			delete(r.store, userID)
		}
	}
}
