package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

type InMemorySettingsRepository struct {
	store map[string]*domain.Settings

	mu sync.RWMutex
}

func NewInMemorySettingsRepository() *InMemorySettingsRepository {
	return &InMemorySettingsRepository{
		store: make(map[string]*domain.Settings),
	}
}

func cloneSettings(s *domain.Settings) *domain.Settings {
	clone := *s
	clone.RestDays = append(domain.RestDays{}, s.RestDays...)
	if s.CurrentSubjectID != nil {
		id := *s.CurrentSubjectID
		clone.CurrentSubjectID = &id
	}
	return &clone
}

func (r *InMemorySettingsRepository) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.store[userID]
	if !ok {
		return nil, domain.ErrSettingsNotFound
	}
	return cloneSettings(s), nil
}

func (r *InMemorySettingsRepository) Save(ctx context.Context, settings *domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[settings.UserID]
	current := 0
	if ok {
		current = stored.Version
	}
	if settings.Version != current {
		return domain.ErrSettingsConflict
	}

	settings.Version++
	settings.UpdatedAt = time.Now().UTC()
	r.store[settings.UserID] = cloneSettings(settings)
	return nil
}

type InMemoryAchievementRepository struct {
	store map[string]map[string]time.Time

	mu sync.RWMutex
}

func NewInMemoryAchievementRepository() *InMemoryAchievementRepository {
	return &InMemoryAchievementRepository{
		store: make(map[string]map[string]time.Time),
	}
}

func (r *InMemoryAchievementRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.UnlockedAchievement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.UnlockedAchievement, 0, len(r.store[userID]))
	for code, at := range r.store[userID] {
		out = append(out, &domain.UnlockedAchievement{UserID: userID, Code: code, UnlockedAt: at})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UnlockedAt.Equal(out[j].UnlockedAt) {
			return out[i].UnlockedAt.Before(out[j].UnlockedAt)
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (r *InMemoryAchievementRepository) Unlock(ctx context.Context, a *domain.UnlockedAchievement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	codes, ok := r.store[a.UserID]
	if !ok {
		codes = make(map[string]time.Time)
		r.store[a.UserID] = codes
	}
	if _, done := codes[a.Code]; !done {
		codes[a.Code] = a.UnlockedAt.UTC()
	}
	return nil
}

func (r *InMemoryAchievementRepository) DeleteAllByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.store, userID)
	return nil
}

type InMemoryUserRepository struct {
	byID    map[string]*domain.User
	byEmail map[string]string

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return domain.ErrEmailAlreadyExists
	}
	clone := *user
	r.byID[user.ID] = &clone
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *r.byID[id]
	return &clone, nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

type InMemoryTimerStore struct {
	store map[string]domain.Timer

	mu sync.Mutex
}

func NewInMemoryTimerStore() *InMemoryTimerStore {
	return &InMemoryTimerStore{
		store: make(map[string]domain.Timer),
	}
}

func (s *InMemoryTimerStore) Get(ctx context.Context, userID string) (*domain.Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.store[userID]
	if !ok {
		return nil, domain.ErrTimerNotFound
	}
	if t.RunningSince != nil {
		since := *t.RunningSince
		t.RunningSince = &since
	}
	return &t, nil
}

func (s *InMemoryTimerStore) Create(ctx context.Context, timer *domain.Timer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store[timer.UserID]; ok {
		return domain.ErrTimerAlreadyRunning
	}
	s.put(timer)
	return nil
}

func (s *InMemoryTimerStore) Save(ctx context.Context, timer *domain.Timer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(timer)
	return nil
}

func (s *InMemoryTimerStore) put(timer *domain.Timer) {
	t := *timer
	if timer.RunningSince != nil {
		since := *timer.RunningSince
		t.RunningSince = &since
	}
	s.store[timer.UserID] = t
}

func (s *InMemoryTimerStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.store, userID)
	return nil
}

type storedSnapshot struct {
	info    domain.SnapshotInfo
	payload []byte
}

// InMemorySnapshotStore keeps snapshots as encoded JSON, the same payload
// the database stores hold.
type InMemorySnapshotStore struct {
	store map[string]storedSnapshot

	mu sync.RWMutex
}

func NewInMemorySnapshotStore() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{
		store: make(map[string]storedSnapshot),
	}
}

func (s *InMemorySnapshotStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("snapshot store: failed to encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store[snapshot.Code] = storedSnapshot{
		info: domain.SnapshotInfo{
			Code:      snapshot.Code,
			UserID:    snapshot.UserID,
			CreatedAt: snapshot.CreatedAt,
			SizeBytes: len(payload),
		},
		payload: payload,
	}
	return nil
}

func (s *InMemorySnapshotStore) Get(ctx context.Context, userID, code string) (*domain.Snapshot, error) {
	s.mu.RLock()
	stored, ok := s.store[code]
	s.mu.RUnlock()

	if !ok || stored.info.UserID != userID {
		return nil, domain.ErrSnapshotNotFound
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(stored.payload, &snap); err != nil {
		return nil, fmt.Errorf("snapshot store: failed to decode: %w", err)
	}
	return &snap, nil
}

func (s *InMemorySnapshotStore) ListByUserID(ctx context.Context, userID string) ([]*domain.SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.SnapshotInfo, 0)
	for _, stored := range s.store {
		if stored.info.UserID == userID {
			info := stored.info
			out = append(out, &info)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
