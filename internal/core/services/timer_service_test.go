package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTimerFixture() (*TimerService, *repository.InMemorySessionRepository, *repository.InMemorySubjectRepository, *fakeClock) {
	sessions := repository.NewInMemorySessionRepository()
	subjects := repository.NewInMemorySubjectRepository()
	clock := &fakeClock{t: time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)}

	svc := NewTimerService(repository.NewInMemoryTimerStore(), subjects, NewSessionService(sessions, subjects, nil))
	svc.now = clock.Now
	return svc, sessions, subjects, clock
}

func TestTimerService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _, clock := newTimerFixture()

	started, err := svc.Start(ctx, "u1", "", "reading")
	require.NoError(t, err)
	assert.Equal(t, domain.TimerRunning, started.State)
	assert.Equal(t, 0, started.ElapsedSeconds)

	_, err = svc.Start(ctx, "u1", "", "reading")
	assert.ErrorIs(t, err, domain.ErrTimerAlreadyRunning)

	clock.Advance(10 * time.Minute)
	paused, err := svc.Pause(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 600, paused.ElapsedSeconds)

	_, err = svc.Pause(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrTimerNotRunning)

	clock.Advance(time.Hour)
	view, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 600, view.ElapsedSeconds)

	_, err = svc.Resume(ctx, "u1")
	require.NoError(t, err)
	clock.Advance(15 * time.Minute)

	session, err := svc.Finish(ctx, "u1", "chapter 3")
	require.NoError(t, err)
	assert.Equal(t, 1500, session.DurationSeconds)
	assert.Equal(t, "reading", session.Category)
	assert.Equal(t, time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC), session.OccurredAt)

	stored, err := sessions.ListByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	_, err = svc.Get(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrTimerNotFound)
}

func TestTimerService_Discard(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _, _ := newTimerFixture()

	assert.ErrorIs(t, svc.Discard(ctx, "u1"), domain.ErrTimerNotFound)

	_, err := svc.Start(ctx, "u1", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.Discard(ctx, "u1"))

	stored, _ := sessions.ListByUserID(ctx, "u1")
	assert.Empty(t, stored)

	_, err = svc.Resume(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrTimerNotFound)
}

func TestTimerService_SubjectOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _, subjects, _ := newTimerFixture()

	subj, err := domain.NewSubject("owner", "Anatomy")
	require.NoError(t, err)
	require.NoError(t, subjects.Create(ctx, subj))

	_, err = svc.Start(ctx, "attacker", subj.ID, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	view, err := svc.Start(ctx, "owner", subj.ID, "")
	require.NoError(t, err)
	assert.Equal(t, subj.ID, view.SubjectID)
}

// staleTimerStore misses running timers on Get, as a read racing another
// start would, and can be told to fail deletes.
type staleTimerStore struct {
	*repository.InMemoryTimerStore
	blindGet   bool
	failDelete bool
}

func (s *staleTimerStore) Get(ctx context.Context, userID string) (*domain.Timer, error) {
	if s.blindGet {
		return nil, domain.ErrTimerNotFound
	}
	return s.InMemoryTimerStore.Get(ctx, userID)
}

func (s *staleTimerStore) Delete(ctx context.Context, userID string) error {
	if s.failDelete {
		return errors.New("redis: connection pool timeout")
	}
	return s.InMemoryTimerStore.Delete(ctx, userID)
}

func newStaleTimerFixture() (*TimerService, *staleTimerStore, *repository.InMemorySessionRepository, *repository.InMemorySubjectRepository, *fakeClock) {
	store := &staleTimerStore{InMemoryTimerStore: repository.NewInMemoryTimerStore()}
	sessions := repository.NewInMemorySessionRepository()
	subjects := repository.NewInMemorySubjectRepository()
	clock := &fakeClock{t: time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)}

	svc := NewTimerService(store, subjects, NewSessionService(sessions, subjects, nil))
	svc.now = clock.Now
	return svc, store, sessions, subjects, clock
}

func TestTimerService_StartDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()

	t.Run("Second start past a stale read", func(t *testing.T) {
		svc, store, _, _, _ := newStaleTimerFixture()

		_, err := svc.Start(ctx, "u1", "", "reading")
		require.NoError(t, err)

		store.blindGet = true
		_, err = svc.Start(ctx, "u1", "", "flashcards")
		assert.ErrorIs(t, err, domain.ErrTimerAlreadyRunning)

		store.blindGet = false
		kept, err := svc.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "reading", kept.Category)
	})

	t.Run("Concurrent starts, one winner", func(t *testing.T) {
		svc, _, _, _, _ := newStaleTimerFixture()

		var wg sync.WaitGroup
		results := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Start(ctx, "u1", "", "reading")
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		wins := 0
		for err := range results {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, domain.ErrTimerAlreadyRunning)
		}
		assert.Equal(t, 1, wins)
	})
}

func TestTimerService_FinishRecordsOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("Failed delete records nothing, retry records once", func(t *testing.T) {
		svc, store, sessions, _, clock := newStaleTimerFixture()

		_, err := svc.Start(ctx, "u1", "", "reading")
		require.NoError(t, err)
		clock.Advance(30 * time.Minute)

		store.failDelete = true
		_, err = svc.Finish(ctx, "u1", "")
		require.Error(t, err)

		stored, _ := sessions.ListByUserID(ctx, "u1")
		assert.Empty(t, stored)

		store.failDelete = false
		session, err := svc.Finish(ctx, "u1", "")
		require.NoError(t, err)
		assert.Equal(t, 1800, session.DurationSeconds)

		stored, _ = sessions.ListByUserID(ctx, "u1")
		assert.Len(t, stored, 1)
	})

	t.Run("Failed session write keeps the timer", func(t *testing.T) {
		svc, _, sessions, subjects, clock := newStaleTimerFixture()

		subj, err := domain.NewSubject("u1", "Biochemistry")
		require.NoError(t, err)
		require.NoError(t, subjects.Create(ctx, subj))

		_, err = svc.Start(ctx, "u1", subj.ID, "reading")
		require.NoError(t, err)
		clock.Advance(20 * time.Minute)
		require.NoError(t, subjects.Delete(ctx, subj.ID))

		_, err = svc.Finish(ctx, "u1", "")
		assert.ErrorIs(t, err, domain.ErrSubjectNotFound)

		timer, err := svc.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, subj.ID, timer.SubjectID)
		assert.Equal(t, 1200, timer.ElapsedSeconds)

		stored, _ := sessions.ListByUserID(ctx, "u1")
		assert.Empty(t, stored)
	})
}
