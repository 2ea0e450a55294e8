package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/workers"
	gonanoid "github.com/matoous/go-nanoid"
	"golang.org/x/sync/errgroup"
)

const DefaultSnapshotCodeLength = 10

// SnapshotRepos groups the stores a snapshot reads from and restores into.
// Tx must span Subjects, Sessions, Exams, Settings and Achievements.
type SnapshotRepos struct {
	Tx           domain.Transactor
	Snapshots    domain.SnapshotStore
	Subjects     domain.SubjectRepository
	Sessions     domain.SessionRepository
	Exams        domain.ExamRepository
	Settings     domain.SettingsRepository
	Achievements domain.AchievementRepository
}

type SnapshotService struct {
	repos      SnapshotRepos
	worker     *workers.AchievementWorker
	codeLength int
	now        func() time.Time
}

func NewSnapshotService(repos SnapshotRepos, worker *workers.AchievementWorker, codeLength int) *SnapshotService {
	if codeLength < 1 {
		codeLength = DefaultSnapshotCodeLength
	}
	return &SnapshotService{
		repos:      repos,
		worker:     worker,
		codeLength: codeLength,
		now:        time.Now,
	}
}

func (s *SnapshotService) export(ctx context.Context, userID string) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{
		UserID:        userID,
		FormatVersion: domain.SnapshotFormatVersion,
		CreatedAt:     s.now().UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Subjects, err = s.repos.Subjects.ListByUserID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Sessions, err = s.repos.Sessions.ListByUserID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Exams, err = s.repos.Exams.ListByUserID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Settings, err = loadSettings(gctx, s.repos.Settings, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Achievements, err = s.repos.Achievements.ListByUserID(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("snapshot: failed to export: %w", err)
	}
	return snap, nil
}

// Push exports all data of the user and stores it under a fresh share code.
func (s *SnapshotService) Push(ctx context.Context, userID string) (*domain.Snapshot, error) {
	snap, err := s.export(ctx, userID)
	if err != nil {
		return nil, err
	}

	code, err := gonanoid.Nanoid(s.codeLength)
	if err != nil {
		return nil, fmt.Errorf("snapshot: failed to generate code: %w", err)
	}
	snap.Code = code

	if err := s.repos.Snapshots.Save(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SnapshotService) List(ctx context.Context, userID string) ([]*domain.SnapshotInfo, error) {
	return s.repos.Snapshots.ListByUserID(ctx, userID)
}

func (s *SnapshotService) Get(ctx context.Context, userID, code string) (*domain.Snapshot, error) {
	return s.repos.Snapshots.Get(ctx, userID, code)
}

// Restore replaces the activity log of the user with the one in the snapshot.
// Subjects still present are updated in place; missing ones are recreated
// and the sessions pointing at them follow the new IDs.
func (s *SnapshotService) Restore(ctx context.Context, userID, code string) (*domain.Snapshot, error) {
	snap, err := s.repos.Snapshots.Get(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	if snap.FormatVersion != domain.SnapshotFormatVersion {
		return nil, fmt.Errorf("%w: %d", domain.ErrSnapshotVersion, snap.FormatVersion)
	}

	err = s.repos.Tx.WithinTx(ctx, userID, func(ctx context.Context) error {
		return s.replace(ctx, userID, snap)
	})
	if err != nil {
		return nil, err
	}

	s.worker.Enqueue(userID)
	return snap, nil
}

// replace swaps the activity log of the user for the snapshot content. It runs
// inside a transaction, so a failure leaves the previous log untouched.
func (s *SnapshotService) replace(ctx context.Context, userID string, snap *domain.Snapshot) error {
	ids, err := s.restoreSubjects(ctx, userID, snap.Subjects)
	if err != nil {
		return err
	}

	if _, err := s.repos.Sessions.DeleteAllByUserID(ctx, userID); err != nil {
		return fmt.Errorf("snapshot: failed to clear sessions: %w", err)
	}
	if _, err := s.repos.Exams.DeleteAllByUserID(ctx, userID); err != nil {
		return fmt.Errorf("snapshot: failed to clear exams: %w", err)
	}

	for _, src := range snap.Sessions {
		sess := *src
		sess.ID = ""
		sess.UserID = userID
		sess.SubjectID = ids[src.SubjectID]
		sess.Version = 1
		sess.DeletedAt = nil
		if err := s.repos.Sessions.Create(ctx, &sess); err != nil {
			return fmt.Errorf("snapshot: failed to import session: %w", err)
		}
	}

	for _, src := range snap.Exams {
		exam := *src
		exam.ID = ""
		exam.UserID = userID
		exam.Version = 1
		exam.DeletedAt = nil
		if err := s.repos.Exams.Create(ctx, &exam); err != nil {
			return fmt.Errorf("snapshot: failed to import exam: %w", err)
		}
	}

	if err := s.restoreSettings(ctx, userID, snap.Settings, ids); err != nil {
		return err
	}

	for _, a := range snap.Achievements {
		err := s.repos.Achievements.Unlock(ctx, &domain.UnlockedAchievement{
			UserID:     userID,
			Code:       a.Code,
			UnlockedAt: a.UnlockedAt,
		})
		if err != nil {
			return fmt.Errorf("snapshot: failed to import achievement: %w", err)
		}
	}
	return nil
}

// restoreSubjects upserts the snapshot subjects and maps each snapshot ID to
// the ID it has after the restore.
func (s *SnapshotService) restoreSubjects(ctx context.Context, userID string, subjects []*domain.Subject) (map[string]string, error) {
	ids := make(map[string]string, len(subjects))

	for _, src := range subjects {
		current, err := s.repos.Subjects.GetByID(ctx, src.ID)
		switch {
		case err == nil && current.UserID == userID:
			current.Title = src.Title
			current.Description = src.Description
			current.Color = src.Color
			current.Icon = src.Icon
			current.SortOrder = src.SortOrder
			current.ArchivedAt = src.ArchivedAt
			current.UpdatedAt = s.now().UTC()
			if err := s.repos.Subjects.Update(ctx, current); err != nil {
				return nil, fmt.Errorf("snapshot: failed to update subject: %w", err)
			}
			ids[src.ID] = current.ID

		case err == nil || errors.Is(err, domain.ErrSubjectNotFound):
			subj := *src
			subj.ID = ""
			subj.UserID = userID
			subj.Version = 1
			subj.DeletedAt = nil
			if err := s.repos.Subjects.Create(ctx, &subj); err != nil {
				return nil, fmt.Errorf("snapshot: failed to import subject: %w", err)
			}
			ids[src.ID] = subj.ID

		default:
			return nil, err
		}
	}
	return ids, nil
}

func (s *SnapshotService) restoreSettings(ctx context.Context, userID string, src *domain.Settings, ids map[string]string) error {
	if src == nil {
		return nil
	}

	settings, err := loadSettings(ctx, s.repos.Settings, userID)
	if err != nil {
		return err
	}
	if err := settings.SetRestDays(src.RestDays); err != nil {
		return err
	}
	if err := settings.SetTimezone(src.Timezone); err != nil {
		return err
	}

	settings.CurrentSubjectID = nil
	if src.CurrentSubjectID != nil {
		if id, ok := ids[*src.CurrentSubjectID]; ok {
			settings.CurrentSubjectID = &id
		}
	}

	return s.repos.Settings.Save(ctx, settings)
}
