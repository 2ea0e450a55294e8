package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Evaluator recomputes a user's streak and persists any newly unlocked badge.
type Evaluator interface {
	Evaluate(ctx context.Context, userID string) ([]string, error)
}

type AchievementJob struct {
	UserID string
}

// AchievementWorker evaluates achievements off the request path. Writes to
// the activity or exam log enqueue the affected user.
type AchievementWorker struct {
	evaluator Evaluator
	logger    *zap.Logger
	jobs      chan AchievementJob
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewAchievementWorker(evaluator Evaluator, logger *zap.Logger, queueSize int) *AchievementWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize < 1 {
		queueSize = 100
	}
	return &AchievementWorker{
		evaluator: evaluator,
		logger:    logger.Named("achievement_worker"),
		jobs:      make(chan AchievementJob, queueSize),
		timeout:   10 * time.Second,
	}
}

// Start runs the loop until ctx is cancelled.
func (w *AchievementWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.logger.Info("achievement worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.logger.Info("achievement worker shutting down", zap.Int("pending", len(w.jobs)))
				return
			}
		}
	}()
}

// Wait blocks until the loop started by Start has returned.
func (w *AchievementWorker) Wait() {
	w.wg.Wait()
}

// Enqueue never blocks. A nil worker accepts and drops every job.
func (w *AchievementWorker) Enqueue(userID string) {
	if w == nil {
		return
	}
	select {
	case w.jobs <- AchievementJob{UserID: userID}:
	default:
		w.logger.Warn("queue full, dropping job", zap.String("user_id", userID))
	}
}

func (w *AchievementWorker) processJob(ctx context.Context, job AchievementJob) {
	if w.evaluator == nil {
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	unlocked, err := w.evaluator.Evaluate(jobCtx, job.UserID)
	if err != nil {
		w.logger.Error("evaluation failed", zap.String("user_id", job.UserID), zap.Error(err))
		return
	}

	if len(unlocked) > 0 {
		w.logger.Info("achievements unlocked",
			zap.String("user_id", job.UserID),
			zap.Strings("codes", unlocked))
	}
}
