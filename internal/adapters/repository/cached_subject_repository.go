package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

const subjectCacheTTL = 30 * time.Minute

var _ domain.SubjectRepository = (*CachedSubjectRepository)(nil)

// CachedSubjectRepository keeps each user's subject list in Redis. Every write
// drops the cached list; Redis failures fall through to the wrapped repository.
type CachedSubjectRepository struct {
	next  domain.SubjectRepository
	cache *redis.Client
}

func NewCachedSubjectRepository(next domain.SubjectRepository, cache *redis.Client) *CachedSubjectRepository {
	return &CachedSubjectRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedSubjectRepository) cacheKey(userID string) string {
	return fmt.Sprintf("subjects:%s", userID)
}

func (r *CachedSubjectRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		zap.L().Warn("subject cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (r *CachedSubjectRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Subject, error) {
	if inTx(ctx) {
		return r.next.ListByUserID(ctx, userID)
	}

	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Bytes()
	if err == nil {
		var subjects []*domain.Subject
		if err := json.Unmarshal(val, &subjects); err == nil {
			return subjects, nil
		}

		zap.L().Warn("corrupted subject cache entry, dropping", zap.String("user_id", userID))
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		zap.L().Warn("subject cache read failed", zap.Error(err))
	}

	subjects, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(subjects); err == nil {
		if setErr := r.cache.Set(ctx, key, data, subjectCacheTTL).Err(); setErr != nil {
			zap.L().Warn("subject cache write failed", zap.Error(setErr))
		}
	}

	return subjects, nil
}

func (r *CachedSubjectRepository) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedSubjectRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Subject, error) {
	return r.next.GetChanges(ctx, userID, since)
}

func (r *CachedSubjectRepository) Create(ctx context.Context, subject *domain.Subject) error {
	if err := r.next.Create(ctx, subject); err != nil {
		return err
	}
	r.invalidate(ctx, subject.UserID)
	return nil
}

func (r *CachedSubjectRepository) Update(ctx context.Context, subject *domain.Subject) error {
	if err := r.next.Update(ctx, subject); err != nil {
		return err
	}
	r.invalidate(ctx, subject.UserID)
	return nil
}

func (r *CachedSubjectRepository) Delete(ctx context.Context, id string) error {
	subject, err := r.next.GetByID(ctx, id)
	if err == nil && subject != nil {
		defer r.invalidate(ctx, subject.UserID)
	}

	return r.next.Delete(ctx, id)
}
