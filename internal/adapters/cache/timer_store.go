package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
)

// TimerTTL bounds how long an abandoned timer is kept.
const TimerTTL = 7 * 24 * time.Hour

var _ domain.TimerStore = (*RedisTimerStore)(nil)

// RedisTimerStore keeps each user's active timer as a JSON value so that a
// running timer survives restarts of the API and reloads of the client.
type RedisTimerStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisTimerStore(rdb *redis.Client) *RedisTimerStore {
	return &RedisTimerStore{rdb: rdb, ttl: TimerTTL}
}

func (s *RedisTimerStore) key(userID string) string {
	return fmt.Sprintf("timer:%s", userID)
}

func (s *RedisTimerStore) Get(ctx context.Context, userID string) (*domain.Timer, error) {
	raw, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrTimerNotFound
		}
		return nil, fmt.Errorf("timer store: read failed: %w", err)
	}

	var timer domain.Timer
	if err := json.Unmarshal(raw, &timer); err != nil {
		return nil, fmt.Errorf("timer store: corrupted timer for %s: %w", userID, err)
	}
	return &timer, nil
}

// Create relies on SETNX so that concurrent starts cannot both win.
func (s *RedisTimerStore) Create(ctx context.Context, timer *domain.Timer) error {
	data, err := json.Marshal(timer)
	if err != nil {
		return err
	}
	created, err := s.rdb.SetNX(ctx, s.key(timer.UserID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("timer store: write failed: %w", err)
	}
	if !created {
		return domain.ErrTimerAlreadyRunning
	}
	return nil
}

func (s *RedisTimerStore) Save(ctx context.Context, timer *domain.Timer) error {
	data, err := json.Marshal(timer)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(timer.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("timer store: write failed: %w", err)
	}
	return nil
}

func (s *RedisTimerStore) Delete(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("timer store: delete failed: %w", err)
	}
	return nil
}
