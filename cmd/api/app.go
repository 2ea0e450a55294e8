package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-study-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-study-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-study-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-study-engine/internal/config"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/workers"
)

// application is the fully wired API: storage, services, background worker
// and router.
type application struct {
	router *gin.Engine
	worker *workers.AchievementWorker
	closer []func() error
}

type storage struct {
	users        domain.UserRepository
	subjects     domain.SubjectRepository
	sessions     domain.SessionRepository
	exams        domain.ExamRepository
	settings     domain.SettingsRepository
	achievements domain.AchievementRepository
	snapshots    domain.SnapshotStore
	timers       domain.TimerStore
	tx           domain.Transactor
}

func newApplication(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*application, error) {
	app := &application{}
	ready := false
	defer func() {
		if !ready {
			if err := app.Close(); err != nil {
				logger.Warn("releasing storage after failed startup", zap.Error(err))
			}
		}
	}()

	var err error
	var db *sqlx.DB
	var store storage

	switch cfg.StorageDriver {
	case "postgres":
		logger.Info("connecting to database", zap.String("host", cfg.DB.Host), zap.String("name", cfg.DB.Name))
		db, err = repository.NewPostgresDB(ctx, cfg.DSN(), repository.PoolOptions{
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		app.closer = append(app.closer, db.Close)

		store = storage{
			users:        repository.NewPostgresUserRepository(db),
			subjects:     repository.NewPostgresSubjectRepository(db),
			sessions:     repository.NewPostgresSessionRepository(db),
			exams:        repository.NewPostgresExamRepository(db),
			settings:     repository.NewPostgresSettingsRepository(db),
			achievements: repository.NewPostgresAchievementRepository(db),
			snapshots:    repository.NewPostgresSnapshotStore(db),
			tx:           repository.NewPostgresTransactor(db),
		}
	default:
		logger.Warn("using in-memory storage, data is lost on restart")
		subjects := repository.NewInMemorySubjectRepository()
		sessions := repository.NewInMemorySessionRepository()
		exams := repository.NewInMemoryExamRepository()
		settings := repository.NewInMemorySettingsRepository()
		achievements := repository.NewInMemoryAchievementRepository()
		store = storage{
			users:        repository.NewInMemoryUserRepository(),
			subjects:     subjects,
			sessions:     sessions,
			exams:        exams,
			settings:     settings,
			achievements: achievements,
			snapshots:    repository.NewInMemorySnapshotStore(),
			tx:           repository.NewInMemoryTransactor(subjects, sessions, exams, settings, achievements),
		}
	}

	if cfg.Snapshot.Backend == "sqlite" {
		sqliteStore, err := repository.NewSQLiteSnapshotStore(cfg.Snapshot.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("snapshot store: %w", err)
		}
		app.closer = append(app.closer, sqliteStore.Close)
		store.snapshots = sqliteStore
		logger.Info("snapshots stored in sqlite", zap.String("path", cfg.Snapshot.SQLitePath))
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = cache.NewRedisClient(ctx, cache.Options{
			URL:      cfg.Redis.URL,
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			logger.Warn("redis unavailable, running without cache and rate limiting", zap.Error(err))
			rdb, err = nil, nil
		} else {
			app.closer = append(app.closer, rdb.Close)
		}
	}

	if rdb != nil {
		store.subjects = repository.NewCachedSubjectRepository(store.subjects, rdb)
		store.timers = cache.NewRedisTimerStore(rdb)
	} else {
		store.timers = repository.NewInMemoryTimerStore()
	}

	tokenService := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, store.users)

	achievementService := services.NewAchievementService(store.achievements, store.sessions, store.exams, store.settings)
	app.worker = workers.NewAchievementWorker(achievementService, logger, cfg.Worker.QueueSize)

	subjectService := services.NewSubjectService(store.subjects, store.settings)
	sessionService := services.NewSessionService(store.sessions, store.subjects, app.worker)
	examService := services.NewExamService(store.exams, app.worker)
	snapshotService := services.NewSnapshotService(services.SnapshotRepos{
		Tx:           store.tx,
		Snapshots:    store.snapshots,
		Subjects:     store.subjects,
		Sessions:     store.sessions,
		Exams:        store.exams,
		Settings:     store.settings,
		Achievements: store.achievements,
	}, app.worker, cfg.Snapshot.CodeLength)

	app.router = adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:        adapterHTTP.NewAuthHandler(services.NewAuthService(store.users, store.settings, tokenService)),
		SubjectHandler:     adapterHTTP.NewSubjectHandler(subjectService),
		SessionHandler:     adapterHTTP.NewSessionHandler(sessionService),
		ExamHandler:        adapterHTTP.NewExamHandler(examService),
		SettingsHandler:    adapterHTTP.NewSettingsHandler(services.NewSettingsService(store.settings)),
		StreakHandler:      adapterHTTP.NewStreakHandler(services.NewStreakService(store.sessions, store.exams, store.settings), nil),
		StatsHandler:       adapterHTTP.NewStatsHandler(services.NewStatsService(store.subjects, store.sessions, store.exams, store.settings)),
		AchievementHandler: adapterHTTP.NewAchievementHandler(achievementService),
		TimerHandler:       adapterHTTP.NewTimerHandler(services.NewTimerService(store.timers, store.subjects, sessionService)),
		SnapshotHandler:    adapterHTTP.NewSnapshotHandler(snapshotService),
		TokenService:       tokenService,
		DB:                 db,
		Redis:              rdb,
		Logger:             logger,
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		RateLimit:          cfg.RateLimit.Requests,
		RateWindow:         cfg.RateLimit.Window,
		StartTime:          time.Now(),
	})

	ready = true
	return app, nil
}

// Close releases storage connections in reverse order of acquisition.
func (a *application) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closer) - 1; i >= 0; i-- {
		if err := a.closer[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closer = nil
	return errors.Join(errs...)
}
