package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-study-engine/internal/adapters/handler/http/middleware"
)

type RouterDependencies struct {
	AuthHandler        *AuthHandler
	SubjectHandler     *SubjectHandler
	SessionHandler     *SessionHandler
	ExamHandler        *ExamHandler
	SettingsHandler    *SettingsHandler
	StreakHandler      *StreakHandler
	StatsHandler       *StatsHandler
	AchievementHandler *AchievementHandler
	TimerHandler       *TimerHandler
	SnapshotHandler    *SnapshotHandler

	TokenService middleware.TokenValidator

	// DB and Redis are optional: nil reports the dependency as disabled.
	DB    *sqlx.DB
	Redis *redis.Client

	Logger         *zap.Logger
	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration
	StartTime      time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.L()
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	router.GET("/health", healthHandler(deps))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")

	public := apiV1.Group("")
	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))

	if deps.Redis != nil && deps.RateLimit > 0 {
		public.Use(middleware.RateLimiter(deps.Redis, middleware.RateLimit{Scope: "auth", Limit: deps.RateLimit, Window: deps.RateWindow}))
		protected.Use(middleware.RateLimiter(deps.Redis, middleware.RateLimit{Scope: "api", Limit: deps.RateLimit, Window: deps.RateWindow}))
	}

	deps.AuthHandler.RegisterRoutes(public)

	deps.SubjectHandler.RegisterRoutes(protected)
	deps.SessionHandler.RegisterRoutes(protected)
	deps.ExamHandler.RegisterRoutes(protected)
	deps.SettingsHandler.RegisterRoutes(protected)
	deps.StreakHandler.RegisterRoutes(protected)
	deps.StatsHandler.RegisterRoutes(protected)
	deps.AchievementHandler.RegisterRoutes(protected)
	deps.TimerHandler.RegisterRoutes(protected)
	deps.SnapshotHandler.RegisterRoutes(protected)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		healthy := true

		dbStatus := "disabled"
		if deps.DB != nil {
			dbStatus = "connected"
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				dbStatus = "unreachable"
				healthy = false
			}
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if err := deps.Redis.Ping(c.Request.Context()).Err(); err != nil {
				redisStatus = "unreachable"
				healthy = false
			}
		}

		status, code := "ok", http.StatusOK
		if !healthy {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}
