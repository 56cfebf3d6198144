package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/taskhub/taskhub/internal/auth"
	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/http/handlers"
	"github.com/taskhub/taskhub/internal/http/middlewares"
	"github.com/taskhub/taskhub/internal/observability"
	"github.com/taskhub/taskhub/internal/repo/memory"
	"github.com/taskhub/taskhub/internal/repo/postgres"
	"github.com/taskhub/taskhub/internal/session"
)

// NewRouter wires the whole HTTP surface. A nil pool selects the in-memory
// stores (dev and tests); a nil cache skips session caching.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cache *session.Cache, reg *prometheus.Registry, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("taskhub"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(prom.GinHandleMiddleware())

	// health + ops

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	hh := handlers.NewHealthHandler(ping)
	r.GET("/healthz", hh.Healthz)
	r.GET("/readyz", hh.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	r.GET("/docs", handlers.DocsUI)
	r.GET("/docs/openapi.yaml", handlers.DocsOpenAPI)

	// wire up repositories; memory stores keep the same contracts

	var (
		usersRepo    handlers.UserStore
		usersGetter  middlewares.UserGetter
		sessionsRepo session.Repo
		tasksRepo    handlers.TaskStore
	)

	if pool != nil {
		users := postgres.NewUsersRepo(pool, prom)
		usersRepo = users
		usersGetter = users
		sessionsRepo = postgres.NewSessionsRepo(pool, prom)
		tasksRepo = postgres.NewTasksRepo(pool, prom)
	} else {
		users := memory.NewUsersRepo()
		usersRepo = users
		usersGetter = users
		sessionsRepo = memory.NewSessionsRepo()
		tasksRepo = memory.NewTasksRepo()
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.AuthTTL())
	sessions := session.NewStore(sessionsRepo, cache)

	uh := handlers.NewUsersHandler(usersRepo, sessions, tokens)
	th := handlers.NewTasksHandler(tasksRepo)

	am := middlewares.NewAuthMiddleware(tokens, sessions, usersGetter, prom)

	// credential endpoints get a brute-force window per client IP
	limiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateWindow())
	limited := limiter.RateLimiterMiddleware(middlewares.KeyByIP)

	r.POST("/users", limited, uh.SignUp)
	r.POST("/users/login", limited, uh.Login)

	authed := r.Group("/")
	authed.Use(am.RequireAuth())

	authed.GET("/users/me", uh.Me)
	authed.DELETE("/users/me/token", uh.Logout)

	authed.POST("/todos", th.Create)
	authed.GET("/todos", th.List)
	authed.GET("/todos/:id", th.GetByID)
	authed.PATCH("/todos/:id", th.Update)
	authed.DELETE("/todos/:id", th.Delete)

	return r
}
