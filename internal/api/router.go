package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/baechuer/real-time-ressys/services/admin-console/internal/api/handlers"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/config"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/logger"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/proxy"
	"github.com/baechuer/real-time-ressys/services/admin-console/internal/tracing"
	"github.com/baechuer/real-time-ressys/services/admin-console/middleware"
)

// Deps is everything the router mounts. Redis is optional.
type Deps struct {
	Config    *config.Config
	Console   *handlers.Console
	Readiness *handlers.ReadinessHandler
	Redis     *redis.Client
}

func NewRouter(d Deps) (http.Handler, error) {
	cfg := d.Config
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Metrics)
	if cfg.TracingEnabled {
		r.Use(middleware.Tracing(tracing.ServiceName))
	}

	// Probes
	r.Get("/healthz", d.Readiness.Healthz)
	r.Get("/readyz", d.Readiness.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	// Raw backend pass-through: /api/users -> BACKEND_URL/users
	apiProxy, err := proxy.New(cfg.BackendURL, "/api")
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	r.Mount("/api", apiProxy)

	c := d.Console
	limit := mutationLimiter(cfg, d.Redis)

	r.Get("/", c.Dashboard)
	r.Get("/lang/{tag}", c.SetLanguage)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", c.ListUsers)
		r.Get("/new", c.NewUser)
		r.With(limit).Post("/save", c.SaveUser)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/edit", c.EditUser)
			r.Get("/delete", c.ConfirmDeleteUser)
			r.With(limit).Post("/delete", c.DeleteUser)
			r.Get("/reset-password", c.ResetPasswordForm)
			r.With(limit).Post("/reset-password", c.ResetPassword)
			r.Get("/todos", c.UserTodos)
		})
	})

	r.Route("/todos", func(r chi.Router) {
		r.Get("/", c.ListTodos)
		r.Get("/new", c.NewTodo)
		r.With(limit).Post("/save", c.SaveTodo)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/edit", c.EditTodo)
			r.Get("/delete", c.ConfirmDeleteTodo)
			r.With(limit).Post("/delete", c.DeleteTodo)
			r.With(limit).Post("/toggle", c.ToggleTodo)
		})
	})

	logger.Log.Info().
		Str("backend", cfg.BackendURL).
		Bool("rate_limit", cfg.RLEnabled).
		Bool("redis", d.Redis != nil).
		Msg("routes_mounted")

	return r, nil
}

// mutationLimiter guards the POST routes: Redis sliding window when Redis is
// configured, in-process httprate otherwise.
func mutationLimiter(cfg *config.Config, rdb *redis.Client) func(http.Handler) http.Handler {
	if !cfg.RLEnabled || cfg.RLLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if rdb != nil {
		return middleware.NewRedisRateLimiter(rdb).Middleware(middleware.RateLimitConfig{
			Limit:  cfg.RLLimit,
			Window: cfg.RLWindow,
		})
	}
	return httprate.LimitByIP(cfg.RLLimit, cfg.RLWindow)
}
