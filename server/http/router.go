package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"connector-finder/internal/config"
	finderHnd "connector-finder/internal/finder/handler"
	"connector-finder/internal/finder/service"
	"connector-finder/internal/middleware"
	"connector-finder/internal/observability"
	"connector-finder/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, f *service.Finder, m *observability.Metrics) *chi.Mux {
	r := chi.NewRouter()

	// recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger, m))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxBodyKB) * 1024))

	r.Get("/health", handlers.Health(f))
	if cfg.MetricsEnabled {
		r.Method("GET", "/metrics", m.Handler())
	}

	var limiter *middleware.IPRateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), max(cfg.RateLimitBurst, 1))
	}

	h := finderHnd.New(f, cfg.Defaults, m, logger)
	r.Group(func(r chi.Router) {
		r.Use(limiter.Limit)
		r.Route("/search", func(r chi.Router) {
			r.Post("/model", h.SearchModel)
			r.Post("/model.xlsx", h.SearchModelXLSX)
			r.Post("/specs", h.SearchSpecs)
			r.Post("/specs.xlsx", h.SearchSpecsXLSX)
		})
		r.Get("/products/{vendor}/{model}", h.Product)
	})

	return r
}
