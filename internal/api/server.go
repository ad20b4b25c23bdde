package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/alerts"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/api/handler"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/cache"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/config"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/db"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/snapshot"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(pool *db.Pool, appCache *cache.Cache, cfg *config.Config, store *alerts.Store, snaps *snapshot.Store, trigger func()) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.RateLimitBurst))
	}

	// --- Handler dependencies ---
	h := handler.New(pool, appCache, cfg, store, snaps, trigger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Alert feed (user-scoped views, alert-scoped mutations)
		r.Get("/alerts/user/{userID}", h.GetActiveAlerts)
		r.Get("/alerts/user/{userID}/unread", h.GetUnreadAlerts)
		r.Post("/alerts/user/{userID}/read-all", h.MarkAllAlertsRead)
		r.Post("/alerts/{alertID}/read", h.MarkAlertRead)
		r.Post("/alerts/{alertID}/dismiss", h.DismissAlert)

		// ACWR read models
		r.Get("/acwr/{userID}", h.GetAcwrSeries)
		r.Get("/acwr/team/{teamID}", h.GetTeamAcwrSeries)

		// Pipeline control
		r.Post("/pipeline/run", h.TriggerRun)
	})

	return r
}
