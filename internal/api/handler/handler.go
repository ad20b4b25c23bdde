// Package handler provides HTTP handlers for the read-model endpoints. The
// pipeline publishes snapshots and alerts in memory; handlers serve those
// directly and never touch Postgres on the hot path (only the DB health
// check does).
package handler

import (
	"net/http"
	"time"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/alerts"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/api/respond"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/cache"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/config"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/db"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/snapshot"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool    *db.Pool
	cache   *cache.Cache
	cfg     *config.Config
	alerts  *alerts.Store
	snaps   *snapshot.Store
	trigger func() // requests an out-of-band pipeline run
}

// New creates a Handler with shared dependencies.
func New(pool *db.Pool, c *cache.Cache, cfg *config.Config, store *alerts.Store, snaps *snapshot.Store, trigger func()) *Handler {
	return &Handler{
		pool:    pool,
		cache:   c,
		cfg:     cfg,
		alerts:  store,
		snaps:   snaps,
		trigger: trigger,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and the latest pipeline run time.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":    "Bekuta Risk Engine",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	}
	if snap := h.snaps.Current(); snap != nil {
		info["last_run"] = snap.TakenAt.UTC().Format(time.RFC3339)
		info["athletes_tracked"] = len(snap.Users)
	}
	respond.WriteJSONObject(w, http.StatusOK, info)
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.CurrentStats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// TriggerRun requests an out-of-band pipeline run.
// @Summary Trigger pipeline run
// @Description Queues a manual pipeline run; returns immediately.
// @Tags pipeline
// @Produce json
// @Success 202 {object} map[string]interface{}
// @Router /pipeline/run [post]
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	h.trigger()
	respond.WriteJSONObject(w, http.StatusAccepted, map[string]interface{}{
		"status": "queued",
	})
}
