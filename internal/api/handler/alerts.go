package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/api/respond"
)

// GetActiveAlerts returns the active alert feed for one athlete.
// @Summary Active alerts
// @Description Non-dismissed, non-expired alerts sorted by priority then recency.
// @Tags alerts
// @Produce json
// @Param userID path string true "Athlete ID"
// @Success 200 {array} alerts.Alert
// @Router /alerts/user/{userID} [get]
func (h *Handler) GetActiveAlerts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	respond.WriteJSONObject(w, http.StatusOK, h.alerts.Active(time.Now(), userID))
}

// GetUnreadAlerts returns the active alerts the athlete has not read.
// @Summary Unread alerts
// @Tags alerts
// @Produce json
// @Param userID path string true "Athlete ID"
// @Success 200 {array} alerts.Alert
// @Router /alerts/user/{userID}/unread [get]
func (h *Handler) GetUnreadAlerts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	respond.WriteJSONObject(w, http.StatusOK, h.alerts.Unread(time.Now(), userID))
}

// MarkAlertRead flips an alert's read flag.
// @Summary Mark alert read
// @Tags alerts
// @Produce json
// @Param alertID path string true "Alert ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /alerts/{alertID}/read [post]
func (h *Handler) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "alertID")
	if !h.alerts.MarkRead(id) {
		respond.WriteError(w, http.StatusNotFound, "ALERT_NOT_FOUND", "No alert with that ID")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

// DismissAlert removes an alert from the active view permanently.
// @Summary Dismiss alert
// @Tags alerts
// @Produce json
// @Param alertID path string true "Alert ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /alerts/{alertID}/dismiss [post]
func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "alertID")
	if !h.alerts.Dismiss(id) {
		respond.WriteError(w, http.StatusNotFound, "ALERT_NOT_FOUND", "No alert with that ID")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

// MarkAllAlertsRead flags every alert of an athlete as read.
// @Summary Mark all alerts read
// @Tags alerts
// @Produce json
// @Param userID path string true "Athlete ID"
// @Success 200 {object} map[string]interface{}
// @Router /alerts/user/{userID}/read-all [post]
func (h *Handler) MarkAllAlertsRead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	flipped := h.alerts.MarkAllRead(userID)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"updated": flipped,
	})
}
