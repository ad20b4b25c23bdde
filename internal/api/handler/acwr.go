package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/acwr"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/api/respond"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/cache"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/snapshot"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/team"
)

// userSeriesResponse is the per-athlete ACWR read model.
type userSeriesResponse struct {
	UserID      string       `json:"user_id"`
	DisplayName string       `json:"display_name"`
	Band        acwr.Band    `json:"band"`
	Mature      bool         `json:"mature"`
	Series      []acwr.Point `json:"series"`
}

// teamSeriesResponse is the team-level ACWR read model.
type teamSeriesResponse struct {
	TeamID string       `json:"team_id"`
	Latest *team.Point  `json:"latest,omitempty"`
	Series []team.Point `json:"series"`
}

// GetAcwrSeries returns one athlete's ratio series from the last run.
// @Summary Athlete ACWR series
// @Description Ratio series, current risk band, and maturity from the latest pipeline run.
// @Tags acwr
// @Produce json
// @Param userID path string true "Athlete ID"
// @Success 200 {object} userSeriesResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /acwr/{userID} [get]
func (h *Handler) GetAcwrSeries(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	key := "acwr:" + userID

	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLSeries, true)
		return
	}

	user, ok := h.snaps.User(userID)
	if !ok {
		respond.WriteError(w, http.StatusNotFound, "USER_NOT_FOUND", "No data for that athlete yet")
		return
	}

	h.writeCached(w, r, key, userResponse(user), cache.TTLSeries)
}

// GetTeamAcwrSeries returns the aggregated team ratio series.
// @Summary Team ACWR series
// @Description Per-date team average ratio with contributing athlete counts.
// @Tags acwr
// @Produce json
// @Param teamID path string true "Team ID"
// @Success 200 {object} teamSeriesResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /acwr/team/{teamID} [get]
func (h *Handler) GetTeamAcwrSeries(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	key := "acwr:team:" + teamID

	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLSeries, true)
		return
	}

	points, ok := h.snaps.Team(teamID)
	if !ok {
		respond.WriteError(w, http.StatusNotFound, "TEAM_NOT_FOUND", "No data for that team yet")
		return
	}

	resp := teamSeriesResponse{TeamID: teamID, Latest: team.Latest(points), Series: points}
	h.writeCached(w, r, key, resp, cache.TTLSeries)
}

func userResponse(u snapshot.User) userSeriesResponse {
	return userSeriesResponse{
		UserID:      u.Member.UserID,
		DisplayName: u.Member.DisplayName,
		Band:        u.Band,
		Mature:      u.Mature,
		Series:      u.Series,
	}
}

// writeCached marshals v, stores it under key, and writes it with ETag
// handling.
func (h *Handler) writeCached(w http.ResponseWriter, r *http.Request, key string, v interface{}, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_FAILED", "Failed to encode response")
		return
	}
	etag := h.cache.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}
