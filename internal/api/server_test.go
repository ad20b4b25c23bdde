package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/acwr"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/alerts"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/api"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/cache"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/config"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/snapshot"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/source"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/team"
)

type env struct {
	router    http.Handler
	store     *alerts.Store
	snaps     *snapshot.Store
	triggered *int
}

func newEnv(t *testing.T) env {
	t.Helper()
	cfg := &config.Config{
		CORSAllowOrigins: []string{"*"},
		RateLimitEnabled: false,
	}
	store := alerts.NewStore()
	snaps := snapshot.NewStore()
	triggered := 0
	router := api.NewRouter(nil, cache.New(true), cfg, store, snaps, func() { triggered++ })
	return env{router: router, store: store, snaps: snaps, triggered: &triggered}
}

func (e env) do(method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func seedAlert(t *testing.T, store *alerts.Store, id, userID string) {
	t.Helper()
	result := store.Merge(time.Now(), []alerts.Alert{{
		ID:        id,
		UserID:    userID,
		Type:      alerts.TypeHighRisk,
		Priority:  alerts.PriorityHigh,
		Title:     "High injury risk",
		Message:   "ratio spiked",
		CreatedAt: time.Now(),
	}})
	require.Len(t, result.Created, 1)
}

func seedSnapshot(snaps *snapshot.Store) {
	ratio := 1.67
	snaps.Replace(&snapshot.Snapshot{
		TakenAt: time.Now(),
		Users: map[string]snapshot.User{
			"u1": {
				Member: source.Member{UserID: "u1", DisplayName: "Aoi", TeamID: "t1"},
				Series: []acwr.Point{{
					UserID:      "u1",
					Date:        time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
					AcuteLoad:   350,
					ChronicLoad: 210,
					Ratio:       &ratio,
				}},
				Band:   acwr.BandHigh,
				Mature: true,
			},
		},
		Teams: map[string][]team.Point{
			"t1": {{
				Date:         time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
				TeamRatio:    1.67,
				AthleteCount: 1,
				Band:         acwr.BandHigh,
			}},
		},
	})
}

func TestActiveAlertsEndpoint(t *testing.T) {
	e := newEnv(t)
	seedAlert(t, e.store, "a1", "u1")

	rec := e.do(http.MethodGet, "/api/v1/alerts/user/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []alerts.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, alerts.TypeHighRisk, got[0].Type)
}

func TestMarkReadUnknownAlert(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/api/v1/alerts/nope/read", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ALERT_NOT_FOUND")
}

func TestDismissRemovesFromActiveView(t *testing.T) {
	e := newEnv(t)
	seedAlert(t, e.store, "a1", "u1")

	rec := e.do(http.MethodPost, "/api/v1/alerts/a1/dismiss", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(http.MethodGet, "/api/v1/alerts/user/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got []alerts.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got)
}

func TestAcwrSeriesEndpoint(t *testing.T) {
	e := newEnv(t)
	seedSnapshot(e.snaps)

	rec := e.do(http.MethodGet, "/api/v1/acwr/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		UserID string       `json:"user_id"`
		Band   string       `json:"band"`
		Mature bool         `json:"mature"`
		Series []acwr.Point `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, string(acwr.BandHigh), got.Band)
	assert.True(t, got.Mature)
	require.Len(t, got.Series, 1)

	// Revalidation with the returned ETag yields 304.
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	rec = e.do(http.MethodGet, "/api/v1/acwr/u1", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestAcwrSeriesUnknownAthlete(t *testing.T) {
	e := newEnv(t)
	seedSnapshot(e.snaps)

	rec := e.do(http.MethodGet, "/api/v1/acwr/nobody", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "USER_NOT_FOUND")
}

func TestTeamSeriesEndpoint(t *testing.T) {
	e := newEnv(t)
	seedSnapshot(e.snaps)

	rec := e.do(http.MethodGet, "/api/v1/acwr/team/t1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		TeamID string       `json:"team_id"`
		Latest *team.Point  `json:"latest"`
		Series []team.Point `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "t1", got.TeamID)
	require.NotNil(t, got.Latest)
	assert.Equal(t, 1, got.Latest.AthleteCount)
}

func TestTriggerRunEndpoint(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodPost, "/api/v1/pipeline/run", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, *e.triggered)
}

func TestRootReportsLastRun(t *testing.T) {
	e := newEnv(t)
	seedSnapshot(e.snaps)

	rec := e.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "last_run")
	assert.Contains(t, rec.Body.String(), "athletes_tracked")
}
