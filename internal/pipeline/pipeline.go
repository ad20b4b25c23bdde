// Package pipeline runs the full risk evaluation pass: fetch roster and
// histories, normalize loads, recompute ratio series, evaluate alert rules,
// and merge the results into the alert store.
//
// One run recomputes everything from source history — no incremental state
// survives between runs. Alerts for an athlete are merged only after that
// athlete's evaluation completes, so an abandoned run never leaves partial
// writes. Overlapping runs are safe: the store's dedup key makes them
// idempotent.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/acwr"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/alerts"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/load"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/notify"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/rules"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/snapshot"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/source"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/team"
)

// Pipeline wires the evaluation stages together.
type Pipeline struct {
	src      source.Provider
	store    *alerts.Store
	snaps    *snapshot.Store
	notifier *notify.Notifier
	role     string
	scope    string
	logger   *slog.Logger

	// now is the clock, swappable in tests.
	now func() time.Time

	// afterRun, when set, runs at the end of every completed pass.
	afterRun func(RunResult)
}

// New creates a Pipeline evaluating the roster visible to (role, scope).
func New(src source.Provider, store *alerts.Store, snaps *snapshot.Store, notifier *notify.Notifier, role, scope string, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		src:      src,
		store:    store,
		snaps:    snaps,
		notifier: notifier,
		role:     role,
		scope:    scope,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the pipeline clock. Test hook.
func (p *Pipeline) SetClock(now func() time.Time) { p.now = now }

// SetAfterRun registers a callback invoked after every completed pass, on
// the run's goroutine. Used to drop cached responses built from the
// replaced snapshot.
func (p *Pipeline) SetAfterRun(fn func(RunResult)) { p.afterRun = fn }

// Run executes one full pass. Fetch failures are fail-open: an unreachable
// roster produces an empty run, an unreachable athlete history skips that
// athlete and leaves previously derived state for them untouched.
func (p *Pipeline) Run(ctx context.Context) RunResult {
	start := p.now()
	var result RunResult

	ruleSet := p.loadRules(ctx)

	members, err := p.src.Roster(ctx, p.role, p.scope)
	if err != nil {
		p.logger.Warn("Roster fetch failed, skipping run", "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("roster: %s", err))
		result.Duration = p.now().Sub(start)
		return result
	}
	result.UsersFound = len(members)

	snap := &snapshot.Snapshot{
		TakenAt: start,
		Users:   make(map[string]snapshot.User, len(members)),
		Teams:   make(map[string][]team.Point),
	}
	teamSeries := make(map[string]map[string][]acwr.Point)
	var skipped []source.Member

	for _, m := range members {
		if ctx.Err() != nil {
			// Keep the previous snapshot: an abandoned run must not
			// publish a partial read model.
			result.Errors = append(result.Errors, "run cancelled")
			result.Duration = p.now().Sub(start)
			p.logger.Warn("Pipeline run cancelled, keeping previous snapshot")
			return result
		}

		user, batch, ok := p.evaluateUser(ctx, m, ruleSet, &result)
		if !ok {
			skipped = append(skipped, m)
			continue
		}
		result.UsersEvaluated++
		result.PointsComputed += len(user.Series)

		// Merge per athlete, after their evaluation completes. Keeps the
		// store consistent even if the run is abandoned mid-flight.
		merge := p.store.Merge(p.now(), batch)
		result.AlertsCreated += len(merge.Created)
		result.AlertsDeduped += merge.Deduped
		if p.notifier != nil {
			p.notifier.AlertsCreated(ctx, merge.Created)
		}

		snap.Users[m.UserID] = user
		if m.TeamID != "" {
			if teamSeries[m.TeamID] == nil {
				teamSeries[m.TeamID] = make(map[string][]acwr.Point)
			}
			teamSeries[m.TeamID][m.UserID] = user.Series
		}
	}

	// Fail-open: an athlete whose fetch failed keeps their previously
	// published series and band, including their team contribution.
	if prior := p.snaps.Current(); prior != nil {
		for _, m := range skipped {
			user, ok := prior.Users[m.UserID]
			if !ok {
				continue
			}
			snap.Users[m.UserID] = user
			if tid := user.Member.TeamID; tid != "" {
				if teamSeries[tid] == nil {
					teamSeries[tid] = make(map[string][]acwr.Point)
				}
				teamSeries[tid][m.UserID] = user.Series
			}
		}
	}

	for teamID, series := range teamSeries {
		snap.Teams[teamID] = team.Aggregate(series)
	}
	p.snaps.Replace(snap)

	result.Duration = p.now().Sub(start)
	p.logger.Info("Pipeline run complete", "summary", result.Summary())
	if p.afterRun != nil {
		p.afterRun(result)
	}
	return result
}

// evaluateUser runs the per-athlete stages. Returns ok=false when the
// history fetch failed and the athlete was skipped.
func (p *Pipeline) evaluateUser(ctx context.Context, m source.Member, ruleSet []rules.Rule, result *RunResult) (snapshot.User, []alerts.Alert, bool) {
	entries, err := p.src.TrainingHistory(ctx, m.UserID)
	if err != nil {
		p.logger.Warn("History fetch failed, skipping athlete", "user_id", m.UserID, "error", err)
		result.UsersSkipped++
		result.Errors = append(result.Errors, fmt.Sprintf("history %s: %s", m.UserID, err))
		return snapshot.User{}, nil, false
	}

	points := load.Normalize(entries)
	series := acwr.Series(points)

	mature := false
	if len(points) > 0 {
		mature = acwr.Mature(points[0].Date, p.now())
	}

	band := acwr.BandUnknown
	latest := acwr.Latest(series)
	if mature && latest != nil {
		band = acwr.Classify(latest.Ratio)
	}

	in := rules.Input{
		UserID:       m.UserID,
		DisplayName:  m.DisplayName,
		Latest:       latest,
		Mature:       mature,
		LastTraining: lastTrainingDate(entries),
		Now:          p.now(),
	}
	batch := rules.Evaluate(ruleSet, in)

	user := snapshot.User{Member: m, Series: series, Band: band, Mature: mature}
	return user, batch, true
}

// loadRules fetches the configured rule set, falling back to the built-in
// defaults on fetch failure, empty config, or validation failure. A
// best-effort alert feed beats none.
func (p *Pipeline) loadRules(ctx context.Context) []rules.Rule {
	set, err := p.src.RuleConfig(ctx)
	if err != nil {
		p.logger.Warn("Rule config fetch failed, using defaults", "error", err)
		return rules.Defaults()
	}
	if len(set) == 0 {
		return rules.Defaults()
	}
	if err := rules.Validate(set); err != nil {
		p.logger.Warn("Rule config invalid, using defaults", "error", err)
		return rules.Defaults()
	}
	return set
}

// lastTrainingDate returns the most recent raw entry date, day-truncated.
// The "not training" rule conditions count any logged session, including
// ones the normalizer dropped for missing load fields.
func lastTrainingDate(entries []load.TrainingEntry) *time.Time {
	var last time.Time
	for _, e := range entries {
		if d := load.Day(e.Date); d.After(last) {
			last = d
		}
	}
	if last.IsZero() {
		return nil
	}
	return &last
}
