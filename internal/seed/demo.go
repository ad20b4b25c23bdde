package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/load"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/rules"
)

// athlete is one demo roster entry with a load pattern generator. The
// pattern returns (rpe, minutes) for a day offset counted back from today;
// ok=false means a rest day.
type athlete struct {
	id      string
	name    string
	teamID  string
	pattern func(daysAgo int) (rpe, minutes float64, ok bool)
}

// roster covers the situations the engine distinguishes: steady load,
// an acute spike, detraining, and an athlete who stopped logging.
var roster = []athlete{
	{
		id: "demo-aoi", name: "Aoi Tanaka", teamID: "demo-team",
		// Steady: RPE 6 x 60min daily, ratio hovers near 1.0.
		pattern: func(daysAgo int) (float64, float64, bool) {
			return 6, 60, true
		},
	},
	{
		id: "demo-riku", name: "Riku Sato", teamID: "demo-team",
		// Spike: baseline 5x60, doubled volume over the last week.
		pattern: func(daysAgo int) (float64, float64, bool) {
			if daysAgo < 7 {
				return 8, 90, true
			}
			return 5, 60, true
		},
	},
	{
		id: "demo-hina", name: "Hina Kobayashi", teamID: "demo-team",
		// Detraining: normal base, then almost nothing this week.
		pattern: func(daysAgo int) (float64, float64, bool) {
			if daysAgo < 7 {
				return 3, 20, daysAgo == 3
			}
			return 6, 70, true
		},
	},
	{
		id: "demo-sora", name: "Sora Yamamoto", teamID: "demo-team",
		// Stopped logging six days ago.
		pattern: func(daysAgo int) (float64, float64, bool) {
			return 6, 60, daysAgo >= 6
		},
	},
}

// historyDays is how far back demo history extends. Enough for a mature
// chronic window plus margin.
const historyDays = 35

// Demo upserts the demo roster, five weeks of training history, and the
// default alert rule set.
func Demo(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) Result {
	var result Result
	today := load.Day(time.Now())

	for _, a := range roster {
		if err := upsertUser(ctx, pool, a); err != nil {
			result.AddErrorf("user %s: %v", a.id, err)
			continue
		}
		result.UsersUpserted++

		for daysAgo := historyDays - 1; daysAgo >= 0; daysAgo-- {
			rpe, minutes, ok := a.pattern(daysAgo)
			if !ok {
				continue
			}
			day := today.AddDate(0, 0, -daysAgo)
			if err := upsertEntry(ctx, pool, a.id, day, rpe, minutes); err != nil {
				result.AddErrorf("entry %s %s: %v", a.id, day.Format("2006-01-02"), err)
				continue
			}
			result.EntriesUpserted++
		}
	}

	for _, r := range rules.Defaults() {
		if err := upsertRule(ctx, pool, r); err != nil {
			result.AddErrorf("rule %s: %v", r.ID, err)
			continue
		}
		result.RulesUpserted++
	}

	logger.Info("Demo seed finished", "summary", result.Summary())
	return result
}

func upsertUser(ctx context.Context, pool *pgxpool.Pool, a athlete) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, display_name, role, team_id, is_active)
		VALUES ($1, $2, 'athlete', $3, true)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			team_id = EXCLUDED.team_id,
			is_active = true,
			updated_at = NOW()`,
		a.id, a.name, a.teamID,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func upsertEntry(ctx context.Context, pool *pgxpool.Pool, userID string, day time.Time, rpe, minutes float64) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO training_entries (user_id, entry_date, rpe, duration_minutes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, entry_date) DO UPDATE SET
			rpe = EXCLUDED.rpe,
			duration_minutes = EXCLUDED.duration_minutes,
			updated_at = NOW()`,
		userID, day, rpe, minutes,
	)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

func upsertRule(ctx context.Context, pool *pgxpool.Pool, r rules.Rule) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO alert_rules (id, type, condition, threshold, enabled)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			condition = EXCLUDED.condition,
			threshold = EXCLUDED.threshold,
			enabled = EXCLUDED.enabled`,
		r.ID, string(r.Type), string(r.Condition), r.Threshold, r.Enabled,
	)
	if err != nil {
		return fmt.Errorf("upsert rule: %w", err)
	}
	return nil
}
