// Package source defines the upstream collaborators the engine consumes:
// training history, roster, and alert rule configuration. The default
// implementation reads from Postgres via pgxpool prepared statements; tests
// substitute in-memory providers.
package source

import (
	"context"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/load"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/rules"
)

// Roster roles. A coach evaluates one team, an admin evaluates everyone,
// an athlete evaluates only themselves.
const (
	RoleAthlete = "athlete"
	RoleCoach   = "coach"
	RoleAdmin   = "admin"
)

// Member is one athlete in scope for evaluation.
type Member struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	TeamID      string `json:"team_id,omitempty"`
}

// Provider supplies the engine's inputs. Fetch failures are the provider's
// to report; the pipeline treats them as absent data for the affected users
// and leaves previously derived state untouched.
type Provider interface {
	// TrainingHistory returns all logged sessions for one athlete, in any
	// order — the engine sorts internally.
	TrainingHistory(ctx context.Context, userID string) ([]load.TrainingEntry, error)

	// Roster resolves who to evaluate for a caller role and scope (a team
	// ID for coaches, a user ID for athletes, ignored for admins).
	Roster(ctx context.Context, role, scope string) ([]Member, error)

	// RuleConfig returns the configured alert rule set. An empty set means
	// no override exists; callers fall back to rules.Defaults.
	RuleConfig(ctx context.Context) ([]rules.Rule, error)
}
