// Package rules evaluates the configurable alert rule set against an
// athlete's latest ratio point and recent training activity.
//
// Each rule condition is a tagged variant with its own evaluator, so adding
// a condition is additive rather than a change to a central switch. Rule
// evaluation is pure and deterministic — there is nothing to retry.
package rules

import (
	"fmt"
	"time"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/alerts"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Alert lifetimes per condition.
const (
	expiryAcwrAbove      = 48 * time.Hour
	expiryAcwrBelow      = 72 * time.Hour
	expiryNoTrainingDays = 7 * 24 * time.Hour
	expiryNoTrainingYet  = 2 * time.Hour // effectively until midnight
)

// eveningHour is the local hour from which the "nothing logged today"
// reminder may fire.
const eveningHour = 22

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Condition selects which evaluator a rule runs.
type Condition string

const (
	AcwrAbove       Condition = "acwr_above"
	AcwrBelow       Condition = "acwr_below"
	NoTrainingDays  Condition = "no_training_days"
	NoTrainingToday Condition = "no_training_today"
)

// Rule is one configured alert rule. Rules are configuration, loaded once
// per pipeline run.
type Rule struct {
	ID        string      `json:"id"`
	Type      alerts.Type `json:"type"`
	Condition Condition   `json:"condition"`
	Threshold float64     `json:"threshold"`
	Enabled   bool        `json:"enabled"`
}

// Defaults returns the built-in rule set used when no override configuration
// exists or the configured set fails validation.
func Defaults() []Rule {
	return []Rule{
		{ID: "default-0", Type: alerts.TypeHighRisk, Condition: AcwrAbove, Threshold: 1.5, Enabled: true},
		{ID: "default-1", Type: alerts.TypeCaution, Condition: AcwrAbove, Threshold: 1.3, Enabled: true},
		{ID: "default-2", Type: alerts.TypeLowLoad, Condition: AcwrBelow, Threshold: 0.8, Enabled: true},
		{ID: "default-3", Type: alerts.TypeNoData, Condition: NoTrainingDays, Threshold: 3, Enabled: true},
		{ID: "default-4", Type: alerts.TypeReminder, Condition: NoTrainingToday, Threshold: 0, Enabled: true},
	}
}

// Validate checks a configured rule set. An invalid set is a configuration
// error — callers fall back to Defaults rather than failing the pipeline.
func Validate(set []Rule) error {
	if len(set) == 0 {
		return fmt.Errorf("empty rule set")
	}
	for _, r := range set {
		if _, ok := evaluators[r.Condition]; !ok {
			return fmt.Errorf("rule %s: unknown condition %q", r.ID, r.Condition)
		}
		if !validTypes[r.Type] {
			return fmt.Errorf("rule %s: unknown type %q", r.ID, r.Type)
		}
	}
	return nil
}

var validTypes = map[alerts.Type]bool{
	alerts.TypeHighRisk: true,
	alerts.TypeCaution:  true,
	alerts.TypeLowLoad:  true,
	alerts.TypeNoData:   true,
	alerts.TypeReminder: true,
}
