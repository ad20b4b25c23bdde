package rules

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/acwr"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/alerts"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/load"
)

// Input is everything one evaluation pass knows about an athlete.
type Input struct {
	UserID       string
	DisplayName  string
	Latest       *acwr.Point // most recent ratio point, nil without one
	Mature       bool        // history long enough to trust the ratio
	LastTraining *time.Time  // date of the most recent training entry
	Now          time.Time
}

// firing is the outcome of a single rule that matched.
type firing struct {
	priority  alerts.Priority
	title     string
	message   string
	acwrValue *float64
	threshold string
	expiry    time.Duration
}

type evaluator func(Rule, Input) (firing, bool)

// evaluators binds each condition tag to its evaluation function.
var evaluators = map[Condition]evaluator{
	AcwrAbove:       evalAcwrAbove,
	AcwrBelow:       evalAcwrBelow,
	NoTrainingDays:  evalNoTrainingDays,
	NoTrainingToday: evalNoTrainingToday,
}

// Evaluate runs every enabled rule against the input and returns one alert
// per firing rule. Disabled rules are skipped; an unknown condition in a
// validated set cannot occur but is skipped defensively all the same.
func Evaluate(set []Rule, in Input) []alerts.Alert {
	var out []alerts.Alert
	for _, r := range set {
		if !r.Enabled {
			continue
		}
		eval, ok := evaluators[r.Condition]
		if !ok {
			continue
		}
		f, fired := eval(r, in)
		if !fired {
			continue
		}
		exp := in.Now.Add(f.expiry)
		out = append(out, alerts.Alert{
			ID:                uuid.NewString(),
			UserID:            in.UserID,
			Type:              r.Type,
			Priority:          f.priority,
			Title:             f.title,
			Message:           f.message,
			AcwrValue:         f.acwrValue,
			ThresholdExceeded: f.threshold,
			CreatedAt:         in.Now,
			ExpiresAt:         &exp,
		})
	}
	return out
}

// --------------------------------------------------------------------------
// Condition evaluators
// --------------------------------------------------------------------------

func evalAcwrAbove(r Rule, in Input) (firing, bool) {
	ratio, ok := matureRatio(in)
	if !ok || ratio <= r.Threshold {
		return firing{}, false
	}

	f := firing{
		priority:  alerts.PriorityMedium,
		title:     "Load increasing",
		message: fmt.Sprintf("%s's acute:chronic ratio is %.2f, above %.1f. Watch the ramp-up.",
			in.DisplayName, ratio, r.Threshold),
		acwrValue: &ratio,
		threshold: fmt.Sprintf("above %.1f", r.Threshold),
		expiry:    expiryAcwrAbove,
	}
	if r.Type == alerts.TypeHighRisk {
		f.priority = alerts.PriorityHigh
		f.title = "High injury risk"
		f.message = fmt.Sprintf("%s's acute:chronic ratio is %.2f — training load spiked above %.1f. Ease off for a few days.",
			in.DisplayName, ratio, r.Threshold)
	}
	return f, true
}

func evalAcwrBelow(r Rule, in Input) (firing, bool) {
	ratio, ok := matureRatio(in)
	if !ok || ratio >= r.Threshold {
		return firing{}, false
	}

	return firing{
		priority:  alerts.PriorityLow,
		title:     "Training load low",
		message: fmt.Sprintf("%s's acute:chronic ratio is %.2f, below %.1f. A gradual build-up keeps fitness.",
			in.DisplayName, ratio, r.Threshold),
		acwrValue: &ratio,
		threshold: fmt.Sprintf("below %.1f", r.Threshold),
		expiry:    expiryAcwrBelow,
	}, true
}

func evalNoTrainingDays(r Rule, in Input) (firing, bool) {
	if in.LastTraining == nil {
		return firing{}, false // never trained, no reference date
	}
	days := daysBetween(*in.LastTraining, in.Now)
	if float64(days) < r.Threshold {
		return firing{}, false
	}

	return firing{
		priority: alerts.PriorityMedium,
		title:    "No recent training",
		message:  fmt.Sprintf("%s has not logged a session for %d days.", in.DisplayName, days),
		expiry:   expiryNoTrainingDays,
	}, true
}

func evalNoTrainingToday(_ Rule, in Input) (firing, bool) {
	if in.Now.Hour() < eveningHour {
		return firing{}, false
	}
	if in.LastTraining != nil && load.Day(*in.LastTraining).Equal(load.Day(in.Now)) {
		return firing{}, false
	}

	return firing{
		priority: alerts.PriorityLow,
		title:    "Nothing logged today",
		message:  fmt.Sprintf("%s has no session recorded today. Log one before midnight.", in.DisplayName),
		expiry:   expiryNoTrainingYet,
	}, true
}

// matureRatio extracts the latest ratio when the athlete has one and the
// history is mature enough to alert on it.
func matureRatio(in Input) (float64, bool) {
	if !in.Mature || in.Latest == nil || in.Latest.Ratio == nil {
		return 0, false
	}
	return *in.Latest.Ratio, true
}

func daysBetween(from, to time.Time) int {
	return int(load.Day(to).Sub(load.Day(from)).Hours() / 24)
}
