package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/alerts"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/load"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/rules"
)

// PGProvider reads engine inputs from Postgres via the pool's prepared
// statements (see internal/db).
type PGProvider struct {
	pool *pgxpool.Pool
}

// NewPGProvider creates a Postgres-backed provider.
func NewPGProvider(pool *pgxpool.Pool) *PGProvider {
	return &PGProvider{pool: pool}
}

// TrainingHistory returns all logged sessions for one athlete.
func (p *PGProvider) TrainingHistory(ctx context.Context, userID string) ([]load.TrainingEntry, error) {
	rows, err := p.pool.Query(ctx, "training_history", userID)
	if err != nil {
		return nil, fmt.Errorf("training history: %w", err)
	}
	defer rows.Close()

	var entries []load.TrainingEntry
	for rows.Next() {
		var e load.TrainingEntry
		if err := rows.Scan(&e.UserID, &e.Date, &e.RPE, &e.DurationMinutes, &e.Load); err != nil {
			return nil, fmt.Errorf("scan training entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Roster resolves the athletes in scope for a caller role.
func (p *PGProvider) Roster(ctx context.Context, role, scope string) ([]Member, error) {
	stmt := "roster_all"
	args := []any{}
	switch role {
	case RoleCoach:
		stmt = "roster_team"
		args = append(args, scope)
	case RoleAthlete:
		stmt = "roster_self"
		args = append(args, scope)
	}

	rows, err := p.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("roster (%s): %w", role, err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.DisplayName, &m.TeamID); err != nil {
			return nil, fmt.Errorf("scan roster member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// DeviceTokens returns the athlete's registered push device tokens.
func (p *PGProvider) DeviceTokens(ctx context.Context, userID string) ([]string, error) {
	rows, err := p.pool.Query(ctx, "device_tokens", userID)
	if err != nil {
		return nil, fmt.Errorf("device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// RuleConfig returns the stored alert rule override, empty when none exists.
func (p *PGProvider) RuleConfig(ctx context.Context) ([]rules.Rule, error) {
	rows, err := p.pool.Query(ctx, "alert_rule_config")
	if err != nil {
		return nil, fmt.Errorf("alert rule config: %w", err)
	}
	defer rows.Close()

	var set []rules.Rule
	for rows.Next() {
		var r rules.Rule
		var typ, cond string
		if err := rows.Scan(&r.ID, &typ, &cond, &r.Threshold, &r.Enabled); err != nil {
			return nil, fmt.Errorf("scan alert rule: %w", err)
		}
		r.Type = alerts.Type(typ)
		r.Condition = rules.Condition(cond)
		set = append(set, r)
	}
	return set, rows.Err()
}
