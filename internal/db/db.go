// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers every statement the engine uses.
// Prepared statements eliminate parse overhead on the 30-minute pipeline
// cadence where the same queries run for every athlete.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Pipeline: training history per athlete
		"training_history": "SELECT user_id, entry_date, rpe, duration_minutes, load FROM training_entries WHERE user_id = $1 ORDER BY entry_date",

		// Pipeline: rosters
		"roster_all":  "SELECT id, display_name, COALESCE(team_id, '') FROM users WHERE role = 'athlete' AND is_active = true",
		"roster_team": "SELECT id, display_name, COALESCE(team_id, '') FROM users WHERE role = 'athlete' AND is_active = true AND team_id = $1",
		"roster_self": "SELECT id, display_name, COALESCE(team_id, '') FROM users WHERE id = $1",

		// Pipeline: alert rule configuration override
		"alert_rule_config": "SELECT id, type, condition, threshold, enabled FROM alert_rules ORDER BY id",

		// Push delivery: registered device tokens per athlete
		"device_tokens": "SELECT token FROM device_tokens WHERE user_id = $1",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
