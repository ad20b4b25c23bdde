// Command engine is the Bekuta risk engine operational CLI.
//
// Usage:
//
//	bekuta-engine run
//	bekuta-engine run --role coach --scope team-42
//	bekuta-engine acwr --user u123
//	bekuta-engine alerts --user u123
//	bekuta-engine rules
//	bekuta-engine seed
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/alerts"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/config"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/db"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/notify"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/pipeline"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/rules"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/seed"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/snapshot"
	"github.com/mitsunorimaeda/bekuta-by-arca-renew-sub003/internal/source"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "bekuta-engine",
		Short: "Bekuta training-load risk engine CLI",
	}

	root.AddCommand(runCmd())
	root.AddCommand(acwrCmd())
	root.AddCommand(alertsCmd())
	root.AddCommand(rulesCmd())
	root.AddCommand(seedCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// run command
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	var role, scope string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the evaluation pipeline once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(role, scope, func(ctx context.Context, pl *pipeline.Pipeline, _ *alerts.Store, _ *snapshot.Store) error {
				result := pl.Run(ctx)
				logger.Info("Pipeline finished", "summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("pipeline error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", source.RoleAdmin, "Roster role (admin, coach, athlete)")
	cmd.Flags().StringVar(&scope, "scope", "", "Roster scope (team ID for coach, user ID for athlete)")
	return cmd
}

// --------------------------------------------------------------------------
// acwr command
// --------------------------------------------------------------------------

func acwrCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "acwr",
		Short: "Print an athlete's ACWR series",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(source.RoleAthlete, userID, func(ctx context.Context, pl *pipeline.Pipeline, _ *alerts.Store, snaps *snapshot.Store) error {
				pl.Run(ctx)
				user, ok := snaps.User(userID)
				if !ok {
					return fmt.Errorf("no data for user %s", userID)
				}
				fmt.Printf("%s  band=%s mature=%v\n", user.Member.DisplayName, user.Band, user.Mature)
				for _, p := range user.Series {
					ratio := "-"
					if p.Ratio != nil {
						ratio = fmt.Sprintf("%.2f", *p.Ratio)
					}
					fmt.Printf("%s  acute=%8.1f  chronic=%8.1f  ratio=%s\n",
						p.Date.Format("2006-01-02"), p.AcuteLoad, p.ChronicLoad, ratio)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Athlete user ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// --------------------------------------------------------------------------
// alerts command
// --------------------------------------------------------------------------

func alertsCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Evaluate rules and print an athlete's active alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(source.RoleAthlete, userID, func(ctx context.Context, pl *pipeline.Pipeline, store *alerts.Store, _ *snapshot.Store) error {
				pl.Run(ctx)
				active := store.Active(time.Now(), userID)
				if len(active) == 0 {
					fmt.Println("no active alerts")
					return nil
				}
				for _, a := range active {
					fmt.Printf("[%-6s] %-10s %s: %s\n", a.Priority, a.Type, a.Title, a.Message)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Athlete user ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// --------------------------------------------------------------------------
// rules command
// --------------------------------------------------------------------------

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective alert rule set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				src := source.NewPGProvider(pool.Pool)
				set, err := src.RuleConfig(ctx)
				if err != nil || len(set) == 0 || rules.Validate(set) != nil {
					if err != nil {
						logger.Warn("Rule config unavailable, showing defaults", "error", err)
					}
					set = rules.Defaults()
				}
				for _, r := range set {
					state := "enabled"
					if !r.Enabled {
						state = "disabled"
					}
					fmt.Printf("%-10s %-10s %-18s threshold=%.1f %s\n", r.ID, r.Type, r.Condition, r.Threshold, state)
				}
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// seed command
// --------------------------------------------------------------------------

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Upsert demo athletes, training history, and default rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if cfg.IsProduction() {
					return fmt.Errorf("refusing to seed demo data in production")
				}
				result := seed.Demo(ctx, pool.Pool, logger)
				if len(result.Errors) > 0 {
					return fmt.Errorf("seed finished with %d errors", len(result.Errors))
				}
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// withEngine builds a full in-memory engine over the database source and
// hands it to fn.
func withEngine(role, scope string, fn func(context.Context, *pipeline.Pipeline, *alerts.Store, *snapshot.Store) error) error {
	return withDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
		store := alerts.NewStore()
		snaps := snapshot.NewStore()
		notifier := notify.New(notify.NewLogDispatcher(logger), cfg.NotifyMinInterval)
		src := source.NewPGProvider(pool.Pool)
		pl := pipeline.New(src, store, snaps, notifier, role, scope, logger)
		return fn(ctx, pl, store, snaps)
	})
}

// withDB loads config, connects, runs fn, and closes the pool.
func withDB(fn func(context.Context, *config.Config, *db.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
