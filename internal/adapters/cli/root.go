// Package cli is the cobra command tree behind cmd/engine.
package cli

import (
	"context"
	"fmt"

	"inventory-engine/internal/app"
	"inventory-engine/internal/config"
	"inventory-engine/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Runtime is an opened database pool and the services wired over it.
type Runtime struct {
	Pool    *pgxpool.Pool
	Service app.ApplicationService
}

// Close releases the pool, if any.
func (r *Runtime) Close() {
	if r.Pool != nil {
		r.Pool.Close()
	}
}

// Env carries what every command needs. Open is called lazily so commands that
// never touch the engine (migrate, help) do not open a pool.
type Env struct {
	Config *config.Config
	Logger *logrus.Logger
	Open   func(ctx context.Context) (*Runtime, error)
}

// NewEnv returns an Env whose Open connects to cfg.DatabaseURL.
func NewEnv(cfg *config.Config, logger *logrus.Logger) *Env {
	return &Env{
		Config: cfg,
		Logger: logger,
		Open: func(ctx context.Context) (*Runtime, error) {
			pool, err := db.NewPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return nil, err
			}
			return &Runtime{Pool: pool, Service: app.New(pool, cfg)}, nil
		},
	}
}

// NewRootCommand builds the full command tree.
func NewRootCommand(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "engine",
		Short:         "Inventory and production intelligence engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCommand(env),
		newMigrateCommand(env),
		newCronCommand(env),
		newCheckCommand(env),
		newForecastCommand(env),
		newEOQCommand(env),
		newABCCommand(env),
		newAlertsCommand(env),
		newVerifyCommand(env),
		newSeedCommand(env),
	)
	return root
}

// withService opens the runtime for the duration of fn.
func withService(cmd *cobra.Command, env *Env, fn func(ctx context.Context, rt *Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := env.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer rt.Close()
	return fn(ctx, rt)
}
