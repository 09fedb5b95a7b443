package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	webAdapter "inventory-engine/internal/adapters/web"
	"inventory-engine/internal/scheduler"

	"github.com/spf13/cobra"
)

func newServeCommand(env *Env) *cobra.Command {
	var withCron bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return withService(cmd, env, func(_ context.Context, rt *Runtime) error {
				if withCron {
					sched, closeSched, err := buildScheduler(ctx, env, rt)
					if err != nil {
						return err
					}
					defer closeSched()
					sched.Start()
					defer sched.Shutdown()
				}

				srv := &http.Server{
					Addr:              ":" + env.Config.ServerPort,
					Handler:           webAdapter.NewHandler(rt.Service, env.Logger, env.Config.AllowedOrigins),
					ReadHeaderTimeout: 10 * time.Second,
				}

				errCh := make(chan error, 1)
				go func() {
					env.Logger.WithField("port", env.Config.ServerPort).Info("server starting")
					errCh <- srv.ListenAndServe()
				}()

				select {
				case err := <-errCh:
					if !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil
				case <-ctx.Done():
				}

				env.Logger.Info("server shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
		},
	}
	cmd.Flags().BoolVar(&withCron, "cron", false, "Also run the scheduled alert checks in this process")
	return cmd
}

// buildScheduler registers the alert jobs, using a Redis lock when REDIS_ADDRESS is set.
func buildScheduler(ctx context.Context, env *Env, rt *Runtime) (*scheduler.Scheduler, func(), error) {
	var locker scheduler.Locker
	closeFn := func() {}
	if env.Config.RedisAddress != "" {
		rdb, err := scheduler.ConnectRedis(ctx, env.Config.RedisAddress)
		if err != nil {
			return nil, nil, err
		}
		locker = scheduler.NewRedisLocker(rdb)
		closeFn = func() { _ = rdb.Close() }
	}

	sched := scheduler.New(env.Logger, locker)
	for _, job := range scheduler.AlertJobs(rt.Service, env.Config) {
		if err := sched.Register(job); err != nil {
			closeFn()
			return nil, nil, err
		}
	}
	return sched, closeFn, nil
}
