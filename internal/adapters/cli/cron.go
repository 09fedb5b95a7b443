package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func newCronCommand(env *Env) *cobra.Command {
	var jobName string
	cmd := &cobra.Command{
		Use:   "cron:start",
		Short: "Start the cron scheduler or run a single job by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return withService(cmd, env, func(_ context.Context, rt *Runtime) error {
				sched, closeSched, err := buildScheduler(ctx, env, rt)
				if err != nil {
					return err
				}
				defer closeSched()

				if jobName != "" {
					name := strings.ToLower(jobName)
					fmt.Fprintf(cmd.OutOrStdout(), "Running cron job: %s\n", name)
					return sched.RunJob(ctx, name)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Cron scheduler started with jobs %s. Press Ctrl+C to exit.\n",
					strings.Join(sched.Jobs(), ", "))
				sched.Start()
				<-ctx.Done()
				sched.Shutdown()
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&jobName, "job", "j", "", "Run a single cron job by name and exit")
	return cmd
}
