package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"inventory-engine/internal/app"
	"inventory-engine/internal/db"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newCheckCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:       "check <low-stock|expiring-lots>",
		Short:     "Run one alert scan now",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"low-stock", "expiring-lots"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, env, func(ctx context.Context, rt *Runtime) error {
				var res *app.CheckResult
				var err error
				switch args[0] {
				case "low-stock":
					res, err = rt.Service.CheckLowStock(ctx)
				case "expiring-lots":
					res, err = rt.Service.CheckExpiringLots(ctx)
				default:
					return fmt.Errorf("unknown check %q (want low-stock or expiring-lots)", args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d alert(s) created\n", res.Check, res.Created)
				return nil
			})
		},
	}
}

func newForecastCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "forecast <product-id> <method> <target-date>",
		Short: "Forecast demand for a product (MOVING_AVERAGE, WEIGHTED_AVERAGE, EXPONENTIAL_SMOOTHING, LINEAR_REGRESSION)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID("product-id", args[0])
			if err != nil {
				return err
			}
			return withService(cmd, env, func(ctx context.Context, rt *Runtime) error {
				f, err := rt.Service.Forecast(ctx, app.ForecastRequest{
					ProductID:  productID,
					Method:     args[1],
					TargetDate: args[2],
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), f)
			})
		},
	}
}

func newEOQCommand(env *Env) *cobra.Command {
	var leadTime int
	cmd := &cobra.Command{
		Use:   "eoq <product-id> <annual-demand> <order-cost> <holding-cost>",
		Short: "Compute and store the economic order quantity for a product",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID("product-id", args[0])
			if err != nil {
				return err
			}
			var figures [3]decimal.Decimal
			for i, name := range []string{"annual-demand", "order-cost", "holding-cost"} {
				figures[i], err = decimal.NewFromString(args[i+1])
				if err != nil {
					return fmt.Errorf("invalid %s %q: %w", name, args[i+1], err)
				}
			}
			return withService(cmd, env, func(ctx context.Context, rt *Runtime) error {
				res, err := rt.Service.ComputeEOQ(ctx, app.EOQRequest{
					ProductID:    productID,
					AnnualDemand: figures[0],
					OrderCost:    figures[1],
					HoldingCost:  figures[2],
					LeadTimeDays: leadTime,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().IntVar(&leadTime, "lead-time", 0, "Supplier lead time in days, used for the reorder point")
	return cmd
}

func newABCCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "abc <from> <to>",
		Short: "Reclassify products A/B/C by sales value in the period",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, env, func(ctx context.Context, rt *Runtime) error {
				res, err := rt.Service.ClassifyABC(ctx, app.DateRange{From: args[0], To: args[1]})
				if err != nil {
					return err
				}
				printABC(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
}

func newAlertsCommand(env *Env) *cobra.Command {
	var ackID int
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List unread alerts, or acknowledge one with --ack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, env, func(ctx context.Context, rt *Runtime) error {
				if ackID > 0 {
					a, err := rt.Service.AcknowledgeAlert(ctx, ackID)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Alert %d acknowledged.\n", a.ID)
					return nil
				}
				res, err := rt.Service.ListAlerts(ctx)
				if err != nil {
					return err
				}
				printAlerts(cmd.OutOrStdout(), res.Alerts)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&ackID, "ack", 0, "Acknowledge the alert with this id")
	return cmd
}

// errIntegrity makes verify exit non-zero when issues are found.
var errIntegrity = errors.New("integrity check found issues")

func newVerifyCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Run the read-only ledger consistency checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, env, func(ctx context.Context, rt *Runtime) error {
				res, err := rt.Service.VerifyIntegrity(ctx)
				if err != nil {
					return err
				}
				printIntegrity(cmd.OutOrStdout(), res)
				if !res.OK {
					return errIntegrity
				}
				return nil
			})
		},
	}
}

func newSeedCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo materials, products, recipes and sales into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, env, func(ctx context.Context, rt *Runtime) error {
				if rt.Pool == nil {
					return errors.New("seed requires a database connection")
				}
				if err := db.Seed(ctx, rt.Pool, env.Logger); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Demo data loaded.")
				return nil
			})
		},
	}
}

func parseID(name, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return id, nil
}
