// studioctl is the operational companion to the API server. It runs the
// same reconciliation, materialization and repair operations from the
// command line, for cron jobs and for staff working over SSH.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/estudiofit/studio-booking/internal/config"
	"github.com/estudiofit/studio-booking/internal/database"
	"github.com/estudiofit/studio-booking/internal/repository"
	"github.com/estudiofit/studio-booking/internal/schedule"
)

var (
	db  *sql.DB
	svc *schedule.Service
)

func main() {
	root := &cobra.Command{
		Use:           "studioctl",
		Short:         "Operational tooling for the studio booking system",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg := config.Load()
			var err error
			db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
			if err != nil {
				return fmt.Errorf("database connect: %w", err)
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			svc, err = schedule.NewService(repository.NewScheduleStore(db), schedule.WithLogger(logger))
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				_ = db.Close()
			}
		},
	}

	root.AddCommand(syncCmd(), materializeCmd(), repairCmd(), diagnoseCmd(), windowsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func syncCmd() *cobra.Command {
	var userID int64
	var all bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile fixed schedules into reservations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			opts := schedule.SyncOptions{WaitlistOnFull: true}
			if all {
				members, err := repository.NewUserRepo(db).ListMembers(ctx)
				if err != nil {
					return err
				}
				failed := 0
				for _, m := range members {
					res, err := svc.SyncUser(ctx, m.ID, opts)
					if err != nil {
						failed++
						fmt.Printf("user %d: FAILED: %v\n", m.ID, err)
						continue
					}
					printResult(m.ID, res)
				}
				if failed > 0 {
					return fmt.Errorf("%d member(s) failed to sync", failed)
				}
				return nil
			}
			if userID <= 0 {
				return fmt.Errorf("pass --user ID or --all")
			}
			res, err := svc.SyncUser(ctx, userID, opts)
			if err != nil {
				return err
			}
			printResult(userID, res)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "sync a single member by ID")
	cmd.Flags().BoolVar(&all, "all", false, "sync every member")
	return cmd
}

func printResult(userID int64, res schedule.Result) {
	fmt.Printf("user %d: created=%d deleted=%d warnings=%d\n",
		userID, len(res.Created), len(res.Deleted), len(res.Warnings))
	for _, w := range res.Warnings {
		fmt.Printf("  warning [%s] %s\n", w.Kind, w.Message)
	}
}

func materializeCmd() *cobra.Command {
	var year, month int
	var exclude []string
	cmd := &cobra.Command{
		Use:   "materialize",
		Short: "Generate a month's sessions from the weekly slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 || month < 1 || month > 12 {
				return fmt.Errorf("pass --year and --month 1-12")
			}
			dates := make([]time.Time, 0, len(exclude))
			for _, s := range exclude {
				d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
				if err != nil {
					return fmt.Errorf("bad exclude date %q: want YYYY-MM-DD", s)
				}
				dates = append(dates, d)
			}
			key := schedule.MonthKey{Year: year, Month: time.Month(month)}
			report, err := svc.MaterializeMonth(context.Background(), key, dates)
			if err != nil {
				return err
			}
			fmt.Printf("%d-%02d: created=%d skipped_existing=%d skipped_excluded=%d\n",
				report.Month.Year, int(report.Month.Month),
				report.Created, report.SkippedExisting, report.SkippedExcluded)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "target year")
	cmd.Flags().IntVar(&month, "month", 0, "target month (1-12)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "holiday dates to skip (YYYY-MM-DD)")
	return cmd
}

func repairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Repair data defects",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "overbooking",
		Short: "Trim sessions with more active reservations than capacity",
		RunE: func(cmd *cobra.Command, args []string) error {
			repaired, err := svc.TrimOverbooked(context.Background())
			if err != nil {
				return err
			}
			if len(repaired) == 0 {
				fmt.Println("no overbooked sessions")
				return nil
			}
			for _, s := range repaired {
				ids := make([]string, 0, len(s.Evicted))
				for _, r := range s.Evicted {
					ids = append(ids, fmt.Sprint(r.UserID))
				}
				fmt.Printf("session %d: capacity=%d active=%d evicted_users=[%s]\n",
					s.SessionID, s.Capacity, s.Active, strings.Join(ids, ","))
			}
			return nil
		},
	})
	return cmd
}

func diagnoseCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Report schedule holes for a member without changing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("pass --user ID")
			}
			report, err := svc.Inspect(context.Background(), userID)
			if err != nil {
				return err
			}
			fmt.Printf("user %d: assignments=%d open_windows=%d future_reservations=%d\n",
				report.UserID, len(report.Assignments), len(report.OpenWindows), report.FutureReservations)
			for _, s := range report.UnmaterializedSlots {
				fmt.Printf("  unmaterialized slot %d: %s %s %s\n", s.SlotID, s.Key().Day, s.Key().TimeOfDay, s.Key().Modality)
			}
			for _, id := range report.DuplicateSessionIDs {
				fmt.Printf("  duplicate reservations on session %d\n", id)
			}
			for _, id := range report.OverbookedSessionIDs {
				fmt.Printf("  overbooked session %d\n", id)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "member ID")
	return cmd
}

func windowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "Open or close month booking windows",
	}
	set := func(open bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			month, _ := cmd.Flags().GetInt("month")
			if year == 0 || month < 1 || month > 12 {
				return fmt.Errorf("pass --year and --month 1-12")
			}
			win, err := repository.NewWindowRepo(db).SetOpen(context.Background(), year, time.Month(month), open)
			if err != nil {
				return err
			}
			state := "closed"
			if win.IsOpen {
				state = "open"
			}
			fmt.Printf("%d-%02d is now %s\n", win.Year, int(win.Month), state)
			return nil
		}
	}
	for _, action := range []struct {
		use  string
		open bool
	}{{"open", true}, {"close", false}} {
		sub := &cobra.Command{
			Use:   action.use,
			Short: action.use + " a month window",
			RunE:  set(action.open),
		}
		sub.Flags().Int("year", 0, "target year")
		sub.Flags().Int("month", 0, "target month (1-12)")
		cmd.AddCommand(sub)
	}
	return cmd
}
