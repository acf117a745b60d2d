package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/dutyroster/internal/config"
	"github.com/jmylchreest/dutyroster/internal/notion"
	"github.com/jmylchreest/dutyroster/internal/updater"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run updates on the configured schedule",
	Long: `Stay in the foreground and run an update on update_schedule (Asia/Tokyo):
"weekly" is Monday 03:00, "daily" is 03:00 every day, and anything else is
read as a 5-field cron expression. A failed run is logged and the schedule
carries on. Stop with Ctrl-C or SIGTERM.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().Bool("run-now", false, "run one update immediately before waiting for the schedule")
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, closer, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closer.Close()

	spec, err := config.CronSpec(cfg.UpdateSchedule)
	if err != nil {
		return err
	}

	u, err := newUpdater(cfg, log)
	if err != nil {
		return err
	}
	defer u.Fetcher.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := newScheduler(ctx, spec, u, log)
	if err != nil {
		return err
	}

	if runNow, _ := cmd.Flags().GetBool("run-now"); runNow {
		runScheduled(ctx, u, log)
	}

	c.Start()
	next := c.Entries()[0].Next
	log.Info("daemon started", "schedule", spec, "next_run", next.Format("2006-01-02 15:04 MST"))

	<-ctx.Done()
	log.Info("shutting down, waiting for a running update to finish")
	<-c.Stop().Done()
	return nil
}

// newScheduler registers the update job on a Tokyo-time cron. Overlapping
// runs are skipped.
func newScheduler(ctx context.Context, spec string, u *updater.Updater, log *slog.Logger) (*cron.Cron, error) {
	cl := cronLogger{log: log.With("component", "cron")}
	c := cron.New(
		cron.WithLocation(notion.JST()),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(spec, func() { runScheduled(ctx, u, log) }); err != nil {
		return nil, err
	}
	return c, nil
}

func runScheduled(ctx context.Context, u *updater.Updater, log *slog.Logger) {
	if ctx.Err() != nil {
		return
	}
	if _, err := u.Run(ctx); err != nil {
		log.Error("scheduled update failed", "error", err)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
