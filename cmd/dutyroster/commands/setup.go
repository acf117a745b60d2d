package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/dutyroster/internal/config"
	"github.com/jmylchreest/dutyroster/internal/logger"
	"github.com/jmylchreest/dutyroster/internal/setup"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the Notion config file interactively",
	Long: `Walk through creating a Notion integration, sharing the page with it and
saving the token and page ID to notion_config.json (or the file given with
--config). Optionally runs one update to check the settings.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	path := viper.GetString("config")
	if path == "" {
		path = config.FileName + ".json"
	}

	exe, err := os.Executable()
	if err != nil {
		exe = "dutyroster"
	} else if abs, err := filepath.Abs(exe); err == nil {
		exe = abs
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	w := &setup.Wizard{
		In:         cmd.InOrStdin(),
		Out:        cmd.OutOrStdout(),
		ConfigPath: path,
		Executable: exe,
		TestRun:    testRun,
	}
	err = w.Run(ctx)
	if errors.Is(err, setup.ErrCancelled) {
		return nil
	}
	return err
}

// testRun performs one update with the settings setup just collected,
// layered over the defaults.
func testRun(ctx context.Context, saved config.Config) error {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("notion_token", saved.NotionToken)
	v.Set("page_id", saved.PageID)
	v.Set("update_schedule", saved.UpdateSchedule)
	v.Set("log_level", saved.LogLevel)

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	log, closer, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer.Close()

	u, err := newUpdater(cfg, log)
	if err != nil {
		return err
	}
	defer u.Fetcher.Close()

	_, err = u.Run(ctx)
	return err
}
