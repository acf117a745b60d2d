package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace the Notion page with the current duty calendars",
	Long: `Fetch and parse the duty calendars, clear the configured Notion page and
write the report to it. Credentials come from notion_config.json or the
NOTION_TOKEN and NOTION_PAGE_ID environment variables.

This is the command to run from cron.`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, closer, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	u, err := newUpdater(cfg, log)
	if err != nil {
		log.Error("cannot start update", "error", err)
		return err
	}
	defer u.Fetcher.Close()

	if _, err := u.Run(ctx); err != nil {
		printf("❌ 診療カレンダーの自動更新に失敗しました\n")
		printf("ログファイル %s を確認してください\n", cfg.LogFile)
		return err
	}

	printf("✅ 診療カレンダーの自動更新が完了しました\n")
	return nil
}
