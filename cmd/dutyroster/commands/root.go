// Package commands implements the CLI commands for dutyroster.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/dutyroster/internal/config"
	"github.com/jmylchreest/dutyroster/internal/logger"
	"github.com/jmylchreest/dutyroster/internal/notion"
	"github.com/jmylchreest/dutyroster/internal/updater"
	"github.com/jmylchreest/dutyroster/pkg/fetcher"
	"github.com/jmylchreest/dutyroster/pkg/roster"
)

var rootCmd = &cobra.Command{
	Use:   "dutyroster",
	Short: "Clinic duty roster (担当医表) parser and Notion publisher",
	Long: `dutyroster reads the doctor duty calendars (担当医表) from the clinic's
information page, works out who covers the morning and afternoon of each
day, and writes the result to a file or a Notion page.

Examples:
  # Parse the live page into result.txt
  dutyroster parse

  # Parse a saved page as JSON
  dutyroster parse -i page.html -o roster.json

  # Create notion_config.json interactively
  dutyroster setup

  # Replace the Notion page contents once
  dutyroster update

  # Keep running and update on the configured schedule
  dutyroster daemon`,
	SilenceUsage: true,
}

// configErr holds the result of reading the config file; it is reported
// by the commands that need configuration.
var configErr error

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default ./notion_config.json or $HOME/.config/dutyroster/notion_config.json)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().Bool("json-logs", false, "log as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))
}

func initConfig() {
	v := viper.GetViper()
	config.Configure(v, v.GetString("config"))
	configErr = config.Read(v)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig returns the validated configuration.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	return config.Load(viper.GetViper())
}

// newLogger builds the process logger. The log file is only used by the
// commands that talk to Notion.
func newLogger(cfg *config.Config, withFile bool) (*slog.Logger, io.Closer, error) {
	opts := logger.Options{
		Level: cfg.LogLevel,
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("json_logs"),
	}
	if withFile {
		opts.File = cfg.LogFile
	}
	return logger.New(opts)
}

func newFetcher(cfg *config.Config, log *slog.Logger) (fetcher.Fetcher, error) {
	return fetcher.New(cfg.FetchMode, fetcher.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Logger:    log,
	})
}

func newParser(cfg *config.Config, log *slog.Logger) (*roster.Parser, error) {
	policy, err := roster.ParseImplicitShift(cfg.ImplicitShift)
	if err != nil {
		return nil, err
	}
	opts := roster.DefaultOptions()
	opts.ImplicitShift = policy
	opts.Logger = log
	return roster.NewParser(opts), nil
}

// newUpdater wires a full update pipeline. The caller closes the fetcher.
func newUpdater(cfg *config.Config, log *slog.Logger) (*updater.Updater, error) {
	if err := cfg.RequirePublish(); err != nil {
		return nil, err
	}
	f, err := newFetcher(cfg, log)
	if err != nil {
		return nil, err
	}
	p, err := newParser(cfg, log)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	api := notion.RateLimited(notion.NewClient(cfg.NotionToken, nil), notion.DefaultRate, notion.DefaultBurst)
	opts := notion.DefaultOptions()
	opts.Logger = log

	return &updater.Updater{
		Fetcher:   f,
		Parser:    p,
		Publisher: notion.NewPublisher(api, cfg.PageID, opts),
		SourceURL: cfg.SourceURL,
		Logger:    log,
	}, nil
}

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

func printf(format string, args ...any) {
	fmt.Fprintf(stdout, format, args...)
}
