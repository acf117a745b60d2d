package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/dutyroster/internal/htmldoc"
	"github.com/jmylchreest/dutyroster/internal/output"
	"github.com/jmylchreest/dutyroster/internal/report"
	"github.com/jmylchreest/dutyroster/internal/updater"
	"github.com/jmylchreest/dutyroster/pkg/roster"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse the duty calendars and save them to a file",
	Long: `Fetch the clinic information page (or read a saved copy) and write the
parsed duty calendars.

The format follows the output file extension unless --format is given:
.txt (the plain report), .json, .jsonl, .yaml.

Examples:
  dutyroster parse
  dutyroster parse -u https://www.myseikei.jp/information/ -o roster.yaml
  dutyroster parse -i saved.html --implicit-shift am -o -`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	flags := parseCmd.Flags()
	flags.StringP("url", "u", "", "page to fetch (default from config)")
	flags.StringP("input", "i", "", "read HTML from this file instead of fetching")
	flags.StringP("output", "o", "result.txt", "output file (- for stdout)")
	flags.String("format", "", "output format: text, json, jsonl, yaml (default from file extension)")
	flags.String("fetch-mode", "", "fetch mode: static, dynamic")
	flags.Duration("timeout", 0, "request timeout")
	flags.String("implicit-shift", "", "shift for names without AM/PM: allday, am")

	_ = viper.BindPFlag("source_url", flags.Lookup("url"))
	_ = viper.BindPFlag("fetch_mode", flags.Lookup("fetch-mode"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("implicit_shift", flags.Lookup("implicit-shift"))
}

func runParse(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, closer, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	parser, err := newParser(cfg, log)
	if err != nil {
		return err
	}

	start := time.Now()
	var docs []roster.Document

	if input, _ := cmd.Flags().GetString("input"); input != "" {
		f, err := os.Open(input) //#nosec G304 -- CLI tool reads a user-specified file
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		root, err := htmldoc.Load(f)
		_ = f.Close()
		if err != nil {
			return err
		}
		docs = parser.Parse(root)
		if len(docs) == 0 {
			return updater.ErrNoCalendars
		}
	} else {
		fch, err := newFetcher(cfg, log)
		if err != nil {
			return err
		}
		defer fch.Close()

		u := &updater.Updater{Fetcher: fch, Parser: parser, SourceURL: cfg.SourceURL, Logger: log}
		if docs, err = u.Collect(ctx); err != nil {
			return err
		}
	}

	outPath, _ := cmd.Flags().GetString("output")
	formatStr, _ := cmd.Flags().GetString("format")
	format := output.FormatForPath(outPath)
	if formatStr != "" {
		if format, err = output.ParseFormat(formatStr); err != nil {
			return err
		}
	}

	outFile := stdout
	if outPath != "-" {
		f, err := os.Create(outPath) //#nosec G304 -- CLI tool writes to user-specified output file
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		outFile = f
	}

	writer, err := output.NewWriter(outFile, format)
	if err != nil {
		return err
	}
	if err := writer.WriteAll(docs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	entries := 0
	for _, d := range docs {
		entries += len(d.Entries)
	}
	log.Info("parse complete",
		"calendars", len(docs),
		"entries", entries,
		"elapsed", time.Since(start).Round(time.Millisecond))

	if outPath != "-" {
		printf("✅ 結果を %s に保存しました\n", outPath)
		if !viper.GetBool("quiet") {
			printf("\n📄 内容プレビュー:\n%s\n", report.Preview(report.Text(docs)))
		}
	}
	return nil
}
