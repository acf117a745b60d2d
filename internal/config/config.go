// Package config loads and saves dutyroster settings through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// File name (without extension) searched for in the config paths.
const FileName = "notion_config"

// Defaults.
const (
	DefaultSourceURL     = "https://www.myseikei.jp/information/"
	DefaultTimeout       = 30 * time.Second
	DefaultSchedule      = "weekly"
	DefaultLogLevel      = "INFO"
	DefaultLogFile       = "notion_update.log"
	DefaultImplicitShift = "allday"
	DefaultFetchMode     = "static"
)

// Cron expressions for the named schedules (Asia/Tokyo).
const (
	weeklyCron = "0 3 * * 1"
	dailyCron  = "0 3 * * *"
)

var (
	// ErrMissingCredentials is returned when publishing without a token or page ID.
	ErrMissingCredentials = errors.New("notion_token and page_id must be set (config file or NOTION_TOKEN / NOTION_PAGE_ID)")
	// ErrInvalidPageID indicates the page reference holds no recognisable Notion ID.
	ErrInvalidPageID = errors.New("invalid Notion page ID")
)

// Config holds every setting the commands read.
type Config struct {
	NotionToken    string        `mapstructure:"notion_token"`
	PageID         string        `mapstructure:"page_id"`
	SourceURL      string        `mapstructure:"source_url" validate:"required,url"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UpdateSchedule string        `mapstructure:"update_schedule" validate:"required"`
	LogLevel       string        `mapstructure:"log_level" validate:"oneof=DEBUG INFO WARN WARNING ERROR"`
	LogFile        string        `mapstructure:"log_file"`
	ImplicitShift  string        `mapstructure:"implicit_shift" validate:"oneof=allday am"`
	FetchMode      string        `mapstructure:"fetch_mode" validate:"oneof=static dynamic"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source_url", DefaultSourceURL)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("update_schedule", DefaultSchedule)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("implicit_shift", DefaultImplicitShift)
	v.SetDefault("fetch_mode", DefaultFetchMode)
}

// Configure points v at the config file and the environment. An explicit
// file wins; otherwise notion_config.{json,yaml} is searched for in the
// working directory and then $HOME/.config/dutyroster.
func Configure(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("DUTYROSTER")
	v.AutomaticEnv()

	_ = v.BindEnv("notion_token", "NOTION_TOKEN", "DUTYROSTER_NOTION_TOKEN")
	_ = v.BindEnv("page_id", "NOTION_PAGE_ID", "DUTYROSTER_PAGE_ID")

	SetDefaults(v)
}

// Dir returns the per-user config directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dutyroster"), nil
}

// Read reads the config file if one exists. A missing file is not an error.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
	cfg.ImplicitShift = strings.ToLower(strings.TrimSpace(cfg.ImplicitShift))
	cfg.FetchMode = strings.ToLower(strings.TrimSpace(cfg.FetchMode))
	cfg.NotionToken = strings.TrimSpace(cfg.NotionToken)

	if cfg.PageID != "" {
		id, err := NormalizePageID(cfg.PageID)
		if err != nil {
			return nil, err
		}
		cfg.PageID = id
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, formatValidationError(e))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := CronSpec(c.UpdateSchedule); err != nil {
		return err
	}
	return nil
}

// RequirePublish checks that the Notion credentials are present.
func (c *Config) RequirePublish() error {
	if c.NotionToken == "" || c.PageID == "" {
		return ErrMissingCredentials
	}
	return nil
}

// CronSpec maps update_schedule to a 5-field cron expression. "weekly" is
// Monday 03:00 and "daily" is 03:00 every day; anything else is taken as a
// cron expression already.
func CronSpec(schedule string) (string, error) {
	s := strings.TrimSpace(schedule)
	switch strings.ToLower(s) {
	case "weekly":
		return weeklyCron, nil
	case "daily":
		return dailyCron, nil
	}
	if len(strings.Fields(s)) != 5 {
		return "", fmt.Errorf("invalid update_schedule %q: want weekly, daily or a 5-field cron expression", schedule)
	}
	return s, nil
}

var (
	dashedID = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	plainID  = regexp.MustCompile(`[0-9a-fA-F]{32}`)
)

// NormalizePageID extracts the 32-hex Notion page ID from a bare ID, a
// dashed UUID or a full page URL.
func NormalizePageID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalidPageID
	}

	// Page URLs end with "<slug>-<id>" and may carry a query string.
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.TrimRight(ref, "/")
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}

	var candidate string
	if m := dashedID.FindAllString(ref, -1); len(m) > 0 {
		candidate = m[len(m)-1]
	} else if m := plainID.FindAllString(ref, -1); len(m) > 0 {
		candidate = m[len(m)-1]
	} else {
		return "", fmt.Errorf("%w: %q", ErrInvalidPageID, ref)
	}

	id, err := uuid.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPageID, err)
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}

// Save writes the credentials and schedule that setup collects. The format
// follows the file extension.
func Save(path string, cfg Config) error {
	v := viper.New()
	v.Set("notion_token", cfg.NotionToken)
	v.Set("page_id", cfg.PageID)
	v.Set("update_schedule", cfg.UpdateSchedule)
	v.Set("log_level", cfg.LogLevel)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	// The file holds an API token.
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict config permissions: %w", err)
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", e.Field(), e.Param(), e.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s failed validation '%s'", e.Field(), e.Tag())
	}
}
