package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

const testID = "0123456789abcdef0123456789abcdef"

func newViper(t *testing.T, file string) *viper.Viper {
	t.Helper()
	t.Setenv("NOTION_TOKEN", "")
	t.Setenv("NOTION_PAGE_ID", "")
	v := viper.New()
	Configure(v, file)
	if err := Read(v); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SourceURL != DefaultSourceURL {
		t.Errorf("SourceURL = %q", cfg.SourceURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.UpdateSchedule != "weekly" || cfg.LogLevel != "INFO" || cfg.LogFile != "notion_update.log" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.ImplicitShift != "allday" || cfg.FetchMode != "static" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !errors.Is(cfg.RequirePublish(), ErrMissingCredentials) {
		t.Error("defaults should not satisfy RequirePublish")
	}
}

func TestLoad_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notion_config.json")
	content := `{
  "notion_token": " ntn_secret ",
  "page_id": "01234567-89ab-cdef-0123-456789abcdef",
  "update_schedule": "daily",
  "log_level": "debug",
  "timeout": "5s",
  "implicit_shift": "AM"
}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(newViper(t, path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.NotionToken != "ntn_secret" {
		t.Errorf("NotionToken = %q", cfg.NotionToken)
	}
	if cfg.PageID != testID {
		t.Errorf("PageID = %q, want %q", cfg.PageID, testID)
	}
	if cfg.LogLevel != "DEBUG" || cfg.ImplicitShift != "am" || cfg.Timeout != 5*time.Second {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if err := cfg.RequirePublish(); err != nil {
		t.Errorf("RequirePublish() error = %v", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notion_config.yaml")
	if err := os.WriteFile(path, []byte("notion_token: from-file\npage_id: "+testID+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	v := newViper(t, path)
	t.Setenv("NOTION_TOKEN", "from-env")
	t.Setenv("DUTYROSTER_FETCH_MODE", "dynamic")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.NotionToken != "from-env" {
		t.Errorf("NotionToken = %q, want from-env", cfg.NotionToken)
	}
	if cfg.FetchMode != "dynamic" {
		t.Errorf("FetchMode = %q, want dynamic", cfg.FetchMode)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"source_url", "not a url", "SourceURL"},
		{"implicit_shift", "pm", "ImplicitShift"},
		{"fetch_mode", "carrier", "FetchMode"},
		{"log_level", "LOUD", "LogLevel"},
		{"update_schedule", "fortnightly", "update_schedule"},
		{"page_id", "not-an-id", "page ID"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestRead_MissingSearchedFileIsFine(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	v := viper.New()
	Configure(v, "")
	if err := Read(v); err != nil {
		t.Errorf("Read() error = %v", err)
	}
}

func TestRead_MissingExplicitFileFails(t *testing.T) {
	v := viper.New()
	Configure(v, filepath.Join(t.TempDir(), "nope.json"))
	if err := Read(v); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestCronSpec(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"weekly", "0 3 * * 1", false},
		{"WEEKLY", "0 3 * * 1", false},
		{"daily", "0 3 * * *", false},
		{"0 23 * * 0", "0 23 * * 0", false},
		{"  */5 * * * *  ", "*/5 * * * *", false},
		{"hourly", "", true},
		{"0 3 * *", "", true},
	}
	for _, tt := range tests {
		got, err := CronSpec(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("CronSpec(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("CronSpec(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePageID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{testID, testID, false},
		{"  " + strings.ToUpper(testID) + " ", testID, false},
		{"01234567-89ab-cdef-0123-456789abcdef", testID, false},
		{"https://www.notion.so/myclinic/abcdef-" + testID, testID, false},
		{"https://www.notion.so/myclinic/" + testID + "?pvs=4", testID, false},
		{"https://www.notion.so/" + testID + "/", testID, false},
		{"https://www.notion.so/myclinic/Page-" + testID + "#block", testID, false},
		{"", "", true},
		{"xyz", "", true},
		{"0123456789abcdef", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizePageID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizePageID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidPageID) {
			t.Errorf("NormalizePageID(%q) error should wrap ErrInvalidPageID: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("NormalizePageID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "notion_config.json")
	err := Save(path, Config{
		NotionToken:    "ntn_token",
		PageID:         testID,
		UpdateSchedule: "weekly",
		LogLevel:       "INFO",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config permissions = %v, want 0600", perm)
	}

	cfg, err := Load(newViper(t, path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.NotionToken != "ntn_token" || cfg.PageID != testID || cfg.UpdateSchedule != "weekly" {
		t.Errorf("round trip mismatch: %+v", cfg)
	}
}
