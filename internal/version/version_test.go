package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFillFromBuildInfo_Unstamped(t *testing.T) {
	info := Info{Version: "dev", Commit: "unknown", BuildDate: "unknown"}
	fillFromBuildInfo(&info, &debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2025-06-01T03:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	if info.Version != "1.4.0" || info.Commit != "0123456789abcdef" || info.BuildDate != "2025-06-01T03:00:00Z" {
		t.Errorf("unexpected info %+v", info)
	}
	if !info.Dirty || info.short() != "1.4.0-dirty" {
		t.Errorf("expected dirty version, got %q", info.short())
	}
}

func TestFillFromBuildInfo_StampedWins(t *testing.T) {
	info := Info{Version: "2.0.0", Commit: "abc", BuildDate: "today"}
	fillFromBuildInfo(&info, &debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "zzz"},
			{Key: "vcs.time", Value: "yesterday"},
		},
	})
	if info.Version != "2.0.0" || info.Commit != "abc" || info.BuildDate != "today" {
		t.Errorf("ldflags values should win, got %+v", info)
	}
}

func TestFull(t *testing.T) {
	out := Full()
	if !strings.HasPrefix(out, "dutyroster ") {
		t.Errorf("unexpected header: %q", out)
	}
	for _, want := range []string{"commit:", "built:", "go:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Full() missing %q:\n%s", want, out)
		}
	}
}
