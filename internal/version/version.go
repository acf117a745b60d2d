// Package version reports build metadata for the dutyroster binary.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/dutyroster/internal/version.Version=1.2.0 \
//	  -X github.com/jmylchreest/dutyroster/internal/version.Commit=$(git rev-parse HEAD)"
//
// Plain `go build` / `go install` builds fall back to the VCS stamp the Go
// toolchain embeds in the binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	Dirty     = "false"
	BuildDate = "unknown"
)

// Info is the structured form printed by `dutyroster version --json`.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get merges the ldflags values with the embedded build info.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Dirty:     Dirty == "true",
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(&info, bi)
	}
	return info
}

// fillFromBuildInfo only replaces values that were not stamped.
func fillFromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			if s.Value == "true" {
				info.Dirty = true
			}
		}
	}
}

// String returns the version, suffixed with -dirty for modified trees.
func String() string {
	return Get().short()
}

func (i Info) short() string {
	if i.Dirty {
		return i.Version + "-dirty"
	}
	return i.Version
}

// Full returns the multi-line form printed by `dutyroster version`.
func Full() string {
	i := Get()
	commit := i.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("dutyroster %s\n  commit: %s\n  built:  %s\n  go:     %s (%s)",
		i.short(), commit, i.BuildDate, i.GoVersion, i.Platform)
}
