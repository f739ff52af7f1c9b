// Package version reports the build stamp of the etl binary
package version

import "runtime/debug"

// BuildInfo identifies one build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Set with -ldflags "-X loteria/internal/core/version.version=v0.1.0 -X ...commit=abcd -X ...date=2026-01-31"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build stamp. An unstamped build falls back to the vcs
// revision the go toolchain embeds
func Info() BuildInfo {
	bi := BuildInfo{Service: "loteria-etl", Version: version, Commit: commit, Date: date}
	if bi.Commit != "none" {
		return bi
	}
	if info, ok := debug.ReadBuildInfo(); ok && info != nil {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				bi.Commit = s.Value
			case "vcs.time":
				if bi.Date == "unknown" {
					bi.Date = s.Value
				}
			}
		}
	}
	return bi
}

// String renders the stamp on one line
func (b BuildInfo) String() string {
	return b.Service + " " + b.Version + " (" + b.Commit + ", " + b.Date + ")"
}
