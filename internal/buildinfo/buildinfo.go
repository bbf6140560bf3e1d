// Package buildinfo holds identifiers stamped in at link time.
package buildinfo

import "github.com/rs/zerolog"

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for the HUD and window title.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		if len(Commit) > 7 {
			return Commit[:7]
		}
		return Commit
	}
	return "dev"
}

// Dict returns the build identifiers as a log field group.
func Dict() *zerolog.Event {
	return zerolog.Dict().Str("version", Version).Str("commit", Commit).Str("date", Date)
}
