// Package version carries build metadata injected via ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/sheetwatch/internal/version.Version=v1.0.0" ./cmd/sheetwatch
package version

import "fmt"

// Version is the release tag; "dev" for local builds.
var Version = "dev"

// Build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line shown by --version.
func String() string {
	return fmt.Sprintf("sheetwatch %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
