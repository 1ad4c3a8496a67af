// Package version carries build-time identification for log headers and
// version flags.
package version

import "fmt"

// Set through -ldflags at build time; the defaults cover go run and tests.
var (
	// Version is the semantic version of the release.
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built.
	BuildTime = "unknown"

	// GitCommit is the git commit hash the binary was built from.
	GitCommit = "unknown"
)

// String renders a single-line version stamp for banners and -version output.
func String() string {
	if GitCommit == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (%s, built %s)", Version, GitCommit, BuildTime)
}
