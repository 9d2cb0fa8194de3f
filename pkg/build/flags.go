// SPDX-License-Identifier: MIT
//
// Package build exposes metadata embedded into the binary at compile time
// via linker flags: application name, build timestamp, Git commit and
// semantic version. Useful for the CLI version output and log banners.
package build

import "fmt"

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Populated by -ldflags during compilation, for example:
//
//	go build -ldflags "-X build.buildName=visualizer2 -X build.buildVersion=0.2.0"
//
// Development builds fall back to "unknown" for every field.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    "unknown",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "unknown",
	}
)

// Initialize validates and copies build information from the ldflags
// variables. Call it early in startup; it returns an error if any flag is
// missing, which callers may treat as non-fatal for development builds.
func Initialize() error {
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information. Fields hold "unknown"
// until Initialize succeeds.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
