package version

import "fmt"

// Build metadata, set with -ldflags "-X memoryvault/version.Version=x.y.z" and friends.
var (
	Version    = "0.1.0"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

// GetFullVersion returns the version with the short commit hash when known.
func GetFullVersion() string {
	if CommitHash == "unknown" || CommitHash == "" {
		return Version
	}
	short := CommitHash
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s)", Version, short)
}

// GetBuildInfo returns the multi-line build summary printed by the version command.
func GetBuildInfo() string {
	return "Version: " + Version + "\nCommit: " + CommitHash + "\nBuild Time: " + BuildTime
}
