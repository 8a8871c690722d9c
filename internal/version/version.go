package version

import "fmt"

var (
	// These will be set at build time via ldflags
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func GetVersion() string {
	return Version
}

// GetFullVersion returns version with commit and build info
func GetFullVersion() string {
	if Commit != "unknown" && Date != "unknown" {
		return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
	}
	return Version
}

// GetMCPVersion returns a semver-shaped version string for the MCP
// handshake, which rejects the bare "dev" marker.
func GetMCPVersion() string {
	if Version == "dev" {
		return "0.0.0-dev"
	}
	return Version
}
