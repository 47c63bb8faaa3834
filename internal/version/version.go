// Package version provides build-time version information.
// These variables are set via ldflags at build time.
package version

var (
	// Version is the semantic version (e.g., "1.0.0")
	Version = "dev"

	// Commit is the git commit SHA
	Commit = "none"

	// Date is the build date in RFC3339 format
	Date = "unknown"
)

// IsDev reports whether this is an unreleased build.
func IsDev() bool {
	return Version == "dev"
}

// Full returns the version line printed by `mp version`.
func Full() string {
	if IsDev() {
		return "mp version dev (built from source)"
	}
	return "mp version " + Version + " (" + shortCommit() + ", " + Date + ")"
}

// UserAgent is sent with every request to the MoviePilot server.
func UserAgent() string {
	return "mp-cli/" + Version
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
