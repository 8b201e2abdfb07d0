package version

// Injected at build time with -ldflags.
var (
	// Version is the semver of this build.
	Version = "unknown"
	// GitCommit is the commit hash this build was made from.
	GitCommit = "unknown"
)
