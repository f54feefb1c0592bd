// Package version exposes build metadata for the beastkit binary.
package version

// Build metadata, overridden at link time via -ldflags.
var (
	// Version is the release version of the binary.
	Version = "dev"
	// Commit is the Git commit the binary was built from.
	Commit = "unknown"
	// Date is the build timestamp.
	Date = "unknown"
)
