// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Pitchloop is the canonical application identifier used for filesystem paths and CLI branding.
	Pitchloop = "pitchloop"

	// Version is the current application semantic version string.
	Version = "0.3.0"
)

// Build metadata, overridden at link time via -ldflags.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// Platform identifiers for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
	Android = "android"
)
