// Package version exposes build metadata for the mirrordex binary.
package version

// Overridden via -ldflags at release build time; the defaults mark a
// locally built binary.
//
//nolint:revive
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
