// Package version provides version information.
package version

// Version is set at build time via -ldflags "-X github.com/prizm-build/wheelhouse/internal/version.Version=<value>"
var Version = "v0.1.0"
