// Package version provides build-time version information.
package version

import "fmt"

// These variables are set at build time using ldflags:
//
//	go build -ldflags "-X github.com/javanstorm/krunvm/internal/version.Version=0.3.0 \
//	                   -X github.com/javanstorm/krunvm/internal/version.Commit=$(git rev-parse HEAD)"
var (
	// Version is the semantic version of krunvm.
	Version = "dev"

	// Commit is the git commit SHA at build time.
	Commit = "unknown"
)

// String returns the version line printed by `krunvm version`.
func String() string {
	return fmt.Sprintf("krunvm %s (commit %s)", Version, Commit)
}
