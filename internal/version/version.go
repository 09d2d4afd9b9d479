// Package version identifies the running wakdex binary. The release pipeline
// sets the variables below with -ldflags "-X github.com/HerbHall/wakdex/internal/version.Version=1.2.0".
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Build is the identity reported by /health, /version and `wakdex version`.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuiltAt   string `json:"built_at"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current snapshots the linked-in build identity.
func Current() Build {
	return Build{
		Version:   Version,
		Commit:    GitCommit,
		BuiltAt:   BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (b Build) String() string {
	return fmt.Sprintf("wakdex %s (%s, built %s, %s %s)", b.Version, b.Commit, b.BuiltAt, b.GoVersion, b.Platform)
}

// Short is the bare release string stamped on modules, headers and backups.
func Short() string { return Version }
