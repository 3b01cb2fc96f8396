// Package buildinfo carries version stamps injected with -ldflags "-X".
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the version if stamped, else the commit, else "dev".
func Short() string {
	switch {
	case Version != "" && Version != "dev":
		return Version
	case Commit != "" && Commit != "unknown":
		return Commit
	}
	return "dev"
}

// String returns the full stamp for version output.
func String() string {
	return fmt.Sprintf("wakeos %s (commit %s, built %s)", Version, Commit, Date)
}
