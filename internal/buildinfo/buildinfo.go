// Package buildinfo carries the build identifiers stamped in with
// -ldflags "-X xrscene/internal/buildinfo.Version=...".
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short is the identifier shown in the window title.
func Short() string {
	switch {
	case Version != "" && Version != "dev":
		return Version
	case Commit != "" && Commit != "unknown":
		if len(Commit) > 12 {
			return Commit[:12]
		}
		return Commit
	}
	return "dev"
}

// String reports every field, for -version output.
func String() string {
	return fmt.Sprintf("xrscene %s (commit %s, built %s)", Short(), Commit, Date)
}
