package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GetVersion returns the build version.
func GetVersion() string { return version }

// String renders the full build stamp populated via -ldflags.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
