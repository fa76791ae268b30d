package version

import "fmt"

// Set with -ldflags "-X github.com/sadopc/studylog/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info reports the version with its build metadata, e.g.
// "v0.3.0 (abc1234, 2024-03-05)".
func Info() string {
	if Commit == "none" && Date == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}
