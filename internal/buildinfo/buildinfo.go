// Package buildinfo carries identifiers stamped at build time through
// -ldflags; the defaults mark a developer build.
package buildinfo

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the identifier shown in the window title and the boot
// banner.
func Short() string {
	switch {
	case Version != "" && Version != "dev":
		return Version
	case Commit != "" && Commit != "unknown":
		return Commit
	}
	return "dev"
}
