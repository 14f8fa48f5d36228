// Package buildconfig exposes the identifiers stamped into the thoughtify
// binary at link time. Local builds report "dev"/"unknown"; releases
// override both through -ldflags.
package buildconfig

var (
	version = "dev"
	commit  = "unknown"
)

// Version returns the stamped release version.
func Version() string {
	return version
}

// Commit returns the stamped git commit hash.
func Commit() string {
	return commit
}
